package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/finance/fees/dto"
	"schoolhub_backend/internals/features/finance/fees/model"
	auditService "schoolhub_backend/internals/features/schools/audit_logs/service"
	helper "schoolhub_backend/internals/helpers"
)

func ListDiscounts(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, status string) ([]model.DiscountModel, error) {
	q := db.WithContext(ctx).Where("discount_school_id = ?", schoolID)
	if status != "" {
		q = q.Where("discount_status = ?", status)
	}
	rows := []model.DiscountModel{}
	err := q.Order("discount_name ASC").Find(&rows).Error
	return rows, err
}

func loadDiscount(tx *gorm.DB, schoolID, id uuid.UUID) (model.DiscountModel, error) {
	var m model.DiscountModel
	err := tx.Where("discount_id = ? AND discount_school_id = ?", id, schoolID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "diskon tidak ditemukan")
	}
	return m, err
}

func CreateDiscount(ctx context.Context, db *gorm.DB, m model.DiscountModel) (model.DiscountModel, error) {
	err := db.WithContext(ctx).Create(&m).Error
	if helper.IsUniqueViolation(err) {
		return m, errors.Wrapf(helper.ErrConflict, "kode diskon %s sudah dipakai", m.DiscountCode)
	}
	return m, err
}

func UpdateDiscount(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, u map[string]any) (model.DiscountModel, error) {
	tx := db.WithContext(ctx)
	m, err := loadDiscount(tx, schoolID, id)
	if err != nil {
		return m, err
	}
	if v, ok := u["discount_value"].(float64); ok && m.DiscountCalculationType == model.CalcPercentage && v > 100 {
		return m, errors.Wrap(helper.ErrBadRequest, "persentase diskon maksimal 100")
	}
	if len(u) > 0 {
		if err := tx.Model(&m).Updates(u).Error; err != nil {
			return m, err
		}
	}
	return loadDiscount(tx, schoolID, id)
}

func DeleteDiscount(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) error {
	tx := db.WithContext(ctx)
	m, err := loadDiscount(tx, schoolID, id)
	if err != nil {
		return err
	}
	var n int64
	if err := tx.Model(&model.StudentDiscountModel{}).Where("student_discount_discount_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return errors.Wrap(helper.ErrConflict, "diskon sudah diberikan ke siswa, nonaktifkan saja")
	}
	return tx.Delete(&m).Error
}

// CalculatedAmountFor: nominal tetap disimpan apa adanya; persentase dihitung per biaya saat breakdown.
func CalculatedAmountFor(d model.DiscountModel) float64 {
	if d.DiscountCalculationType == model.CalcFixed {
		return helper.Round2(d.DiscountValue)
	}
	return 0
}

func AssignDiscount(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.AssignDiscountRequest, actor *uuid.UUID) (model.StudentDiscountModel, error) {
	var sd model.StudentDiscountModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := loadDiscount(tx, schoolID, req.DiscountID)
		if err != nil {
			return err
		}
		if d.DiscountStatus != model.StatusActive {
			return errors.Wrap(helper.ErrInvalidState, "diskon tidak aktif")
		}
		if err := ensureStudent(tx, schoolID, req.StudentID); err != nil {
			return err
		}
		status := model.ApprovalApproved
		if d.DiscountNeedsApproval {
			status = model.ApprovalPending
		}
		sd = model.StudentDiscountModel{
			StudentDiscountSchoolID:         schoolID,
			StudentDiscountStudentID:        req.StudentID,
			StudentDiscountDiscountID:       d.DiscountID,
			StudentDiscountSchoolYearID:     req.SchoolYearID,
			StudentDiscountCalculatedAmount: CalculatedAmountFor(d),
			StudentDiscountStatus:           status,
			StudentDiscountReason:           req.Reason,
		}
		if status == model.ApprovalApproved {
			now := time.Now()
			sd.StudentDiscountApprovedBy = actor
			sd.StudentDiscountApprovedAt = &now
		}
		if err := tx.Create(&sd).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return errors.Wrap(helper.ErrConflict, "diskon ini sudah diberikan ke siswa untuk tahun ajaran tersebut")
			}
			return err
		}
		return auditService.Record(tx, schoolID, actor, "discount.assigned", "student_discount", &sd.StudentDiscountID, map[string]any{
			"student_id": req.StudentID, "discount_id": d.DiscountID, "status": status,
		})
	})
	return sd, err
}

// ApproveStudentDiscount: pending → approved|rejected
func ApproveStudentDiscount(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, approve bool, actor *uuid.UUID) (model.StudentDiscountModel, error) {
	var sd model.StudentDiscountModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_discount_id = ? AND student_discount_school_id = ?", id, schoolID).
			First(&sd).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(helper.ErrNotFound, "diskon siswa tidak ditemukan")
		}
		if err != nil {
			return err
		}
		if sd.StudentDiscountStatus != model.ApprovalPending {
			return errors.Wrap(helper.ErrInvalidState, "diskon siswa sudah diproses")
		}
		status := model.ApprovalRejected
		if approve {
			status = model.ApprovalApproved
		}
		now := time.Now()
		if err := tx.Model(&sd).Updates(map[string]any{
			"student_discount_status":      status,
			"student_discount_approved_by": actor,
			"student_discount_approved_at": now,
		}).Error; err != nil {
			return err
		}
		if err := auditService.Record(tx, schoolID, actor, "discount."+status, "student_discount", &sd.StudentDiscountID, nil); err != nil {
			return err
		}
		return tx.First(&sd, "student_discount_id = ?", id).Error
	})
	return sd, err
}

func ListStudentDiscounts(ctx context.Context, db *gorm.DB, schoolID, studentID uuid.UUID, yearID *uuid.UUID) ([]model.StudentDiscountModel, error) {
	q := db.WithContext(ctx).Where("student_discount_school_id = ? AND student_discount_student_id = ?", schoolID, studentID)
	if yearID != nil {
		q = q.Where("student_discount_school_year_id = ?", *yearID)
	}
	rows := []model.StudentDiscountModel{}
	err := q.Order("student_discount_created_at DESC").Find(&rows).Error
	return rows, err
}

type discountRow struct {
	StudentID        uuid.UUID
	CalculationType  string
	Value            float64
	CalculatedAmount float64
	AppliesTo        pq.StringArray
	MaxAmount        *float64
}

// approvedDiscounts: diskon approved per siswa untuk tahun ajaran
func approvedDiscounts(tx *gorm.DB, studentIDs []uuid.UUID, yearID uuid.UUID) (map[uuid.UUID][]DiscountLine, error) {
	var rows []discountRow
	if err := tx.Table("student_discounts sd").
		Select(`sd.student_discount_student_id AS student_id, d.discount_calculation_type AS calculation_type,
			d.discount_value AS value, sd.student_discount_calculated_amount AS calculated_amount,
			d.discount_applies_to_fee_types AS applies_to, d.discount_max_discount_amount AS max_amount`).
		Joins("JOIN discounts d ON d.discount_id = sd.student_discount_discount_id").
		Where("sd.student_discount_student_id IN ? AND sd.student_discount_school_year_id = ? AND sd.student_discount_status = 'approved'",
			studentIDs, yearID).
		Where("d.discount_status = 'active'").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[uuid.UUID][]DiscountLine{}
	for _, r := range rows {
		out[r.StudentID] = append(out[r.StudentID], DiscountLine{
			CalculationType:  r.CalculationType,
			Value:            r.Value,
			CalculatedAmount: r.CalculatedAmount,
			AppliesTo:        r.AppliesTo,
			MaxAmount:        r.MaxAmount,
		})
	}
	return out, nil
}

func ensureStudent(tx *gorm.DB, schoolID, studentID uuid.UUID) error {
	var n int64
	if err := tx.Table("students").
		Where("student_id = ? AND student_school_id = ? AND student_deleted_at IS NULL", studentID, schoolID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(helper.ErrNotFound, "siswa tidak ditemukan")
	}
	return nil
}
