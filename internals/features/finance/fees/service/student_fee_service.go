package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/finance/fees/dto"
	"schoolhub_backend/internals/features/finance/fees/model"
	auditService "schoolhub_backend/internals/features/schools/audit_logs/service"
	helper "schoolhub_backend/internals/helpers"
)

const assignChunkSize = 100

// CalculateForStudent: pratinjau tagihan tanpa menyimpan
func CalculateForStudent(ctx context.Context, db *gorm.DB, schoolID, studentID, yearID uuid.UUID) (dto.StudentFeeCalculation, error) {
	out := dto.StudentFeeCalculation{StudentID: studentID, SchoolYearID: yearID}
	tx := db.WithContext(ctx)
	p, err := studentPlacementFor(tx, schoolID, studentID, yearID)
	if err != nil {
		return out, err
	}
	counts, err := confirmedCounts(tx, []uuid.UUID{studentID})
	if err != nil {
		return out, err
	}
	all, err := yearFeeLines(tx, schoolID, yearID)
	if err != nil {
		return out, err
	}
	disc, err := approvedDiscounts(tx, []uuid.UUID{studentID}, yearID)
	if err != nil {
		return out, err
	}
	out.IsNewStudent = IsNewStudent(counts[studentID])
	out.Breakdown = CalculateBreakdown(out.IsNewStudent, linesFor(all, p), disc[studentID])
	out.TotalOriginal, out.TotalDiscount, out.TotalFinal = Totals(out.Breakdown)
	return out, nil
}

type pairKey struct {
	StudentID      uuid.UUID
	FeeStructureID uuid.UUID
}

// buildStudentFees: baris tagihan baru, pasangan (siswa, struktur) yang sudah ada dilewati.
func buildStudentFees(schoolID, yearID uuid.UUID, placements []studentPlacement, counts map[uuid.UUID]int,
	lines []feeLineRow, discounts map[uuid.UUID][]DiscountLine, existing map[pairKey]bool) []model.StudentFeeModel {

	out := []model.StudentFeeModel{}
	for _, p := range placements {
		breakdown := CalculateBreakdown(IsNewStudent(counts[p.StudentID]), linesFor(lines, p), discounts[p.StudentID])
		for _, b := range breakdown {
			if existing[pairKey{p.StudentID, b.FeeStructureID}] {
				continue
			}
			enrollmentID := p.EnrollmentID
			out = append(out, model.StudentFeeModel{
				StudentFeeSchoolID:       schoolID,
				StudentFeeStudentID:      p.StudentID,
				StudentFeeEnrollmentID:   &enrollmentID,
				StudentFeeFeeStructureID: b.FeeStructureID,
				StudentFeeSchoolYearID:   yearID,
				StudentFeeOriginalAmount: b.OriginalAmount,
				StudentFeeDiscountAmount: b.DiscountAmount,
				StudentFeeFinalAmount:    b.FinalAmount,
				StudentFeeBalance:        b.FinalAmount,
				StudentFeeStatus:         model.StudentFeePending,
			})
		}
	}
	return out
}

func existingPairs(tx *gorm.DB, studentIDs []uuid.UUID, yearID uuid.UUID) (map[pairKey]bool, error) {
	var rows []pairKey
	if err := tx.Model(&model.StudentFeeModel{}).
		Select("student_fee_student_id AS student_id, student_fee_fee_structure_id AS fee_structure_id").
		Where("student_fee_student_id IN ? AND student_fee_school_year_id = ?", studentIDs, yearID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[pairKey]bool, len(rows))
	for _, r := range rows {
		out[r] = true
	}
	return out, nil
}

func assign(ctx context.Context, db *gorm.DB, schoolID, yearID uuid.UUID, placements []studentPlacement, actor *uuid.UUID) (dto.BulkResult, error) {
	res := dto.BulkResult{Total: len(placements), Errors: []dto.BulkError{}}
	if len(placements) == 0 {
		return res, nil
	}
	ids := make([]uuid.UUID, 0, len(placements))
	for _, p := range placements {
		ids = append(ids, p.StudentID)
	}

	tx := db.WithContext(ctx)
	counts, err := confirmedCounts(tx, ids)
	if err != nil {
		return res, err
	}
	lines, err := yearFeeLines(tx, schoolID, yearID)
	if err != nil {
		return res, err
	}
	disc, err := approvedDiscounts(tx, ids, yearID)
	if err != nil {
		return res, err
	}
	existing, err := existingPairs(tx, ids, yearID)
	if err != nil {
		return res, err
	}
	rows := buildStudentFees(schoolID, yearID, placements, counts, lines, disc, existing)

	if len(rows) > 0 {
		err = tx.Transaction(func(t *gorm.DB) error {
			if err := t.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, assignChunkSize).Error; err != nil {
				return err
			}
			return auditService.Record(t, schoolID, actor, "fees.assigned", "student_fee", nil, map[string]any{
				"school_year_id": yearID, "students": len(placements), "inserted": len(rows),
			})
		})
		if err != nil {
			res.Failed = len(placements)
			res.Errors = append(res.Errors, dto.BulkError{StudentID: "batch", Error: err.Error()})
			return res, nil
		}
	}
	res.Succeeded = len(placements)
	res.Inserted = len(rows)
	return res, nil
}

// AssignToStudent: tagihkan semua struktur yang berlaku ke satu siswa
func AssignToStudent(ctx context.Context, db *gorm.DB, schoolID, studentID, yearID uuid.UUID, actor *uuid.UUID) (dto.BulkResult, error) {
	p, err := studentPlacementFor(db.WithContext(ctx), schoolID, studentID, yearID)
	if err != nil {
		return dto.BulkResult{}, err
	}
	return assign(ctx, db, schoolID, yearID, []studentPlacement{p}, actor)
}

// BulkAssignToClass: semua siswa confirmed di kelas, satu transaksi, potongan 100 baris
func BulkAssignToClass(ctx context.Context, db *gorm.DB, schoolID, classID, yearID uuid.UUID, actor *uuid.UUID) (dto.BulkResult, error) {
	var placements []studentPlacement
	if err := placementQuery(db.WithContext(ctx), schoolID, yearID).
		Where("e.enrollment_class_id = ?", classID).
		Scan(&placements).Error; err != nil {
		return dto.BulkResult{}, err
	}
	return assign(ctx, db, schoolID, yearID, placements, actor)
}

type StudentFeeFilter struct {
	StudentID    *uuid.UUID
	SchoolYearID *uuid.UUID
	Status       string
}

func ListStudentFees(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, f StudentFeeFilter, p helper.Params) ([]dto.StudentFeeItem, int64, error) {
	q := db.WithContext(ctx).Table("student_fees sf").
		Joins("JOIN fee_structures fs ON fs.fee_structure_id = sf.student_fee_fee_structure_id").
		Joins("JOIN fee_types ft ON ft.fee_type_id = fs.fee_structure_fee_type_id").
		Where("sf.student_fee_school_id = ?", schoolID)
	if f.StudentID != nil {
		q = q.Where("sf.student_fee_student_id = ?", *f.StudentID)
	}
	if f.SchoolYearID != nil {
		q = q.Where("sf.student_fee_school_year_id = ?", *f.SchoolYearID)
	}
	if f.Status != "" {
		q = q.Where("sf.student_fee_status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []dto.StudentFeeItem{}
	err := q.Select("sf.*, ft.fee_type_code, ft.fee_type_name").
		Order("sf.student_fee_created_at DESC, ft.fee_type_display_order ASC").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

// WaiveFee: saldo jadi 0, status waived
func WaiveFee(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, reason string, actor *uuid.UUID) (model.StudentFeeModel, error) {
	var m model.StudentFeeModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_fee_id = ? AND student_fee_school_id = ?", id, schoolID).
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(helper.ErrNotFound, "tagihan tidak ditemukan")
		}
		if err != nil {
			return err
		}
		switch m.StudentFeeStatus {
		case model.StudentFeePaid, model.StudentFeeWaived, model.StudentFeeCancelled:
			return errors.Wrapf(helper.ErrInvalidState, "tagihan berstatus %s tidak bisa dibebaskan", m.StudentFeeStatus)
		}
		now := time.Now()
		if err := tx.Model(&m).Updates(map[string]any{
			"student_fee_status":        model.StudentFeeWaived,
			"student_fee_balance":       0,
			"student_fee_waived_at":     now,
			"student_fee_waived_by":     actor,
			"student_fee_waiver_reason": reason,
		}).Error; err != nil {
			return err
		}
		if err := auditService.Record(tx, schoolID, actor, "fee.waived", "student_fee", &m.StudentFeeID, map[string]any{
			"balance": m.StudentFeeBalance, "reason": reason,
		}); err != nil {
			return err
		}
		return tx.First(&m, "student_fee_id = ?", id).Error
	})
	return m, err
}

func StudentFeeSummary(ctx context.Context, db *gorm.DB, schoolID, studentID uuid.UUID, yearID *uuid.UUID) (dto.StudentFeeSummary, error) {
	var out dto.StudentFeeSummary
	q := db.WithContext(ctx).Model(&model.StudentFeeModel{}).
		Select(`COALESCE(SUM(student_fee_original_amount), 0) AS total_fees,
			COALESCE(SUM(student_fee_discount_amount), 0) AS total_discounts,
			COALESCE(SUM(student_fee_paid_amount), 0) AS total_paid,
			COALESCE(SUM(student_fee_balance), 0) AS total_balance,
			COUNT(*) AS fee_count`).
		Where("student_fee_school_id = ? AND student_fee_student_id = ? AND student_fee_status <> 'cancelled'", schoolID, studentID)
	if yearID != nil {
		q = q.Where("student_fee_school_year_id = ?", *yearID)
	}
	err := q.Scan(&out).Error
	return out, err
}

// Outstanding: siswa dengan total saldo > 0, urut saldo terbesar
func Outstanding(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, yearID *uuid.UUID, p helper.Params) ([]dto.OutstandingItem, int64, error) {
	q := db.WithContext(ctx).Table("student_fees sf").
		Joins("JOIN students s ON s.student_id = sf.student_fee_student_id").
		Joins("LEFT JOIN enrollments e ON e.enrollment_id = sf.student_fee_enrollment_id").
		Joins("LEFT JOIN classes c ON c.class_id = e.enrollment_class_id").
		Where("sf.student_fee_school_id = ? AND sf.student_fee_status IN ('pending','partial')", schoolID)
	if yearID != nil {
		q = q.Where("sf.student_fee_school_year_id = ?", *yearID)
	}
	q = q.Group("s.student_id, s.student_first_name, s.student_last_name, s.student_matricule, c.class_name").
		Having("SUM(sf.student_fee_balance) > 0")

	var total int64
	if err := db.WithContext(ctx).Table("(?) AS t", q.Session(&gorm.Session{}).Select("s.student_id")).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []dto.OutstandingItem{}
	err := q.Select(`s.student_id,
			TRIM(s.student_first_name || ' ' || s.student_last_name) AS student_name,
			s.student_matricule, c.class_name,
			SUM(sf.student_fee_balance) AS total_balance, COUNT(*) AS fee_count`).
		Order("total_balance DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error
	return rows, total, err
}
