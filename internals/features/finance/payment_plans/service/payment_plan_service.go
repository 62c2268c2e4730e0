package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/finance/payment_plans/dto"
	"schoolhub_backend/internals/features/finance/payment_plans/model"
	auditService "schoolhub_backend/internals/features/schools/audit_logs/service"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

/* =========================
   Templates
========================= */

func ListTemplates(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, yearID *uuid.UUID) ([]model.PaymentPlanTemplateModel, error) {
	q := db.WithContext(ctx).Where("payment_plan_template_school_id = ?", schoolID)
	if yearID != nil {
		q = q.Where("payment_plan_template_school_year_id = ?", *yearID)
	}
	rows := []model.PaymentPlanTemplateModel{}
	err := q.Order("payment_plan_template_is_default DESC, payment_plan_template_name ASC").Find(&rows).Error
	return rows, err
}

func loadTemplate(tx *gorm.DB, schoolID, id uuid.UUID) (model.PaymentPlanTemplateModel, error) {
	var m model.PaymentPlanTemplateModel
	err := tx.Where("payment_plan_template_id = ? AND payment_plan_template_school_id = ?", id, schoolID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "template cicilan tidak ditemukan")
	}
	return m, err
}

func ScheduleOf(m model.PaymentPlanTemplateModel) ([]model.ScheduleItem, error) {
	var items []model.ScheduleItem
	if err := json.Unmarshal(m.PaymentPlanTemplateSchedule, &items); err != nil {
		return nil, errors.Wrap(helper.ErrInvalidState, "jadwal template rusak")
	}
	return items, nil
}

// hanya satu template default per tahun ajaran
func clearDefault(tx *gorm.DB, schoolID, yearID uuid.UUID, except uuid.UUID) error {
	return tx.Model(&model.PaymentPlanTemplateModel{}).
		Where("payment_plan_template_school_id = ? AND payment_plan_template_school_year_id = ? AND payment_plan_template_id <> ?",
			schoolID, yearID, except).
		Update("payment_plan_template_is_default", false).Error
}

func CreateTemplate(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.TemplateRequest) (model.PaymentPlanTemplateModel, error) {
	items := req.Items()
	if err := ValidateSchedule(req.InstallmentsCount, items); err != nil {
		return model.PaymentPlanTemplateModel{}, err
	}
	raw, _ := json.Marshal(items)
	m := model.PaymentPlanTemplateModel{
		PaymentPlanTemplateSchoolID:          schoolID,
		PaymentPlanTemplateSchoolYearID:      req.SchoolYearID,
		PaymentPlanTemplateName:              req.Name,
		PaymentPlanTemplateInstallmentsCount: req.InstallmentsCount,
		PaymentPlanTemplateSchedule:          datatypes.JSON(raw),
		PaymentPlanTemplateIsDefault:         req.IsDefault,
		PaymentPlanTemplateStatus:            "active",
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if m.PaymentPlanTemplateIsDefault {
			return clearDefault(tx, schoolID, m.PaymentPlanTemplateSchoolYearID, m.PaymentPlanTemplateID)
		}
		return nil
	})
	return m, err
}

func UpdateTemplate(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, req dto.TemplateUpdateRequest) (model.PaymentPlanTemplateModel, error) {
	var m model.PaymentPlanTemplateModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = loadTemplate(tx, schoolID, id); err != nil {
			return err
		}
		u := map[string]any{}
		if req.Name != nil {
			u["payment_plan_template_name"] = *req.Name
		}
		if req.Status != nil {
			u["payment_plan_template_status"] = *req.Status
		}
		if req.IsDefault != nil {
			u["payment_plan_template_is_default"] = *req.IsDefault
		}
		if req.Schedule != nil || req.InstallmentsCount != nil {
			count := m.PaymentPlanTemplateInstallmentsCount
			if req.InstallmentsCount != nil {
				count = *req.InstallmentsCount
			}
			items, err := ScheduleOf(m)
			if err != nil {
				return err
			}
			if req.Schedule != nil {
				items = dto.TemplateRequest{Schedule: req.Schedule}.Items()
			}
			if err := ValidateSchedule(count, items); err != nil {
				return err
			}
			raw, _ := json.Marshal(items)
			u["payment_plan_template_installments_count"] = count
			u["payment_plan_template_schedule"] = datatypes.JSON(raw)
		}
		if len(u) > 0 {
			if err := tx.Model(&m).Updates(u).Error; err != nil {
				return err
			}
		}
		if req.IsDefault != nil && *req.IsDefault {
			if err := clearDefault(tx, schoolID, m.PaymentPlanTemplateSchoolYearID, id); err != nil {
				return err
			}
		}
		m, err = loadTemplate(tx, schoolID, id)
		return err
	})
	return m, err
}

func DeleteTemplate(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) error {
	tx := db.WithContext(ctx)
	m, err := loadTemplate(tx, schoolID, id)
	if err != nil {
		return err
	}
	var n int64
	if err := tx.Model(&model.PaymentPlanModel{}).Where("payment_plan_template_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return errors.Wrap(helper.ErrConflict, "template sudah dipakai rencana pembayaran, nonaktifkan saja")
	}
	return tx.Delete(&m).Error
}

/* =========================
   Plans
========================= */

func defaultTemplate(tx *gorm.DB, schoolID, yearID uuid.UUID) (model.PaymentPlanTemplateModel, error) {
	var m model.PaymentPlanTemplateModel
	err := tx.Where(`payment_plan_template_school_id = ? AND payment_plan_template_school_year_id = ?
			AND payment_plan_template_is_default = TRUE AND payment_plan_template_status = 'active'`, schoolID, yearID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrBadRequest, "belum ada template cicilan default untuk tahun ajaran ini")
	}
	return m, err
}

func outstandingFees(tx *gorm.DB, schoolID, studentID, yearID uuid.UUID) (float64, error) {
	var total float64
	err := tx.Table("student_fees").
		Select("COALESCE(SUM(student_fee_balance), 0)").
		Where(`student_fee_school_id = ? AND student_fee_student_id = ? AND student_fee_school_year_id = ?
			AND student_fee_status IN ('pending','partial')`, schoolID, studentID, yearID).
		Scan(&total).Error
	return total, err
}

// CreateFromTemplate: rencana + cicilan dalam satu transaksi
func CreateFromTemplate(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.CreatePlanRequest, actor *uuid.UUID) (dto.PlanDetail, error) {
	var out dto.PlanDetail
	start, err := dbtime.ParseDate(req.StartDate)
	if err != nil {
		return out, errors.Wrap(helper.ErrBadRequest, "start_date harus YYYY-MM-DD")
	}
	var planID uuid.UUID
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tpl model.PaymentPlanTemplateModel
		var err error
		if req.TemplateID != nil {
			tpl, err = loadTemplate(tx, schoolID, *req.TemplateID)
		} else {
			tpl, err = defaultTemplate(tx, schoolID, req.SchoolYearID)
		}
		if err != nil {
			return err
		}
		if tpl.PaymentPlanTemplateStatus != "active" {
			return errors.Wrap(helper.ErrInvalidState, "template cicilan tidak aktif")
		}
		items, err := ScheduleOf(tpl)
		if err != nil {
			return err
		}
		if err := ValidateSchedule(tpl.PaymentPlanTemplateInstallmentsCount, items); err != nil {
			return err
		}

		total := 0.0
		if req.TotalAmount != nil {
			total = helper.Round2(*req.TotalAmount)
		} else if total, err = outstandingFees(tx, schoolID, req.StudentID, req.SchoolYearID); err != nil {
			return err
		}
		if total <= 0 {
			return errors.Wrap(helper.ErrBadRequest, "tidak ada tagihan terbuka untuk dijadwalkan")
		}

		tplID := tpl.PaymentPlanTemplateID
		plan := model.PaymentPlanModel{
			PaymentPlanSchoolID:     schoolID,
			PaymentPlanStudentID:    req.StudentID,
			PaymentPlanSchoolYearID: req.SchoolYearID,
			PaymentPlanTemplateID:   &tplID,
			PaymentPlanTotalAmount:  total,
			PaymentPlanBalance:      total,
			PaymentPlanStatus:       model.PlanActive,
			PaymentPlanNotes:        req.Notes,
			PaymentPlanCreatedBy:    actor,
		}
		if err := tx.Create(&plan).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return errors.Wrap(helper.ErrConflict, "siswa sudah punya rencana pembayaran di tahun ajaran ini")
			}
			return err
		}
		insts := BuildInstallments(schoolID, plan.PaymentPlanID, total, start, items)
		if err := tx.Create(&insts).Error; err != nil {
			return err
		}
		planID = plan.PaymentPlanID
		return auditService.Record(tx, schoolID, actor, "payment_plan.created", "payment_plan", &planID, map[string]any{
			"student_id": req.StudentID, "total": total, "installments": len(insts),
		})
	})
	if err != nil {
		return out, err
	}
	return Get(ctx, db, schoolID, planID)
}

func Get(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (dto.PlanDetail, error) {
	var out dto.PlanDetail
	tx := db.WithContext(ctx)
	res := tx.Table("payment_plans pp").
		Select(`pp.*, TRIM(s.student_first_name || ' ' || s.student_last_name) AS student_name`).
		Joins("JOIN students s ON s.student_id = pp.payment_plan_student_id").
		Where("pp.payment_plan_id = ? AND pp.payment_plan_school_id = ?", id, schoolID).
		Scan(&out)
	if res.Error != nil {
		return out, res.Error
	}
	if res.RowsAffected == 0 {
		return out, errors.Wrap(helper.ErrNotFound, "rencana pembayaran tidak ditemukan")
	}
	out.Installments = []model.InstallmentModel{}
	err := tx.Where("installment_payment_plan_id = ?", id).Order("installment_number ASC").Find(&out.Installments).Error
	return out, err
}

type PlanFilter struct {
	SchoolYearID *uuid.UUID
	StudentID    *uuid.UUID
	Status       string
}

func List(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, f PlanFilter, p helper.Params) ([]dto.PlanItem, int64, error) {
	q := db.WithContext(ctx).Table("payment_plans pp").
		Joins("JOIN students s ON s.student_id = pp.payment_plan_student_id").
		Where("pp.payment_plan_school_id = ?", schoolID)
	if f.SchoolYearID != nil {
		q = q.Where("pp.payment_plan_school_year_id = ?", *f.SchoolYearID)
	}
	if f.StudentID != nil {
		q = q.Where("pp.payment_plan_student_id = ?", *f.StudentID)
	}
	if f.Status != "" {
		q = q.Where("pp.payment_plan_status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []dto.PlanItem{}
	err := q.Select(`pp.*, TRIM(s.student_first_name || ' ' || s.student_last_name) AS student_name,
			(SELECT COUNT(*) FROM installments i WHERE i.installment_payment_plan_id = pp.payment_plan_id) AS installment_count,
			(SELECT COUNT(*) FROM installments i WHERE i.installment_payment_plan_id = pp.payment_plan_id
				AND i.installment_status = 'overdue') AS overdue_count`).
		Order("pp.payment_plan_created_at DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

// Cancel: plan yang sudah lunas tidak bisa dibatalkan
func Cancel(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, reason *string, actor *uuid.UUID) (dto.PlanDetail, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan model.PaymentPlanModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_plan_id = ? AND payment_plan_school_id = ?", id, schoolID).
			First(&plan).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(helper.ErrNotFound, "rencana pembayaran tidak ditemukan")
		}
		if err != nil {
			return err
		}
		switch plan.PaymentPlanStatus {
		case model.PlanCancelled:
			return errors.Wrap(helper.ErrConflict, "rencana pembayaran sudah dibatalkan")
		case model.PlanCompleted:
			return errors.Wrap(helper.ErrInvalidState, "rencana pembayaran sudah lunas")
		}
		if err := tx.Model(&plan).Update("payment_plan_status", model.PlanCancelled).Error; err != nil {
			return err
		}
		data := map[string]any{}
		if reason != nil {
			data["reason"] = *reason
		}
		return auditService.Record(tx, schoolID, actor, "payment_plan.cancelled", "payment_plan", &plan.PaymentPlanID, data)
	})
	if err != nil {
		return dto.PlanDetail{}, err
	}
	return Get(ctx, db, schoolID, id)
}

func Summary(ctx context.Context, db *gorm.DB, schoolID, yearID uuid.UUID) (dto.PlanSummary, error) {
	var out dto.PlanSummary
	err := db.WithContext(ctx).Model(&model.PaymentPlanModel{}).
		Select(`COUNT(*) AS total_plans,
			COUNT(*) FILTER (WHERE payment_plan_status = 'active') AS active_plans,
			COUNT(*) FILTER (WHERE payment_plan_status = 'completed') AS completed_plans,
			COUNT(*) FILTER (WHERE payment_plan_status = 'defaulted') AS defaulted_plans,
			COUNT(*) FILTER (WHERE payment_plan_status = 'cancelled') AS cancelled_plans,
			COALESCE(SUM(payment_plan_total_amount) FILTER (WHERE payment_plan_status <> 'cancelled'), 0) AS total_expected,
			COALESCE(SUM(payment_plan_paid_amount), 0) AS total_collected,
			COALESCE(SUM(payment_plan_balance) FILTER (WHERE payment_plan_status <> 'cancelled'), 0) AS total_outstanding`).
		Where("payment_plan_school_id = ? AND payment_plan_school_year_id = ?", schoolID, yearID).
		Scan(&out).Error
	return out, err
}

// WaiveInstallment: saldo cicilan dihapus dan dikurangkan dari saldo plan
func WaiveInstallment(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, actor *uuid.UUID) (model.InstallmentModel, error) {
	var inst model.InstallmentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("installment_id = ? AND installment_school_id = ?", id, schoolID).
			First(&inst).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(helper.ErrNotFound, "cicilan tidak ditemukan")
		}
		if err != nil {
			return err
		}
		if inst.InstallmentStatus == model.InstallmentPaid || inst.InstallmentStatus == model.InstallmentWaived {
			return errors.Wrapf(helper.ErrInvalidState, "cicilan berstatus %s", inst.InstallmentStatus)
		}
		var plan model.PaymentPlanModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&plan, "payment_plan_id = ?", inst.InstallmentPaymentPlanID).Error; err != nil {
			return err
		}
		waived := inst.InstallmentBalance
		if err := tx.Model(&inst).Updates(map[string]any{
			"installment_status":       model.InstallmentWaived,
			"installment_balance":      0,
			"installment_days_overdue": 0,
		}).Error; err != nil {
			return err
		}
		balance := helper.FromCents(max(helper.ToCents(plan.PaymentPlanBalance)-helper.ToCents(waived), 0))
		pu := map[string]any{"payment_plan_balance": balance}
		if balance <= 0 && plan.PaymentPlanStatus == model.PlanActive {
			pu["payment_plan_status"] = model.PlanCompleted
		}
		if err := tx.Model(&plan).Updates(pu).Error; err != nil {
			return err
		}
		if err := auditService.Record(tx, schoolID, actor, "installment.waived", "installment", &inst.InstallmentID, map[string]any{
			"amount": waived, "payment_plan_id": plan.PaymentPlanID,
		}); err != nil {
			return err
		}
		return tx.First(&inst, "installment_id = ?", id).Error
	})
	return inst, err
}

/* =========================
   Overdue
========================= */

// MarkOverdue: cicilan lewat jatuh tempo (pending/partial) → overdue, days_overdue dihitung ulang.
// schoolID nil = semua sekolah (scheduler & CLI).
func MarkOverdue(ctx context.Context, db *gorm.DB, schoolID *uuid.UUID, today time.Time) (int64, error) {
	day := dbtime.DateOnly(today).Format(dbtime.DateLayout)
	q := db.WithContext(ctx).Model(&model.InstallmentModel{}).
		Where("installment_due_date < ?::date AND installment_status IN ?", day,
			[]string{model.InstallmentPending, model.InstallmentPartial, model.InstallmentOverdue}).
		Where("installment_payment_plan_id IN (?)",
			db.Table("payment_plans").Select("payment_plan_id").Where("payment_plan_status = ?", model.PlanActive))
	if schoolID != nil {
		q = q.Where("installment_school_id = ?", *schoolID)
	}
	res := q.Updates(map[string]any{
		"installment_status":       model.InstallmentOverdue,
		"installment_days_overdue": gorm.Expr("(?::date - installment_due_date)", day),
		"installment_updated_at":   time.Now(),
	})
	return res.RowsAffected, res.Error
}

func ListOverdue(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, yearID *uuid.UUID) ([]dto.OverdueItem, error) {
	q := db.WithContext(ctx).Table("installments i").
		Select(`i.installment_id, pp.payment_plan_id, pp.payment_plan_student_id AS student_id,
			TRIM(s.student_first_name || ' ' || s.student_last_name) AS student_name,
			i.installment_number, i.installment_amount AS amount, i.installment_balance AS balance,
			TO_CHAR(i.installment_due_date, 'YYYY-MM-DD') AS due_date, i.installment_days_overdue AS days_overdue`).
		Joins("JOIN payment_plans pp ON pp.payment_plan_id = i.installment_payment_plan_id").
		Joins("JOIN students s ON s.student_id = pp.payment_plan_student_id").
		Where("i.installment_school_id = ? AND i.installment_status = 'overdue'", schoolID)
	if yearID != nil {
		q = q.Where("pp.payment_plan_school_year_id = ?", *yearID)
	}
	rows := []dto.OverdueItem{}
	err := q.Order("i.installment_days_overdue DESC").Scan(&rows).Error
	return rows, err
}
