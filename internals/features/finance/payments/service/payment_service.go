package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	feeModel "schoolhub_backend/internals/features/finance/fees/model"
	planModel "schoolhub_backend/internals/features/finance/payment_plans/model"
	"schoolhub_backend/internals/features/finance/payments/dto"
	"schoolhub_backend/internals/features/finance/payments/model"
	auditService "schoolhub_backend/internals/features/schools/audit_logs/service"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

const paymentSelect = `p.*, TRIM(s.student_first_name || ' ' || s.student_last_name) AS student_name,
	s.student_matricule, COALESCE(u.full_name, u.user_name) AS processed_by_name`

func paymentQuery(db *gorm.DB) *gorm.DB {
	return db.Table("payments p").
		Joins("JOIN students s ON s.student_id = p.payment_student_id").
		Joins("LEFT JOIN users u ON u.id = p.payment_processed_by")
}

func lockPayment(tx *gorm.DB, schoolID, id uuid.UUID) (model.PaymentModel, error) {
	var p model.PaymentModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_id = ? AND payment_school_id = ?", id, schoolID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, errors.Wrap(helper.ErrNotFound, "pembayaran tidak ditemukan")
	}
	return p, err
}

// NextReceiptNumber: REC-YYYY-NNNNN berikutnya untuk sekolah; dipanggil di dalam tx.
func NextReceiptNumber(tx *gorm.DB, schoolID uuid.UUID, now time.Time) (string, error) {
	prefix := SequencePrefix(ReceiptPrefix, now.Year())
	if err := LockSequence(tx, schoolID, prefix); err != nil {
		return "", err
	}
	return NextNumber(tx, "payments", "payment_receipt_number", "payment_school_id", schoolID, prefix)
}

/* =========================
   Apply / reverse allocations
========================= */

func applyToFee(tx *gorm.DB, p model.PaymentModel, feeID uuid.UUID, amt float64) error {
	var fee feeModel.StudentFeeModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_fee_id = ? AND student_fee_school_id = ?", feeID, p.PaymentSchoolID).
		First(&fee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(helper.ErrNotFound, "tagihan siswa tidak ditemukan")
	}
	if err != nil {
		return err
	}
	if fee.StudentFeeStudentID != p.PaymentStudentID {
		return errors.Wrap(helper.ErrBadRequest, "tagihan bukan milik siswa ini")
	}
	if fee.StudentFeeStatus == feeModel.StudentFeeWaived || fee.StudentFeeStatus == feeModel.StudentFeeCancelled {
		return errors.Wrapf(helper.ErrInvalidState, "tagihan berstatus %s", fee.StudentFeeStatus)
	}
	paid, bal, status := ApplyAmount(fee.StudentFeePaidAmount, fee.StudentFeeBalance, amt)
	return tx.Model(&fee).Updates(map[string]any{
		"student_fee_paid_amount": paid,
		"student_fee_balance":     bal,
		"student_fee_status":      status,
	}).Error
}

func applyToInstallment(tx *gorm.DB, p model.PaymentModel, instID uuid.UUID, amt float64, now time.Time) error {
	var inst planModel.InstallmentModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("installment_id = ? AND installment_school_id = ?", instID, p.PaymentSchoolID).
		First(&inst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(helper.ErrNotFound, "cicilan tidak ditemukan")
	}
	if err != nil {
		return err
	}
	if p.PaymentPaymentPlanID != nil && inst.InstallmentPaymentPlanID != *p.PaymentPaymentPlanID {
		return errors.Wrap(helper.ErrBadRequest, "cicilan bukan bagian dari rencana pembayaran ini")
	}
	if inst.InstallmentStatus == planModel.InstallmentWaived {
		return errors.Wrap(helper.ErrInvalidState, "cicilan sudah dibebaskan")
	}
	paid, bal, status := ApplyAmount(inst.InstallmentPaidAmount, inst.InstallmentBalance, amt)
	u := map[string]any{
		"installment_paid_amount": paid,
		"installment_balance":     bal,
		"installment_status":      status,
	}
	if status == planModel.InstallmentPaid {
		u["installment_paid_at"] = now
		u["installment_days_overdue"] = 0
	}
	return tx.Model(&inst).Updates(u).Error
}

func applyToPlan(tx *gorm.DB, p model.PaymentModel) error {
	var plan planModel.PaymentPlanModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_plan_id = ? AND payment_plan_school_id = ?", *p.PaymentPaymentPlanID, p.PaymentSchoolID).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(helper.ErrNotFound, "rencana pembayaran tidak ditemukan")
	}
	if err != nil {
		return err
	}
	if plan.PaymentPlanStudentID != p.PaymentStudentID {
		return errors.Wrap(helper.ErrBadRequest, "rencana pembayaran bukan milik siswa ini")
	}
	if plan.PaymentPlanStatus == planModel.PlanCancelled {
		return errors.Wrap(helper.ErrInvalidState, "rencana pembayaran sudah dibatalkan")
	}
	paid, bal, _ := ApplyAmount(plan.PaymentPlanPaidAmount, plan.PaymentPlanBalance, p.PaymentAmount)
	u := map[string]any{"payment_plan_paid_amount": paid, "payment_plan_balance": bal}
	if bal <= 0 {
		u["payment_plan_status"] = planModel.PlanCompleted
	}
	return tx.Model(&plan).Updates(u).Error
}

func applyAllocations(tx *gorm.DB, p model.PaymentModel, allocs []model.PaymentAllocationModel) error {
	now := time.Now()
	for _, a := range allocs {
		if a.PaymentAllocationStudentFeeID != nil {
			if err := applyToFee(tx, p, *a.PaymentAllocationStudentFeeID, a.PaymentAllocationAmount); err != nil {
				return err
			}
		}
		if a.PaymentAllocationInstallmentID != nil {
			if err := applyToInstallment(tx, p, *a.PaymentAllocationInstallmentID, a.PaymentAllocationAmount, now); err != nil {
				return err
			}
		}
	}
	if p.PaymentPaymentPlanID != nil {
		return applyToPlan(tx, p)
	}
	return nil
}

func reverseAllocations(tx *gorm.DB, p model.PaymentModel) error {
	var allocs []model.PaymentAllocationModel
	if err := tx.Where("payment_allocation_payment_id = ?", p.PaymentID).Find(&allocs).Error; err != nil {
		return err
	}
	for _, a := range allocs {
		if a.PaymentAllocationStudentFeeID != nil {
			var fee feeModel.StudentFeeModel
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&fee, "student_fee_id = ?", *a.PaymentAllocationStudentFeeID).Error; err != nil {
				return err
			}
			paid, bal, status := ReverseAmount(fee.StudentFeePaidAmount, fee.StudentFeeBalance, a.PaymentAllocationAmount)
			if err := tx.Model(&fee).Updates(map[string]any{
				"student_fee_paid_amount": paid,
				"student_fee_balance":     bal,
				"student_fee_status":      status,
			}).Error; err != nil {
				return err
			}
		}
		if a.PaymentAllocationInstallmentID != nil {
			var inst planModel.InstallmentModel
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&inst, "installment_id = ?", *a.PaymentAllocationInstallmentID).Error; err != nil {
				return err
			}
			paid, bal, status := ReverseAmount(inst.InstallmentPaidAmount, inst.InstallmentBalance, a.PaymentAllocationAmount)
			if err := tx.Model(&inst).Updates(map[string]any{
				"installment_paid_amount": paid,
				"installment_balance":     bal,
				"installment_status":      status,
				"installment_paid_at":     nil,
			}).Error; err != nil {
				return err
			}
		}
	}
	if p.PaymentPaymentPlanID == nil {
		return nil
	}
	var plan planModel.PaymentPlanModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&plan, "payment_plan_id = ?", *p.PaymentPaymentPlanID).Error; err != nil {
		return err
	}
	paid, bal, _ := ReverseAmount(plan.PaymentPlanPaidAmount, plan.PaymentPlanBalance, p.PaymentAmount)
	u := map[string]any{"payment_plan_paid_amount": paid, "payment_plan_balance": bal}
	if plan.PaymentPlanStatus != planModel.PlanCancelled {
		u["payment_plan_status"] = planModel.PlanActive
	}
	return tx.Model(&plan).Updates(u).Error
}

/* =========================
   Create / cancel
========================= */

func ensureStudent(tx *gorm.DB, schoolID, studentID uuid.UUID) error {
	var n int64
	if err := tx.Table("students").
		Where("student_id = ? AND student_school_id = ?", studentID, schoolID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(helper.ErrNotFound, "siswa tidak ditemukan")
	}
	return nil
}

// CreatePayment: pembayaran kasir + alokasi, semua dalam satu transaksi.
func CreatePayment(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.CreatePaymentRequest, actor *uuid.UUID) (dto.PaymentDetail, error) {
	if err := ValidateAllocations(req.Amount, req.Allocations); err != nil {
		return dto.PaymentDetail{}, err
	}
	day := dbtime.Today()
	if strings.TrimSpace(req.PaymentDate) != "" {
		d, err := dbtime.ParseDate(req.PaymentDate)
		if err != nil {
			return dto.PaymentDetail{}, errors.Wrap(helper.ErrBadRequest, "payment_date harus YYYY-MM-DD")
		}
		day = d
	}

	var id uuid.UUID
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureStudent(tx, schoolID, req.StudentID); err != nil {
			return err
		}
		receipt, err := NextReceiptNumber(tx, schoolID, time.Now())
		if err != nil {
			return err
		}
		p := model.PaymentModel{
			PaymentSchoolID:       schoolID,
			PaymentStudentID:      req.StudentID,
			PaymentPaymentPlanID:  req.PaymentPlanID,
			PaymentAmount:         helper.Round2(req.Amount),
			PaymentCurrency:       feeModel.DefaultCurrency,
			PaymentMethod:         req.Method,
			PaymentMobileProvider: req.MobileProvider,
			PaymentReference:      req.Reference,
			PaymentReceiptNumber:  receipt,
			PaymentDate:           day,
			PaymentStatus:         model.StatusCompleted,
			PaymentNotes:          req.Notes,
			PaymentProcessedBy:    actor,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		allocs := make([]model.PaymentAllocationModel, 0, len(req.Allocations))
		for _, a := range req.Allocations {
			allocs = append(allocs, model.PaymentAllocationModel{
				PaymentAllocationPaymentID:     p.PaymentID,
				PaymentAllocationStudentFeeID:  a.StudentFeeID,
				PaymentAllocationInstallmentID: a.InstallmentID,
				PaymentAllocationAmount:        helper.Round2(a.Amount),
			})
		}
		if err := tx.Create(&allocs).Error; err != nil {
			return err
		}
		if err := applyAllocations(tx, p, allocs); err != nil {
			return err
		}
		id = p.PaymentID
		return auditService.Record(tx, schoolID, actor, "payment.created", "payment", &id, map[string]any{
			"receipt_number": receipt, "amount": p.PaymentAmount, "method": p.PaymentMethod,
		})
	})
	if err != nil {
		return dto.PaymentDetail{}, err
	}
	return Get(ctx, db, schoolID, id)
}

// CancelPayment: alokasi dibalik (hanya kalau pembayaran sudah completed).
func CancelPayment(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, reason string, actor *uuid.UUID) (dto.PaymentDetail, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPayment(tx, schoolID, id)
		if err != nil {
			return err
		}
		switch p.PaymentStatus {
		case model.StatusCancelled:
			return errors.Wrap(helper.ErrConflict, "pembayaran sudah dibatalkan")
		case model.StatusRefunded, model.StatusPartialRefund:
			return errors.Wrap(helper.ErrInvalidState, "pembayaran sudah direfund, tidak bisa dibatalkan")
		case model.StatusCompleted:
			if err := reverseAllocations(tx, p); err != nil {
				return err
			}
		}
		now := time.Now()
		if err := tx.Model(&p).Updates(map[string]any{
			"payment_status":              model.StatusCancelled,
			"payment_cancelled_at":        now,
			"payment_cancelled_by":        actor,
			"payment_cancellation_reason": reason,
		}).Error; err != nil {
			return err
		}
		return auditService.Record(tx, schoolID, actor, "payment.cancelled", "payment", &p.PaymentID, map[string]any{
			"receipt_number": p.PaymentReceiptNumber, "reason": reason,
		})
	})
	if err != nil {
		return dto.PaymentDetail{}, err
	}
	return Get(ctx, db, schoolID, id)
}

/* =========================
   Read
========================= */

type PaymentFilter struct {
	StudentID *uuid.UUID
	Status    string
	Method    string
	From      *time.Time
	To        *time.Time
	Q         string
}

func List(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, f PaymentFilter, p helper.Params) ([]dto.PaymentItem, int64, error) {
	q := paymentQuery(db.WithContext(ctx)).Where("p.payment_school_id = ?", schoolID)
	if f.StudentID != nil {
		q = q.Where("p.payment_student_id = ?", *f.StudentID)
	}
	if f.Status != "" {
		q = q.Where("p.payment_status = ?", f.Status)
	}
	if f.Method != "" {
		q = q.Where("p.payment_method = ?", f.Method)
	}
	if f.From != nil {
		q = q.Where("p.payment_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("p.payment_date <= ?", *f.To)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + s + "%"
		q = q.Where(`(p.payment_receipt_number ILIKE ? OR p.payment_reference ILIKE ?
			OR s.student_last_name ILIKE ? OR s.student_first_name ILIKE ? OR s.student_matricule ILIKE ?)`,
			like, like, like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []dto.PaymentItem{}
	err := q.Select(paymentSelect).
		Order("p.payment_date DESC, p.payment_receipt_number DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

func Get(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (dto.PaymentDetail, error) {
	var out dto.PaymentDetail
	tx := db.WithContext(ctx)
	res := paymentQuery(tx).Select(paymentSelect).
		Where("p.payment_id = ? AND p.payment_school_id = ?", id, schoolID).
		Scan(&out)
	if res.Error != nil {
		return out, res.Error
	}
	if res.RowsAffected == 0 {
		return out, errors.Wrap(helper.ErrNotFound, "pembayaran tidak ditemukan")
	}
	out.Allocations = []dto.AllocationItem{}
	err := tx.Table("payment_allocations a").
		Select("a.*, ft.fee_type_name, i.installment_number").
		Joins("LEFT JOIN student_fees sf ON sf.student_fee_id = a.payment_allocation_student_fee_id").
		Joins("LEFT JOIN fee_structures fs ON fs.fee_structure_id = sf.student_fee_fee_structure_id").
		Joins("LEFT JOIN fee_types ft ON ft.fee_type_id = fs.fee_structure_fee_type_id").
		Joins("LEFT JOIN installments i ON i.installment_id = a.payment_allocation_installment_id").
		Where("a.payment_allocation_payment_id = ?", id).
		Order("a.payment_allocation_created_at ASC").
		Scan(&out.Allocations).Error
	return out, err
}

// ReceiptLines: label per alokasi; cicilan tanpa jenis biaya → "Versement N".
func ReceiptLines(allocs []dto.AllocationItem) []dto.ReceiptLine {
	out := make([]dto.ReceiptLine, 0, len(allocs))
	for _, a := range allocs {
		label := "Paiement"
		switch {
		case a.FeeTypeName != nil && a.InstallmentNumber != nil:
			label = *a.FeeTypeName + " (versement " + strconv.Itoa(*a.InstallmentNumber) + ")"
		case a.FeeTypeName != nil:
			label = *a.FeeTypeName
		case a.InstallmentNumber != nil:
			label = "Versement " + strconv.Itoa(*a.InstallmentNumber)
		}
		out = append(out, dto.ReceiptLine{Label: label, Amount: a.PaymentAllocationAmount})
	}
	return out
}

func Receipt(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (dto.ReceiptData, error) {
	d, err := Get(ctx, db, schoolID, id)
	if err != nil {
		return dto.ReceiptData{}, err
	}
	var schoolName string
	if err := db.WithContext(ctx).Table("schools").Select("school_name").
		Where("school_id = ?", schoolID).Scan(&schoolName).Error; err != nil {
		return dto.ReceiptData{}, err
	}
	return dto.ReceiptData{
		SchoolName:       schoolName,
		ReceiptNumber:    d.PaymentReceiptNumber,
		PaymentDate:      d.PaymentDate.Format(dbtime.DateLayout),
		StudentName:      d.StudentName,
		StudentMatricule: d.StudentMatricule,
		Method:           d.PaymentMethod,
		MobileProvider:   d.PaymentMobileProvider,
		Reference:        d.PaymentReference,
		Amount:           d.PaymentAmount,
		Currency:         d.PaymentCurrency,
		Status:           d.PaymentStatus,
		Cashier:          d.ProcessedByName,
		Lines:            ReceiptLines(d.Allocations),
		IssuedAt:         time.Now(),
	}, nil
}

/* =========================
   Cashier
========================= */

func cashierDay(db *gorm.DB, schoolID, cashierID uuid.UUID, day time.Time) *gorm.DB {
	return db.Where(`payment_school_id = ? AND payment_processed_by = ? AND payment_date = ? AND payment_status = ?`,
		schoolID, cashierID, dbtime.DateOnly(day), model.StatusCompleted)
}

// CashierDailySummary: jumlah & total per metode untuk satu kasir pada satu tanggal.
func CashierDailySummary(ctx context.Context, db *gorm.DB, schoolID, cashierID uuid.UUID, day time.Time) (dto.CashierSummary, error) {
	out := dto.CashierSummary{CashierID: cashierID, Date: dbtime.DateOnly(day).Format(dbtime.DateLayout), ByMethod: []dto.MethodTotal{}}
	err := cashierDay(db.WithContext(ctx).Model(&model.PaymentModel{}), schoolID, cashierID, day).
		Select("payment_method AS method, COUNT(*) AS count, COALESCE(SUM(payment_amount), 0) AS amount").
		Group("payment_method").
		Order("payment_method").
		Scan(&out.ByMethod).Error
	if err != nil {
		return out, err
	}
	var total int64
	for _, m := range out.ByMethod {
		out.TotalPayments += m.Count
		total += helper.ToCents(m.Amount)
	}
	out.TotalAmount = helper.FromCents(total)
	return out, nil
}

func CashierPayments(ctx context.Context, db *gorm.DB, schoolID, cashierID uuid.UUID, day time.Time) ([]dto.PaymentItem, error) {
	rows := []dto.PaymentItem{}
	err := paymentQuery(db.WithContext(ctx)).Select(paymentSelect).
		Where(`p.payment_school_id = ? AND p.payment_processed_by = ? AND p.payment_date = ? AND p.payment_status = ?`,
			schoolID, cashierID, dbtime.DateOnly(day), model.StatusCompleted).
		Order("p.payment_receipt_number ASC").
		Scan(&rows).Error
	return rows, err
}
