package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	payModel "schoolhub_backend/internals/features/finance/payments/model"
	payService "schoolhub_backend/internals/features/finance/payments/service"
	"schoolhub_backend/internals/features/finance/refunds/dto"
	"schoolhub_backend/internals/features/finance/refunds/model"
	auditService "schoolhub_backend/internals/features/schools/audit_logs/service"
	helper "schoolhub_backend/internals/helpers"
)

// Refundable: sisa yang masih bisa direfund
func Refundable(paymentAmount, processed float64) float64 {
	return helper.FromCents(max(helper.ToCents(paymentAmount)-helper.ToCents(processed), 0))
}

// PaymentStatusAfterRefund: refunded kalau total refund = nominal, selain itu partial_refund.
func PaymentStatusAfterRefund(paymentAmount, refundedTotal float64) string {
	if helper.ToCents(refundedTotal) >= helper.ToCents(paymentAmount) {
		return payModel.StatusRefunded
	}
	return payModel.StatusPartialRefund
}

func processedTotal(tx *gorm.DB, paymentID uuid.UUID) (float64, error) {
	var total float64
	err := tx.Model(&model.RefundModel{}).
		Select("COALESCE(SUM(refund_amount), 0)").
		Where("refund_payment_id = ? AND refund_status = ?", paymentID, model.StatusProcessed).
		Scan(&total).Error
	return total, err
}

func lockPayment(tx *gorm.DB, schoolID, id uuid.UUID) (payModel.PaymentModel, error) {
	var p payModel.PaymentModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_id = ? AND payment_school_id = ?", id, schoolID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, errors.Wrap(helper.ErrNotFound, "pembayaran tidak ditemukan")
	}
	return p, err
}

func lockRefund(tx *gorm.DB, schoolID, id uuid.UUID) (model.RefundModel, error) {
	var r model.RefundModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("refund_id = ? AND refund_school_id = ?", id, schoolID).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r, errors.Wrap(helper.ErrNotFound, "refund tidak ditemukan")
	}
	return r, err
}

// CheckPaymentRefundable: hanya payment completed / partial_refund; pending belum settle,
// cancelled alokasinya sudah dibalik.
func CheckPaymentRefundable(status string) error {
	if status != payModel.StatusCompleted && status != payModel.StatusPartialRefund {
		return errors.Wrapf(helper.ErrInvalidState, "pembayaran berstatus %s tidak bisa direfund", status)
	}
	return nil
}

func refundable(tx *gorm.DB, p payModel.PaymentModel) (float64, error) {
	if err := CheckPaymentRefundable(p.PaymentStatus); err != nil {
		return 0, err
	}
	done, err := processedTotal(tx, p.PaymentID)
	if err != nil {
		return 0, err
	}
	return Refundable(p.PaymentAmount, done), nil
}

func Create(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.CreateRefundRequest, actor *uuid.UUID) (model.RefundModel, error) {
	var r model.RefundModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPayment(tx, schoolID, req.PaymentID)
		if err != nil {
			return err
		}
		left, err := refundable(tx, p)
		if err != nil {
			return err
		}
		amount := helper.Round2(req.Amount)
		if helper.ToCents(amount) > helper.ToCents(left) {
			return errors.Wrapf(helper.ErrBadRequest, "nominal refund %.2f melebihi sisa %.2f", amount, left)
		}
		prefix := payService.SequencePrefix(payService.RefundPrefix, time.Now().Year())
		if err := payService.LockSequence(tx, schoolID, prefix); err != nil {
			return err
		}
		number, err := payService.NextNumber(tx, "refunds", "refund_number", "refund_school_id", schoolID, prefix)
		if err != nil {
			return err
		}
		category := req.ReasonCategory
		if category == "" {
			category = "other"
		}
		r = model.RefundModel{
			RefundSchoolID:       schoolID,
			RefundPaymentID:      p.PaymentID,
			RefundNumber:         number,
			RefundAmount:         amount,
			RefundReason:         req.Reason,
			RefundReasonCategory: category,
			RefundStatus:         model.StatusPending,
			RefundMethod:         req.Method,
			RefundRequestedBy:    actor,
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		return auditService.Record(tx, schoolID, actor, "refund.requested", "refund", &r.RefundID, map[string]any{
			"refund_number": number, "amount": amount, "payment_id": p.PaymentID,
		})
	})
	return r, err
}

// transition: kunci refund, cek status asal, update, audit
func transition(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, actor *uuid.UUID, action string,
	from []string, updates func(model.RefundModel) map[string]any) (model.RefundModel, error) {
	var r model.RefundModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if r, err = lockRefund(tx, schoolID, id); err != nil {
			return err
		}
		ok := false
		for _, s := range from {
			ok = ok || r.RefundStatus == s
		}
		if !ok {
			return errors.Wrapf(helper.ErrInvalidState, "refund berstatus %s", r.RefundStatus)
		}
		if err := tx.Model(&r).Updates(updates(r)).Error; err != nil {
			return err
		}
		if err := auditService.Record(tx, schoolID, actor, action, "refund", &r.RefundID, map[string]any{
			"refund_number": r.RefundNumber,
		}); err != nil {
			return err
		}
		return tx.First(&r, "refund_id = ?", id).Error
	})
	return r, err
}

func Approve(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, actor *uuid.UUID) (model.RefundModel, error) {
	return transition(ctx, db, schoolID, id, actor, "refund.approved", []string{model.StatusPending},
		func(model.RefundModel) map[string]any {
			return map[string]any{
				"refund_status":      model.StatusApproved,
				"refund_approved_by": actor,
				"refund_approved_at": time.Now(),
			}
		})
}

func Reject(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, reason string, actor *uuid.UUID) (model.RefundModel, error) {
	return transition(ctx, db, schoolID, id, actor, "refund.rejected", []string{model.StatusPending},
		func(model.RefundModel) map[string]any {
			return map[string]any{
				"refund_status":           model.StatusRejected,
				"refund_rejected_by":      actor,
				"refund_rejected_at":      time.Now(),
				"refund_rejection_reason": reason,
			}
		})
}

func Cancel(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, actor *uuid.UUID) (model.RefundModel, error) {
	return transition(ctx, db, schoolID, id, actor, "refund.cancelled", []string{model.StatusPending, model.StatusApproved},
		func(model.RefundModel) map[string]any {
			return map[string]any{"refund_status": model.StatusCancelled}
		})
}

// Process: hanya refund approved; status payment ikut diperbarui di transaksi yang sama.
func Process(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, req dto.ProcessRefundRequest, actor *uuid.UUID) (model.RefundModel, error) {
	var r model.RefundModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if r, err = lockRefund(tx, schoolID, id); err != nil {
			return err
		}
		if r.RefundStatus != model.StatusApproved {
			return errors.Wrap(helper.ErrInvalidState, "refund harus disetujui dulu")
		}
		p, err := lockPayment(tx, schoolID, r.RefundPaymentID)
		if err != nil {
			return err
		}
		left, err := refundable(tx, p)
		if err != nil {
			return err
		}
		if helper.ToCents(r.RefundAmount) > helper.ToCents(left) {
			return errors.Wrapf(helper.ErrConflict, "nominal refund %.2f melebihi sisa %.2f", r.RefundAmount, left)
		}
		refunded := helper.FromCents(helper.ToCents(p.PaymentAmount) - helper.ToCents(left) + helper.ToCents(r.RefundAmount))
		status := PaymentStatusAfterRefund(p.PaymentAmount, refunded)
		if err := tx.Model(&p).Update("payment_status", status).Error; err != nil {
			return err
		}
		if err := tx.Model(&r).Updates(map[string]any{
			"refund_status":       model.StatusProcessed,
			"refund_method":       req.Method,
			"refund_reference":    req.Reference,
			"refund_processed_by": actor,
			"refund_processed_at": time.Now(),
		}).Error; err != nil {
			return err
		}
		if err := auditService.Record(tx, schoolID, actor, "refund.processed", "refund", &r.RefundID, map[string]any{
			"refund_number": r.RefundNumber, "amount": r.RefundAmount, "payment_status": status,
		}); err != nil {
			return err
		}
		return tx.First(&r, "refund_id = ?", id).Error
	})
	return r, err
}

/* =========================
   Read
========================= */

type RefundFilter struct {
	PaymentID *uuid.UUID
	Status    string
	From      *time.Time
	To        *time.Time
}

func refundQuery(db *gorm.DB) *gorm.DB {
	return db.Table("refunds r").
		Joins("JOIN payments p ON p.payment_id = r.refund_payment_id").
		Joins("JOIN students s ON s.student_id = p.payment_student_id")
}

const refundSelect = `r.*, p.payment_receipt_number AS receipt_number, p.payment_amount,
	p.payment_student_id AS student_id, TRIM(s.student_first_name || ' ' || s.student_last_name) AS student_name`

func List(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, f RefundFilter, p helper.Params) ([]dto.RefundItem, int64, error) {
	q := refundQuery(db.WithContext(ctx)).Where("r.refund_school_id = ?", schoolID)
	if f.PaymentID != nil {
		q = q.Where("r.refund_payment_id = ?", *f.PaymentID)
	}
	if f.Status != "" {
		q = q.Where("r.refund_status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("r.refund_created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("r.refund_created_at < ?", f.To.AddDate(0, 0, 1))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []dto.RefundItem{}
	err := q.Select(refundSelect).
		Order("r.refund_created_at DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

func Get(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (dto.RefundItem, error) {
	var out dto.RefundItem
	res := refundQuery(db.WithContext(ctx)).Select(refundSelect).
		Where("r.refund_id = ? AND r.refund_school_id = ?", id, schoolID).
		Scan(&out)
	if res.Error != nil {
		return out, res.Error
	}
	if res.RowsAffected == 0 {
		return out, errors.Wrap(helper.ErrNotFound, "refund tidak ditemukan")
	}
	return out, nil
}

func PendingCount(ctx context.Context, db *gorm.DB, schoolID uuid.UUID) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.RefundModel{}).
		Where("refund_school_id = ? AND refund_status = ?", schoolID, model.StatusPending).
		Count(&n).Error
	return n, err
}
