package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	feeModel "schoolhub_backend/internals/features/finance/fees/model"
	"schoolhub_backend/internals/features/finance/payments/dto"
	"schoolhub_backend/internals/features/finance/payments/model"
	auditService "schoolhub_backend/internals/features/schools/audit_logs/service"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

type onlineFee struct {
	StudentFeeID     uuid.UUID
	StudentID        uuid.UUID
	Balance          float64
	Status           string
	FeeTypeName      string
	StudentFirstName string
	StudentLastName  string
	ParentEmail      *string
	ParentPhone      *string
}

// OrderID: "SF-<8 hex fee>-<unix>"
func OrderID(feeID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("SF-%s-%d", strings.ToUpper(feeID.String()[:8]), now.Unix())
}

// CreateOnlinePayment: payment pending untuk saldo tagihan + Snap token.
// Alokasi disimpan sekarang, diterapkan saat webhook settlement.
func CreateOnlinePayment(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.OnlinePaymentRequest, actor *uuid.UUID) (dto.OnlinePaymentResponse, error) {
	var out dto.OnlinePaymentResponse
	if !MidtransEnabled() {
		return out, errors.Wrap(helper.ErrInvalidState, "pembayaran online belum diaktifkan")
	}
	var fee onlineFee
	res := db.WithContext(ctx).Table("student_fees sf").
		Select(`sf.student_fee_id, sf.student_fee_student_id AS student_id, sf.student_fee_balance AS balance,
			sf.student_fee_status AS status, ft.fee_type_name, s.student_first_name, s.student_last_name,
			(SELECT p.parent_email FROM student_parents sp JOIN parents p ON p.parent_id = sp.student_parent_parent_id
				WHERE sp.student_parent_student_id = s.student_id AND p.parent_email IS NOT NULL
				ORDER BY sp.student_parent_is_primary DESC LIMIT 1) AS parent_email,
			(SELECT p.parent_phone FROM student_parents sp JOIN parents p ON p.parent_id = sp.student_parent_parent_id
				WHERE sp.student_parent_student_id = s.student_id AND p.parent_phone IS NOT NULL
				ORDER BY sp.student_parent_is_primary DESC LIMIT 1) AS parent_phone`).
		Joins("JOIN fee_structures fs ON fs.fee_structure_id = sf.student_fee_fee_structure_id").
		Joins("JOIN fee_types ft ON ft.fee_type_id = fs.fee_structure_fee_type_id").
		Joins("JOIN students s ON s.student_id = sf.student_fee_student_id").
		Where("sf.student_fee_id = ? AND sf.student_fee_school_id = ?", req.StudentFeeID, schoolID).
		Scan(&fee)
	if res.Error != nil {
		return out, res.Error
	}
	if res.RowsAffected == 0 {
		return out, errors.Wrap(helper.ErrNotFound, "tagihan siswa tidak ditemukan")
	}
	if fee.Status != feeModel.StudentFeePending && fee.Status != feeModel.StudentFeePartial {
		return out, errors.Wrapf(helper.ErrInvalidState, "tagihan berstatus %s", fee.Status)
	}
	if fee.Balance <= 0 {
		return out, errors.Wrap(helper.ErrInvalidState, "tagihan sudah lunas")
	}

	method := req.Method
	if method == "" {
		method = model.MethodCard
	}
	now := time.Now()
	orderID := OrderID(fee.StudentFeeID, now)
	var p model.PaymentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		receipt, err := NextReceiptNumber(tx, schoolID, now)
		if err != nil {
			return err
		}
		provider := model.ProviderMidtrans
		p = model.PaymentModel{
			PaymentSchoolID:       schoolID,
			PaymentStudentID:      fee.StudentID,
			PaymentAmount:         helper.Round2(fee.Balance),
			PaymentCurrency:       feeModel.DefaultCurrency,
			PaymentMethod:         method,
			PaymentMobileProvider: &provider,
			PaymentReference:      &orderID,
			PaymentReceiptNumber:  receipt,
			PaymentDate:           dbtime.Today(),
			PaymentStatus:         model.StatusPending,
			PaymentProcessedBy:    actor,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		feeID := fee.StudentFeeID
		return tx.Create(&model.PaymentAllocationModel{
			PaymentAllocationPaymentID:    p.PaymentID,
			PaymentAllocationStudentFeeID: &feeID,
			PaymentAllocationAmount:       p.PaymentAmount,
		}).Error
	})
	if err != nil {
		return out, err
	}

	cust := CustomerInput{FirstName: fee.StudentFirstName, LastName: fee.StudentLastName}
	if fee.ParentEmail != nil {
		cust.Email = *fee.ParentEmail
	}
	if fee.ParentPhone != nil {
		cust.Phone = *fee.ParentPhone
	}
	token, redirect, err := GenerateSnapToken(p, cust, fee.FeeTypeName)
	if err != nil {
		reason := "snap token gagal: " + err.Error()
		cancelErr := db.WithContext(ctx).Model(&p).Updates(map[string]any{
			"payment_status":              model.StatusCancelled,
			"payment_cancelled_at":        time.Now(),
			"payment_cancellation_reason": reason,
		}).Error
		log.Print(snapFailureLog(reason, orderID, cancelErr))
		return out, errors.Wrap(helper.ErrInvalidState, "gagal membuat pembayaran online")
	}
	if err := db.WithContext(ctx).Model(&p).Updates(map[string]any{
		"payment_snap_token":        token,
		"payment_snap_redirect_url": redirect,
	}).Error; err != nil {
		return out, err
	}
	return dto.OnlinePaymentResponse{
		PaymentID:     p.PaymentID,
		OrderID:       orderID,
		ReceiptNumber: p.PaymentReceiptNumber,
		Amount:        p.PaymentAmount,
		SnapToken:     token,
		RedirectURL:   redirect,
	}, nil
}

/* =========================================================
   Webhook
========================================================= */

type WebhookMeta struct {
	Headers  map[string]string
	RawQuery string
}

func logGatewayEvent(tx *gorm.DB, p *model.PaymentModel, n dto.MidtransNotification, meta WebhookMeta, status, errMsg string) (model.PaymentGatewayEventModel, error) {
	headersJSON, _ := json.Marshal(meta.Headers)
	payloadJSON, _ := json.Marshal(n)
	ev := model.PaymentGatewayEventModel{
		GatewayEventProvider:    model.ProviderMidtrans,
		GatewayEventType:        strPtr(n.TransactionStatus),
		GatewayEventExternalID:  strPtr(n.OrderID),
		GatewayEventExternalRef: strPtr(n.TransactionID),
		GatewayEventHeaders:     datatypes.JSON(headersJSON),
		GatewayEventPayload:     datatypes.JSON(payloadJSON),
		GatewayEventSignature:   strPtr(n.SignatureKey),
		GatewayEventRawQuery:    strPtr(meta.RawQuery),
		GatewayEventStatus:      status,
		GatewayEventError:       strPtr(errMsg),
	}
	if p != nil {
		ev.GatewayEventPaymentID = &p.PaymentID
		ev.GatewayEventSchoolID = &p.PaymentSchoolID
	}
	err := tx.Create(&ev).Error
	return ev, err
}

func finishEvent(db *gorm.DB, ev model.PaymentGatewayEventModel, status, errMsg string) {
	now := time.Now()
	if err := db.Model(&ev).Updates(map[string]any{
		"gateway_event_status":       status,
		"gateway_event_error":        strPtr(errMsg),
		"gateway_event_processed_at": now,
	}).Error; err != nil {
		log.Printf("[MIDTRANS] gagal update gateway event %s: %v", ev.GatewayEventID, err)
	}
}

// HandleMidtransNotification: signature dicek di sini; order tak dikenal → "ignored" (200, supaya tidak di-retry).
func HandleMidtransNotification(ctx context.Context, db *gorm.DB, n dto.MidtransNotification, meta WebhookMeta) (dto.WebhookResult, error) {
	if !VerifySignature(n, serverKey) {
		return dto.WebhookResult{}, errors.Wrap(helper.ErrForbidden, "signature tidak valid")
	}
	tx := db.WithContext(ctx)

	var p model.PaymentModel
	err := tx.Where("payment_reference = ? AND payment_mobile_provider = ?", n.OrderID, model.ProviderMidtrans).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, lerr := logGatewayEvent(tx, nil, n, meta, model.EventIgnored, "payment not found"); lerr != nil {
			log.Printf("[MIDTRANS] gagal simpan gateway event: %v", lerr)
		}
		return dto.WebhookResult{Status: "ignored", Reason: "payment not found"}, nil
	}
	if err != nil {
		return dto.WebhookResult{}, err
	}

	ev, err := logGatewayEvent(tx, &p, n, meta, model.EventReceived, "")
	if err != nil {
		return dto.WebhookResult{}, err
	}

	target := MapTransactionStatus(n.TransactionStatus, n.FraudStatus)
	err = tx.Transaction(func(tx *gorm.DB) error {
		locked, err := lockPayment(tx, p.PaymentSchoolID, p.PaymentID)
		if err != nil {
			return err
		}
		p = locked
		// hanya pending yang bisa berubah; notifikasi ulang diabaikan
		if target == "" || p.PaymentStatus != model.StatusPending {
			return nil
		}
		u := map[string]any{"payment_status": target}
		if n.TransactionID != "" {
			u["payment_gateway_reference"] = n.TransactionID
		}
		switch target {
		case model.StatusCompleted:
			var allocs []model.PaymentAllocationModel
			if err := tx.Where("payment_allocation_payment_id = ?", p.PaymentID).Find(&allocs).Error; err != nil {
				return err
			}
			if err := applyAllocations(tx, p, allocs); err != nil {
				return err
			}
		case model.StatusCancelled:
			u["payment_cancelled_at"] = time.Now()
			u["payment_cancellation_reason"] = "midtrans: " + n.TransactionStatus
		}
		if err := tx.Model(&p).Updates(u).Error; err != nil {
			return err
		}
		p.PaymentStatus = target
		return auditService.Record(tx, p.PaymentSchoolID, nil, "payment.gateway."+target, "payment", &p.PaymentID, map[string]any{
			"order_id": n.OrderID, "transaction_status": n.TransactionStatus, "transaction_id": n.TransactionID,
		})
	})
	if err != nil {
		finishEvent(tx, ev, model.EventFailed, err.Error())
		return dto.WebhookResult{}, err
	}
	finishEvent(tx, ev, model.EventProcessed, "")
	return dto.WebhookResult{Status: "ok", PaymentID: &p.PaymentID, PaymentStatus: p.PaymentStatus}, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// snapFailureLog: payment yang gagal dibatalkan tetap pending, jadi error-nya ikut dicatat.
func snapFailureLog(reason, orderID string, cancelErr error) string {
	msg := fmt.Sprintf("[MIDTRANS] ❌ %s (order=%s)", reason, orderID)
	if cancelErr != nil {
		msg += fmt.Sprintf("; payment tetap pending, gagal dibatalkan: %v", cancelErr)
	}
	return msg
}
