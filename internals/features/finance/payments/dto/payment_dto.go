package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/finance/payments/model"
)

type AllocationRequest struct {
	StudentFeeID  *uuid.UUID `json:"student_fee_id" validate:"required_without=InstallmentID"`
	InstallmentID *uuid.UUID `json:"installment_id"`
	Amount        float64    `json:"amount" validate:"gt=0"`
}

type CreatePaymentRequest struct {
	StudentID      uuid.UUID           `json:"student_id" validate:"required"`
	PaymentPlanID  *uuid.UUID          `json:"payment_plan_id"`
	Amount         float64             `json:"amount" validate:"gt=0"`
	Method         string              `json:"method" validate:"required,oneof=cash bank_transfer mobile_money card check other"`
	MobileProvider *string             `json:"mobile_provider" validate:"required_if=Method mobile_money,omitempty,max=30"`
	Reference      *string             `json:"reference" validate:"omitempty,max=100"`
	PaymentDate    string              `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Notes          *string             `json:"notes" validate:"omitempty,max=1000"`
	Allocations    []AllocationRequest `json:"allocations" validate:"required,min=1,max=50,dive"`
}

type CancelPaymentRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

type OnlinePaymentRequest struct {
	StudentFeeID uuid.UUID `json:"student_fee_id" validate:"required"`
	Method       string    `json:"method" validate:"omitempty,oneof=card mobile_money bank_transfer"`
}

type OnlinePaymentResponse struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	OrderID       string    `json:"order_id"`
	ReceiptNumber string    `json:"receipt_number"`
	Amount        float64   `json:"amount"`
	SnapToken     string    `json:"snap_token"`
	RedirectURL   string    `json:"redirect_url"`
}

type AllocationItem struct {
	model.PaymentAllocationModel
	FeeTypeName       *string `json:"fee_type_name,omitempty"`
	InstallmentNumber *int    `json:"installment_number,omitempty"`
}

type PaymentItem struct {
	model.PaymentModel
	StudentName      string  `json:"student_name"`
	StudentMatricule string  `json:"student_matricule"`
	ProcessedByName  *string `json:"processed_by_name,omitempty"`
}

type PaymentDetail struct {
	PaymentItem
	Allocations []AllocationItem `json:"allocations" gorm:"-"`
}

type ReceiptLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// ReceiptData: data untuk cetak kuitansi (reçu)
type ReceiptData struct {
	SchoolName       string        `json:"school_name"`
	ReceiptNumber    string        `json:"receipt_number"`
	PaymentDate      string        `json:"payment_date"`
	StudentName      string        `json:"student_name"`
	StudentMatricule string        `json:"student_matricule"`
	Method           string        `json:"method"`
	MobileProvider   *string       `json:"mobile_provider,omitempty"`
	Reference        *string       `json:"reference,omitempty"`
	Amount           float64       `json:"amount"`
	Currency         string        `json:"currency"`
	Status           string        `json:"status"`
	Cashier          *string       `json:"cashier,omitempty"`
	Lines            []ReceiptLine `json:"lines"`
	IssuedAt         time.Time     `json:"issued_at"`
}

type MethodTotal struct {
	Method string  `json:"method"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

type CashierSummary struct {
	CashierID     uuid.UUID     `json:"cashier_id"`
	Date          string        `json:"date"`
	TotalPayments int64         `json:"total_payments"`
	TotalAmount   float64       `json:"total_amount"`
	ByMethod      []MethodTotal `json:"by_method"`
}

// MidtransNotification: payload webhook Midtrans (field lain diabaikan)
type MidtransNotification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
	SettlementTime    string `json:"settlement_time"`
}

type WebhookResult struct {
	Status        string     `json:"status"`
	Reason        string     `json:"reason,omitempty"`
	PaymentID     *uuid.UUID `json:"payment_id,omitempty"`
	PaymentStatus string     `json:"payment_status,omitempty"`
}
