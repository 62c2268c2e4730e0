package dto

import (
	"github.com/google/uuid"

	"schoolhub_backend/internals/features/finance/refunds/model"
)

type CreateRefundRequest struct {
	PaymentID      uuid.UUID `json:"payment_id" validate:"required"`
	Amount         float64   `json:"amount" validate:"gt=0"`
	Reason         string    `json:"reason" validate:"required,min=3,max=1000"`
	ReasonCategory string    `json:"reason_category" validate:"omitempty,oneof=overpayment withdrawal transfer error other"`
	Method         *string   `json:"refund_method" validate:"omitempty,oneof=cash bank_transfer mobile_money card check other"`
}

type RejectRefundRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

type ProcessRefundRequest struct {
	Method    string  `json:"refund_method" validate:"required,oneof=cash bank_transfer mobile_money card check other"`
	Reference *string `json:"refund_reference" validate:"omitempty,max=100"`
}

type RefundItem struct {
	model.RefundModel
	ReceiptNumber string    `json:"receipt_number"`
	PaymentAmount float64   `json:"payment_amount"`
	StudentID     uuid.UUID `json:"student_id"`
	StudentName   string    `json:"student_name"`
}
