// file: internals/features/finance/payments/model/payment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MethodCash         = "cash"
	MethodBankTransfer = "bank_transfer"
	MethodMobileMoney  = "mobile_money"
	MethodCard         = "card"
	MethodCheck        = "check"
	MethodOther        = "other"

	StatusPending       = "pending"
	StatusCompleted     = "completed"
	StatusCancelled     = "cancelled"
	StatusRefunded      = "refunded"
	StatusPartialRefund = "partial_refund"

	ProviderMidtrans = "midtrans"

	EventReceived  = "received"
	EventProcessed = "processed"
	EventIgnored   = "ignored"
	EventFailed    = "failed"
)

var Methods = []string{MethodCash, MethodBankTransfer, MethodMobileMoney, MethodCard, MethodCheck, MethodOther}

type PaymentModel struct {
	PaymentID            uuid.UUID  `gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"payment_id"`
	PaymentSchoolID      uuid.UUID  `gorm:"column:payment_school_id;type:uuid;not null;uniqueIndex:uq_payment_receipt;index:idx_payment_cashier_day" json:"payment_school_id"`
	PaymentStudentID     uuid.UUID  `gorm:"column:payment_student_id;type:uuid;not null;index" json:"payment_student_id"`
	PaymentPaymentPlanID *uuid.UUID `gorm:"column:payment_payment_plan_id;type:uuid;index" json:"payment_payment_plan_id,omitempty"`

	PaymentAmount         float64   `gorm:"column:payment_amount;type:numeric(12,2);not null" json:"payment_amount"`
	PaymentCurrency       string    `gorm:"column:payment_currency;size:3;not null;default:'XOF'" json:"payment_currency"`
	PaymentMethod         string    `gorm:"column:payment_method;size:20;not null" json:"payment_method"`
	PaymentMobileProvider *string   `gorm:"column:payment_mobile_provider;size:30" json:"payment_mobile_provider,omitempty"`
	PaymentReference      *string   `gorm:"column:payment_reference;size:100;index" json:"payment_reference,omitempty"`
	PaymentReceiptNumber  string    `gorm:"column:payment_receipt_number;size:30;not null;uniqueIndex:uq_payment_receipt" json:"payment_receipt_number"`
	PaymentDate           time.Time `gorm:"column:payment_date;type:date;not null;index:idx_payment_cashier_day" json:"payment_date"`
	PaymentStatus         string    `gorm:"column:payment_status;size:20;not null;default:'completed';index" json:"payment_status"`
	PaymentNotes          *string   `gorm:"column:payment_notes" json:"payment_notes,omitempty"`

	PaymentProcessedBy *uuid.UUID `gorm:"column:payment_processed_by;type:uuid;index:idx_payment_cashier_day" json:"payment_processed_by,omitempty"`

	// online (Midtrans Snap)
	PaymentGatewayReference *string `gorm:"column:payment_gateway_reference;size:100" json:"payment_gateway_reference,omitempty"`
	PaymentSnapToken        *string `gorm:"column:payment_snap_token;size:100" json:"payment_snap_token,omitempty"`
	PaymentSnapRedirectURL  *string `gorm:"column:payment_snap_redirect_url" json:"payment_snap_redirect_url,omitempty"`

	PaymentCancelledAt        *time.Time `gorm:"column:payment_cancelled_at" json:"payment_cancelled_at,omitempty"`
	PaymentCancelledBy        *uuid.UUID `gorm:"column:payment_cancelled_by;type:uuid" json:"payment_cancelled_by,omitempty"`
	PaymentCancellationReason *string    `gorm:"column:payment_cancellation_reason" json:"payment_cancellation_reason,omitempty"`

	PaymentCreatedAt time.Time `gorm:"column:payment_created_at;autoCreateTime" json:"payment_created_at"`
	PaymentUpdatedAt time.Time `gorm:"column:payment_updated_at;autoUpdateTime" json:"payment_updated_at"`
}

func (PaymentModel) TableName() string { return "payments" }

// PaymentAllocationModel: porsi pembayaran ke satu tagihan siswa dan/atau cicilan.
type PaymentAllocationModel struct {
	PaymentAllocationID            uuid.UUID  `gorm:"column:payment_allocation_id;type:uuid;default:gen_random_uuid();primaryKey" json:"payment_allocation_id"`
	PaymentAllocationPaymentID     uuid.UUID  `gorm:"column:payment_allocation_payment_id;type:uuid;not null;index" json:"payment_allocation_payment_id"`
	PaymentAllocationStudentFeeID  *uuid.UUID `gorm:"column:payment_allocation_student_fee_id;type:uuid;index" json:"payment_allocation_student_fee_id,omitempty"`
	PaymentAllocationInstallmentID *uuid.UUID `gorm:"column:payment_allocation_installment_id;type:uuid;index" json:"payment_allocation_installment_id,omitempty"`
	PaymentAllocationAmount        float64    `gorm:"column:payment_allocation_amount;type:numeric(12,2);not null" json:"payment_allocation_amount"`

	PaymentAllocationCreatedAt time.Time `gorm:"column:payment_allocation_created_at;autoCreateTime" json:"payment_allocation_created_at"`
}

func (PaymentAllocationModel) TableName() string { return "payment_allocations" }

/*
  payment_gateway_events = log callback payment gateway
  - bisa banyak row per payment (tiap notifikasi)
  - simpan raw headers & payload untuk debug/replay
*/
type PaymentGatewayEventModel struct {
	GatewayEventID        uuid.UUID  `gorm:"column:gateway_event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"gateway_event_id"`
	GatewayEventSchoolID  *uuid.UUID `gorm:"column:gateway_event_school_id;type:uuid;index" json:"gateway_event_school_id,omitempty"`
	GatewayEventPaymentID *uuid.UUID `gorm:"column:gateway_event_payment_id;type:uuid;index" json:"gateway_event_payment_id,omitempty"`

	GatewayEventProvider    string  `gorm:"column:gateway_event_provider;size:20;not null" json:"gateway_event_provider"`
	GatewayEventType        *string `gorm:"column:gateway_event_type;size:40" json:"gateway_event_type,omitempty"`
	GatewayEventExternalID  *string `gorm:"column:gateway_event_external_id;size:100;index" json:"gateway_event_external_id,omitempty"`
	GatewayEventExternalRef *string `gorm:"column:gateway_event_external_ref;size:100" json:"gateway_event_external_ref,omitempty"`

	GatewayEventHeaders   datatypes.JSON `gorm:"column:gateway_event_headers;type:jsonb" json:"gateway_event_headers"`
	GatewayEventPayload   datatypes.JSON `gorm:"column:gateway_event_payload;type:jsonb" json:"gateway_event_payload"`
	GatewayEventSignature *string        `gorm:"column:gateway_event_signature" json:"-"`
	GatewayEventRawQuery  *string        `gorm:"column:gateway_event_raw_query" json:"gateway_event_raw_query,omitempty"`

	GatewayEventStatus      string     `gorm:"column:gateway_event_status;size:20;not null;default:'received'" json:"gateway_event_status"`
	GatewayEventError       *string    `gorm:"column:gateway_event_error" json:"gateway_event_error,omitempty"`
	GatewayEventReceivedAt  time.Time  `gorm:"column:gateway_event_received_at;autoCreateTime" json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at" json:"gateway_event_processed_at,omitempty"`
}

func (PaymentGatewayEventModel) TableName() string { return "payment_gateway_events" }
