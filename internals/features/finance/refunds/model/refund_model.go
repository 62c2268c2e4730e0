// file: internals/features/finance/refunds/model/refund_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusProcessed = "processed"
	StatusCancelled = "cancelled"
)

type RefundModel struct {
	RefundID             uuid.UUID `gorm:"column:refund_id;type:uuid;default:gen_random_uuid();primaryKey" json:"refund_id"`
	RefundSchoolID       uuid.UUID `gorm:"column:refund_school_id;type:uuid;not null;uniqueIndex:uq_refund_number;index" json:"refund_school_id"`
	RefundPaymentID      uuid.UUID `gorm:"column:refund_payment_id;type:uuid;not null;index" json:"refund_payment_id"`
	RefundNumber         string    `gorm:"column:refund_number;size:30;not null;uniqueIndex:uq_refund_number" json:"refund_number"`
	RefundAmount         float64   `gorm:"column:refund_amount;type:numeric(12,2);not null" json:"refund_amount"`
	RefundReason         string    `gorm:"column:refund_reason;not null" json:"refund_reason"`
	RefundReasonCategory string    `gorm:"column:refund_reason_category;size:30;not null;default:'other'" json:"refund_reason_category"`
	RefundStatus         string    `gorm:"column:refund_status;size:20;not null;default:'pending';index" json:"refund_status"`

	RefundMethod    *string `gorm:"column:refund_method;size:20" json:"refund_method,omitempty"`
	RefundReference *string `gorm:"column:refund_reference;size:100" json:"refund_reference,omitempty"`

	RefundRequestedBy     *uuid.UUID `gorm:"column:refund_requested_by;type:uuid" json:"refund_requested_by,omitempty"`
	RefundApprovedBy      *uuid.UUID `gorm:"column:refund_approved_by;type:uuid" json:"refund_approved_by,omitempty"`
	RefundApprovedAt      *time.Time `gorm:"column:refund_approved_at" json:"refund_approved_at,omitempty"`
	RefundRejectedBy      *uuid.UUID `gorm:"column:refund_rejected_by;type:uuid" json:"refund_rejected_by,omitempty"`
	RefundRejectedAt      *time.Time `gorm:"column:refund_rejected_at" json:"refund_rejected_at,omitempty"`
	RefundRejectionReason *string    `gorm:"column:refund_rejection_reason" json:"refund_rejection_reason,omitempty"`
	RefundProcessedBy     *uuid.UUID `gorm:"column:refund_processed_by;type:uuid" json:"refund_processed_by,omitempty"`
	RefundProcessedAt     *time.Time `gorm:"column:refund_processed_at" json:"refund_processed_at,omitempty"`

	RefundCreatedAt time.Time `gorm:"column:refund_created_at;autoCreateTime" json:"refund_created_at"`
	RefundUpdatedAt time.Time `gorm:"column:refund_updated_at;autoUpdateTime" json:"refund_updated_at"`
}

func (RefundModel) TableName() string { return "refunds" }
