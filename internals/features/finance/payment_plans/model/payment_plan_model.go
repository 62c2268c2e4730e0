// file: internals/features/finance/payment_plans/model/payment_plan_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PlanActive    = "active"
	PlanCompleted = "completed"
	PlanDefaulted = "defaulted"
	PlanCancelled = "cancelled"

	InstallmentPending = "pending"
	InstallmentPartial = "partial"
	InstallmentPaid    = "paid"
	InstallmentOverdue = "overdue"
	InstallmentWaived  = "waived"
)

// ScheduleItem: satu baris jadwal di template (jsonb)
type ScheduleItem struct {
	Number           int     `json:"number"`
	Percentage       float64 `json:"percentage"`
	DueDaysFromStart int     `json:"due_days_from_start"`
	Label            string  `json:"label,omitempty"`
}

type PaymentPlanTemplateModel struct {
	PaymentPlanTemplateID                uuid.UUID      `gorm:"column:payment_plan_template_id;type:uuid;default:gen_random_uuid();primaryKey" json:"payment_plan_template_id"`
	PaymentPlanTemplateSchoolID          uuid.UUID      `gorm:"column:payment_plan_template_school_id;type:uuid;not null;index:idx_plan_template_year" json:"payment_plan_template_school_id"`
	PaymentPlanTemplateSchoolYearID      uuid.UUID      `gorm:"column:payment_plan_template_school_year_id;type:uuid;not null;index:idx_plan_template_year" json:"payment_plan_template_school_year_id"`
	PaymentPlanTemplateName              string         `gorm:"column:payment_plan_template_name;size:120;not null" json:"payment_plan_template_name"`
	PaymentPlanTemplateInstallmentsCount int            `gorm:"column:payment_plan_template_installments_count;not null" json:"payment_plan_template_installments_count"`
	PaymentPlanTemplateSchedule          datatypes.JSON `gorm:"column:payment_plan_template_schedule;type:jsonb;not null" json:"payment_plan_template_schedule"`
	PaymentPlanTemplateIsDefault         bool           `gorm:"column:payment_plan_template_is_default;not null;default:false" json:"payment_plan_template_is_default"`
	PaymentPlanTemplateStatus            string         `gorm:"column:payment_plan_template_status;size:20;not null;default:'active'" json:"payment_plan_template_status"`

	PaymentPlanTemplateCreatedAt time.Time `gorm:"column:payment_plan_template_created_at;autoCreateTime" json:"payment_plan_template_created_at"`
	PaymentPlanTemplateUpdatedAt time.Time `gorm:"column:payment_plan_template_updated_at;autoUpdateTime" json:"payment_plan_template_updated_at"`
}

func (PaymentPlanTemplateModel) TableName() string { return "payment_plan_templates" }

type PaymentPlanModel struct {
	PaymentPlanID           uuid.UUID  `gorm:"column:payment_plan_id;type:uuid;default:gen_random_uuid();primaryKey" json:"payment_plan_id"`
	PaymentPlanSchoolID     uuid.UUID  `gorm:"column:payment_plan_school_id;type:uuid;not null;index" json:"payment_plan_school_id"`
	PaymentPlanStudentID    uuid.UUID  `gorm:"column:payment_plan_student_id;type:uuid;not null;uniqueIndex:uq_payment_plan_student_year" json:"payment_plan_student_id"`
	PaymentPlanSchoolYearID uuid.UUID  `gorm:"column:payment_plan_school_year_id;type:uuid;not null;uniqueIndex:uq_payment_plan_student_year;index" json:"payment_plan_school_year_id"`
	PaymentPlanTemplateID   *uuid.UUID `gorm:"column:payment_plan_template_id;type:uuid" json:"payment_plan_template_id,omitempty"`
	PaymentPlanTotalAmount  float64    `gorm:"column:payment_plan_total_amount;type:numeric(12,2);not null" json:"payment_plan_total_amount"`
	PaymentPlanPaidAmount   float64    `gorm:"column:payment_plan_paid_amount;type:numeric(12,2);not null;default:0" json:"payment_plan_paid_amount"`
	PaymentPlanBalance      float64    `gorm:"column:payment_plan_balance;type:numeric(12,2);not null" json:"payment_plan_balance"`
	PaymentPlanStatus       string     `gorm:"column:payment_plan_status;size:20;not null;default:'active';index" json:"payment_plan_status"`
	PaymentPlanNotes        *string    `gorm:"column:payment_plan_notes" json:"payment_plan_notes,omitempty"`
	PaymentPlanCreatedBy    *uuid.UUID `gorm:"column:payment_plan_created_by;type:uuid" json:"payment_plan_created_by,omitempty"`

	PaymentPlanCreatedAt time.Time `gorm:"column:payment_plan_created_at;autoCreateTime" json:"payment_plan_created_at"`
	PaymentPlanUpdatedAt time.Time `gorm:"column:payment_plan_updated_at;autoUpdateTime" json:"payment_plan_updated_at"`
}

func (PaymentPlanModel) TableName() string { return "payment_plans" }

type InstallmentModel struct {
	InstallmentID            uuid.UUID  `gorm:"column:installment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"installment_id"`
	InstallmentSchoolID      uuid.UUID  `gorm:"column:installment_school_id;type:uuid;not null;index" json:"installment_school_id"`
	InstallmentPaymentPlanID uuid.UUID  `gorm:"column:installment_payment_plan_id;type:uuid;not null;uniqueIndex:uq_installment_number" json:"installment_payment_plan_id"`
	InstallmentNumber        int        `gorm:"column:installment_number;not null;uniqueIndex:uq_installment_number" json:"installment_number"`
	InstallmentLabel         *string    `gorm:"column:installment_label;size:120" json:"installment_label,omitempty"`
	InstallmentAmount        float64    `gorm:"column:installment_amount;type:numeric(12,2);not null" json:"installment_amount"`
	InstallmentPaidAmount    float64    `gorm:"column:installment_paid_amount;type:numeric(12,2);not null;default:0" json:"installment_paid_amount"`
	InstallmentBalance       float64    `gorm:"column:installment_balance;type:numeric(12,2);not null" json:"installment_balance"`
	InstallmentDueDate       time.Time  `gorm:"column:installment_due_date;type:date;not null;index" json:"installment_due_date"`
	InstallmentStatus        string     `gorm:"column:installment_status;size:20;not null;default:'pending';index" json:"installment_status"`
	InstallmentPaidAt        *time.Time `gorm:"column:installment_paid_at" json:"installment_paid_at,omitempty"`
	InstallmentDaysOverdue   int        `gorm:"column:installment_days_overdue;not null;default:0" json:"installment_days_overdue"`

	InstallmentCreatedAt time.Time `gorm:"column:installment_created_at;autoCreateTime" json:"installment_created_at"`
	InstallmentUpdatedAt time.Time `gorm:"column:installment_updated_at;autoUpdateTime" json:"installment_updated_at"`
}

func (InstallmentModel) TableName() string { return "installments" }
