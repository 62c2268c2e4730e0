// file: internals/features/finance/fees/model/fee_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	CalcPercentage = "percentage"
	CalcFixed      = "fixed"

	StudentFeePending   = "pending"
	StudentFeePartial   = "partial"
	StudentFeePaid      = "paid"
	StudentFeeWaived    = "waived"
	StudentFeeCancelled = "cancelled"

	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"

	DefaultCurrency = "XOF"
)

// FeeTypeTemplateModel: katalog global, disalin ke sekolah lewat kode
type FeeTypeTemplateModel struct {
	FeeTypeTemplateID                 uuid.UUID `gorm:"column:fee_type_template_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_type_template_id"`
	FeeTypeTemplateCode               string    `gorm:"column:fee_type_template_code;size:40;not null;uniqueIndex" json:"fee_type_template_code"`
	FeeTypeTemplateName               string    `gorm:"column:fee_type_template_name;size:120;not null" json:"fee_type_template_name"`
	FeeTypeTemplateCategory           string    `gorm:"column:fee_type_template_category;size:30;not null" json:"fee_type_template_category"`
	FeeTypeTemplateIsMandatory        bool      `gorm:"column:fee_type_template_is_mandatory;not null;default:true" json:"fee_type_template_is_mandatory"`
	FeeTypeTemplateIsRecurring        bool      `gorm:"column:fee_type_template_is_recurring;not null;default:false" json:"fee_type_template_is_recurring"`
	FeeTypeTemplateRevenueAccountCode *string   `gorm:"column:fee_type_template_revenue_account_code;size:20" json:"fee_type_template_revenue_account_code,omitempty"`
	FeeTypeTemplateDisplayOrder       int       `gorm:"column:fee_type_template_display_order;not null;default:0" json:"fee_type_template_display_order"`
	FeeTypeTemplateIsActive           bool      `gorm:"column:fee_type_template_is_active;not null;default:true" json:"fee_type_template_is_active"`

	FeeTypeTemplateCreatedAt time.Time `gorm:"column:fee_type_template_created_at;autoCreateTime" json:"fee_type_template_created_at"`
	FeeTypeTemplateUpdatedAt time.Time `gorm:"column:fee_type_template_updated_at;autoUpdateTime" json:"fee_type_template_updated_at"`
}

func (FeeTypeTemplateModel) TableName() string { return "fee_type_templates" }

type FeeTypeModel struct {
	FeeTypeID                 uuid.UUID  `gorm:"column:fee_type_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_type_id"`
	FeeTypeSchoolID           uuid.UUID  `gorm:"column:fee_type_school_id;type:uuid;not null;uniqueIndex:uq_fee_type_code,where:fee_type_deleted_at IS NULL" json:"fee_type_school_id"`
	FeeTypeTemplateID         *uuid.UUID `gorm:"column:fee_type_template_id;type:uuid" json:"fee_type_template_id,omitempty"`
	FeeTypeCode               string     `gorm:"column:fee_type_code;size:40;not null;uniqueIndex:uq_fee_type_code,where:fee_type_deleted_at IS NULL" json:"fee_type_code"`
	FeeTypeName               string     `gorm:"column:fee_type_name;size:120;not null" json:"fee_type_name"`
	FeeTypeDescription        *string    `gorm:"column:fee_type_description" json:"fee_type_description,omitempty"`
	FeeTypeCategory           string     `gorm:"column:fee_type_category;size:30;not null;index" json:"fee_type_category"`
	FeeTypeIsMandatory        bool       `gorm:"column:fee_type_is_mandatory;not null;default:true" json:"fee_type_is_mandatory"`
	FeeTypeIsRecurring        bool       `gorm:"column:fee_type_is_recurring;not null;default:false" json:"fee_type_is_recurring"`
	FeeTypeRevenueAccountCode *string    `gorm:"column:fee_type_revenue_account_code;size:20" json:"fee_type_revenue_account_code,omitempty"`
	FeeTypeDisplayOrder       int        `gorm:"column:fee_type_display_order;not null;default:0" json:"fee_type_display_order"`
	FeeTypeStatus             string     `gorm:"column:fee_type_status;size:20;not null;default:'active'" json:"fee_type_status"`

	FeeTypeCreatedAt time.Time      `gorm:"column:fee_type_created_at;autoCreateTime" json:"fee_type_created_at"`
	FeeTypeUpdatedAt time.Time      `gorm:"column:fee_type_updated_at;autoUpdateTime" json:"fee_type_updated_at"`
	FeeTypeDeletedAt gorm.DeletedAt `gorm:"column:fee_type_deleted_at;index" json:"-"`
}

func (FeeTypeModel) TableName() string { return "fee_types" }

// FeeStructureModel: tarif per jenis biaya × tahun ajaran × tingkat × seri.
// Grade/seri boleh NULL, jadi keunikan dicek di service.
type FeeStructureModel struct {
	FeeStructureID               uuid.UUID  `gorm:"column:fee_structure_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_structure_id"`
	FeeStructureSchoolID         uuid.UUID  `gorm:"column:fee_structure_school_id;type:uuid;not null;index:idx_fee_structure_year" json:"fee_structure_school_id"`
	FeeStructureFeeTypeID        uuid.UUID  `gorm:"column:fee_structure_fee_type_id;type:uuid;not null;index" json:"fee_structure_fee_type_id"`
	FeeStructureSchoolYearID     uuid.UUID  `gorm:"column:fee_structure_school_year_id;type:uuid;not null;index:idx_fee_structure_year" json:"fee_structure_school_year_id"`
	FeeStructureGradeID          *uuid.UUID `gorm:"column:fee_structure_grade_id;type:uuid;index" json:"fee_structure_grade_id,omitempty"`
	FeeStructureSeriesID         *uuid.UUID `gorm:"column:fee_structure_series_id;type:uuid" json:"fee_structure_series_id,omitempty"`
	FeeStructureAmount           float64    `gorm:"column:fee_structure_amount;type:numeric(12,2);not null" json:"fee_structure_amount"`
	FeeStructureNewStudentAmount *float64   `gorm:"column:fee_structure_new_student_amount;type:numeric(12,2)" json:"fee_structure_new_student_amount,omitempty"`
	FeeStructureCurrency         string     `gorm:"column:fee_structure_currency;size:3;not null;default:'XOF'" json:"fee_structure_currency"`
	FeeStructureEffectiveFrom    *time.Time `gorm:"column:fee_structure_effective_from;type:date" json:"fee_structure_effective_from,omitempty"`
	FeeStructureEffectiveTo      *time.Time `gorm:"column:fee_structure_effective_to;type:date" json:"fee_structure_effective_to,omitempty"`

	FeeStructureCreatedAt time.Time `gorm:"column:fee_structure_created_at;autoCreateTime" json:"fee_structure_created_at"`
	FeeStructureUpdatedAt time.Time `gorm:"column:fee_structure_updated_at;autoUpdateTime" json:"fee_structure_updated_at"`
}

func (FeeStructureModel) TableName() string { return "fee_structures" }

type DiscountModel struct {
	DiscountID              uuid.UUID      `gorm:"column:discount_id;type:uuid;default:gen_random_uuid();primaryKey" json:"discount_id"`
	DiscountSchoolID        uuid.UUID      `gorm:"column:discount_school_id;type:uuid;not null;uniqueIndex:uq_discount_code" json:"discount_school_id"`
	DiscountCode            string         `gorm:"column:discount_code;size:40;not null;uniqueIndex:uq_discount_code" json:"discount_code"`
	DiscountName            string         `gorm:"column:discount_name;size:120;not null" json:"discount_name"`
	DiscountDescription     *string        `gorm:"column:discount_description" json:"discount_description,omitempty"`
	DiscountType            string         `gorm:"column:discount_type;size:30;not null" json:"discount_type"`
	DiscountCalculationType string         `gorm:"column:discount_calculation_type;size:20;not null" json:"discount_calculation_type"`
	DiscountValue           float64        `gorm:"column:discount_value;type:numeric(12,2);not null" json:"discount_value"`
	DiscountAppliesTo       pq.StringArray `gorm:"column:discount_applies_to_fee_types;type:text[]" json:"discount_applies_to_fee_types"`
	DiscountMaxAmount       *float64       `gorm:"column:discount_max_discount_amount;type:numeric(12,2)" json:"discount_max_discount_amount,omitempty"`
	DiscountNeedsApproval   bool           `gorm:"column:discount_requires_approval;not null;default:false" json:"discount_requires_approval"`
	DiscountAutoApply       bool           `gorm:"column:discount_auto_apply;not null;default:false" json:"discount_auto_apply"`
	DiscountValidFrom       *time.Time     `gorm:"column:discount_valid_from;type:date" json:"discount_valid_from,omitempty"`
	DiscountValidUntil      *time.Time     `gorm:"column:discount_valid_until;type:date" json:"discount_valid_until,omitempty"`
	DiscountStatus          string         `gorm:"column:discount_status;size:20;not null;default:'active'" json:"discount_status"`

	DiscountCreatedAt time.Time `gorm:"column:discount_created_at;autoCreateTime" json:"discount_created_at"`
	DiscountUpdatedAt time.Time `gorm:"column:discount_updated_at;autoUpdateTime" json:"discount_updated_at"`
}

func (DiscountModel) TableName() string { return "discounts" }

type StudentFeeModel struct {
	StudentFeeID             uuid.UUID  `gorm:"column:student_fee_id;type:uuid;default:gen_random_uuid();primaryKey" json:"student_fee_id"`
	StudentFeeSchoolID       uuid.UUID  `gorm:"column:student_fee_school_id;type:uuid;not null;index" json:"student_fee_school_id"`
	StudentFeeStudentID      uuid.UUID  `gorm:"column:student_fee_student_id;type:uuid;not null;uniqueIndex:uq_student_fee_structure" json:"student_fee_student_id"`
	StudentFeeEnrollmentID   *uuid.UUID `gorm:"column:student_fee_enrollment_id;type:uuid;index" json:"student_fee_enrollment_id,omitempty"`
	StudentFeeFeeStructureID uuid.UUID  `gorm:"column:student_fee_fee_structure_id;type:uuid;not null;uniqueIndex:uq_student_fee_structure" json:"student_fee_fee_structure_id"`
	StudentFeeSchoolYearID   uuid.UUID  `gorm:"column:student_fee_school_year_id;type:uuid;not null;index" json:"student_fee_school_year_id"`

	StudentFeeOriginalAmount float64 `gorm:"column:student_fee_original_amount;type:numeric(12,2);not null" json:"student_fee_original_amount"`
	StudentFeeDiscountAmount float64 `gorm:"column:student_fee_discount_amount;type:numeric(12,2);not null;default:0" json:"student_fee_discount_amount"`
	StudentFeeFinalAmount    float64 `gorm:"column:student_fee_final_amount;type:numeric(12,2);not null" json:"student_fee_final_amount"`
	StudentFeePaidAmount     float64 `gorm:"column:student_fee_paid_amount;type:numeric(12,2);not null;default:0" json:"student_fee_paid_amount"`
	StudentFeeBalance        float64 `gorm:"column:student_fee_balance;type:numeric(12,2);not null" json:"student_fee_balance"`
	StudentFeeStatus         string  `gorm:"column:student_fee_status;size:20;not null;default:'pending';index" json:"student_fee_status"`

	StudentFeeWaivedAt     *time.Time `gorm:"column:student_fee_waived_at" json:"student_fee_waived_at,omitempty"`
	StudentFeeWaivedBy     *uuid.UUID `gorm:"column:student_fee_waived_by;type:uuid" json:"student_fee_waived_by,omitempty"`
	StudentFeeWaiverReason *string    `gorm:"column:student_fee_waiver_reason" json:"student_fee_waiver_reason,omitempty"`

	StudentFeeCreatedAt time.Time `gorm:"column:student_fee_created_at;autoCreateTime" json:"student_fee_created_at"`
	StudentFeeUpdatedAt time.Time `gorm:"column:student_fee_updated_at;autoUpdateTime" json:"student_fee_updated_at"`
}

func (StudentFeeModel) TableName() string { return "student_fees" }

type StudentDiscountModel struct {
	StudentDiscountID               uuid.UUID  `gorm:"column:student_discount_id;type:uuid;default:gen_random_uuid();primaryKey" json:"student_discount_id"`
	StudentDiscountSchoolID         uuid.UUID  `gorm:"column:student_discount_school_id;type:uuid;not null;index" json:"student_discount_school_id"`
	StudentDiscountStudentID        uuid.UUID  `gorm:"column:student_discount_student_id;type:uuid;not null;uniqueIndex:uq_student_discount" json:"student_discount_student_id"`
	StudentDiscountDiscountID       uuid.UUID  `gorm:"column:student_discount_discount_id;type:uuid;not null;uniqueIndex:uq_student_discount" json:"student_discount_discount_id"`
	StudentDiscountSchoolYearID     uuid.UUID  `gorm:"column:student_discount_school_year_id;type:uuid;not null;uniqueIndex:uq_student_discount" json:"student_discount_school_year_id"`
	StudentDiscountCalculatedAmount float64    `gorm:"column:student_discount_calculated_amount;type:numeric(12,2);not null;default:0" json:"student_discount_calculated_amount"`
	StudentDiscountStatus           string     `gorm:"column:student_discount_status;size:20;not null;default:'pending'" json:"student_discount_status"`
	StudentDiscountReason           *string    `gorm:"column:student_discount_reason" json:"student_discount_reason,omitempty"`
	StudentDiscountApprovedBy       *uuid.UUID `gorm:"column:student_discount_approved_by;type:uuid" json:"student_discount_approved_by,omitempty"`
	StudentDiscountApprovedAt       *time.Time `gorm:"column:student_discount_approved_at" json:"student_discount_approved_at,omitempty"`

	StudentDiscountCreatedAt time.Time `gorm:"column:student_discount_created_at;autoCreateTime" json:"student_discount_created_at"`
}

func (StudentDiscountModel) TableName() string { return "student_discounts" }
