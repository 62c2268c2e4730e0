// file: internals/features/finance/fees/dto/fee_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"schoolhub_backend/internals/features/finance/fees/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

/* =========================
   Fee types
========================= */

type FeeTypeRequest struct {
	Code               string  `json:"code" validate:"required,min=2,max=40"`
	Name               string  `json:"name" validate:"required,min=2,max=120"`
	Description        *string `json:"description" validate:"omitempty,max=1000"`
	Category           string  `json:"category" validate:"required,oneof=tuition registration exam transport uniform books meals activities other"`
	IsMandatory        *bool   `json:"is_mandatory"`
	IsRecurring        bool    `json:"is_recurring"`
	RevenueAccountCode *string `json:"revenue_account_code" validate:"omitempty,max=20"`
	DisplayOrder       int     `json:"display_order" validate:"min=0"`
}

func (r FeeTypeRequest) ToModel(schoolID uuid.UUID) model.FeeTypeModel {
	mandatory := true
	if r.IsMandatory != nil {
		mandatory = *r.IsMandatory
	}
	return model.FeeTypeModel{
		FeeTypeSchoolID:           schoolID,
		FeeTypeCode:               strings.ToUpper(strings.TrimSpace(r.Code)),
		FeeTypeName:               strings.TrimSpace(r.Name),
		FeeTypeDescription:        r.Description,
		FeeTypeCategory:           r.Category,
		FeeTypeIsMandatory:        mandatory,
		FeeTypeIsRecurring:        r.IsRecurring,
		FeeTypeRevenueAccountCode: r.RevenueAccountCode,
		FeeTypeDisplayOrder:       r.DisplayOrder,
		FeeTypeStatus:             model.StatusActive,
	}
}

type FeeTypeUpdateRequest struct {
	Name               *string `json:"name" validate:"omitempty,min=2,max=120"`
	Description        *string `json:"description" validate:"omitempty,max=1000"`
	Category           *string `json:"category" validate:"omitempty,oneof=tuition registration exam transport uniform books meals activities other"`
	IsMandatory        *bool   `json:"is_mandatory"`
	IsRecurring        *bool   `json:"is_recurring"`
	RevenueAccountCode *string `json:"revenue_account_code" validate:"omitempty,max=20"`
	DisplayOrder       *int    `json:"display_order" validate:"omitempty,min=0"`
	Status             *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r FeeTypeUpdateRequest) Updates() map[string]any {
	u := map[string]any{}
	if r.Name != nil {
		u["fee_type_name"] = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		u["fee_type_description"] = *r.Description
	}
	if r.Category != nil {
		u["fee_type_category"] = *r.Category
	}
	if r.IsMandatory != nil {
		u["fee_type_is_mandatory"] = *r.IsMandatory
	}
	if r.IsRecurring != nil {
		u["fee_type_is_recurring"] = *r.IsRecurring
	}
	if r.RevenueAccountCode != nil {
		u["fee_type_revenue_account_code"] = *r.RevenueAccountCode
	}
	if r.DisplayOrder != nil {
		u["fee_type_display_order"] = *r.DisplayOrder
	}
	if r.Status != nil {
		u["fee_type_status"] = *r.Status
	}
	return u
}

type CopyTemplatesRequest struct {
	Codes []string `json:"codes" validate:"required,min=1,max=50,dive,min=2,max=40"`
}

/* =========================
   Fee structures
========================= */

type FeeStructureRequest struct {
	FeeTypeID        uuid.UUID  `json:"fee_type_id" validate:"required"`
	SchoolYearID     uuid.UUID  `json:"school_year_id" validate:"required"`
	GradeID          *uuid.UUID `json:"grade_id"`
	SeriesID         *uuid.UUID `json:"series_id"`
	Amount           float64    `json:"amount" validate:"gt=0"`
	NewStudentAmount *float64   `json:"new_student_amount" validate:"omitempty,gte=0"`
	Currency         string     `json:"currency" validate:"omitempty,len=3"`
	EffectiveFrom    *string    `json:"effective_from" validate:"omitempty,datetime=2006-01-02"`
	EffectiveTo      *string    `json:"effective_to" validate:"omitempty,datetime=2006-01-02"`
}

func optDate(s *string) (*time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, true
	}
	d, err := dbtime.ParseDate(*s)
	if err != nil {
		return nil, false
	}
	return &d, true
}

// ToModel: false kalau rentang tanggal terbalik
func (r FeeStructureRequest) ToModel(schoolID uuid.UUID) (model.FeeStructureModel, bool) {
	from, ok1 := optDate(r.EffectiveFrom)
	to, ok2 := optDate(r.EffectiveTo)
	if !ok1 || !ok2 || (from != nil && to != nil && to.Before(*from)) {
		return model.FeeStructureModel{}, false
	}
	cur := strings.ToUpper(strings.TrimSpace(r.Currency))
	if cur == "" {
		cur = model.DefaultCurrency
	}
	m := model.FeeStructureModel{
		FeeStructureSchoolID:      schoolID,
		FeeStructureFeeTypeID:     r.FeeTypeID,
		FeeStructureSchoolYearID:  r.SchoolYearID,
		FeeStructureGradeID:       r.GradeID,
		FeeStructureSeriesID:      r.SeriesID,
		FeeStructureAmount:        helper.Round2(r.Amount),
		FeeStructureCurrency:      cur,
		FeeStructureEffectiveFrom: from,
		FeeStructureEffectiveTo:   to,
	}
	if r.NewStudentAmount != nil {
		v := helper.Round2(*r.NewStudentAmount)
		m.FeeStructureNewStudentAmount = &v
	}
	return m, true
}

type FeeStructureBulkRequest struct {
	Items []FeeStructureRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

type FeeStructureUpdateRequest struct {
	Amount           *float64 `json:"amount" validate:"omitempty,gt=0"`
	NewStudentAmount *float64 `json:"new_student_amount" validate:"omitempty,gte=0"`
	EffectiveFrom    *string  `json:"effective_from" validate:"omitempty,datetime=2006-01-02"`
	EffectiveTo      *string  `json:"effective_to" validate:"omitempty,datetime=2006-01-02"`
}

func (r FeeStructureUpdateRequest) Updates() (map[string]any, bool) {
	u := map[string]any{}
	if r.Amount != nil {
		u["fee_structure_amount"] = helper.Round2(*r.Amount)
	}
	if r.NewStudentAmount != nil {
		u["fee_structure_new_student_amount"] = helper.Round2(*r.NewStudentAmount)
	}
	from, ok1 := optDate(r.EffectiveFrom)
	to, ok2 := optDate(r.EffectiveTo)
	if !ok1 || !ok2 || (from != nil && to != nil && to.Before(*from)) {
		return nil, false
	}
	if from != nil {
		u["fee_structure_effective_from"] = *from
	}
	if to != nil {
		u["fee_structure_effective_to"] = *to
	}
	return u, true
}

type FeeStructureItem struct {
	model.FeeStructureModel
	FeeTypeCode string  `json:"fee_type_code"`
	FeeTypeName string  `json:"fee_type_name"`
	GradeName   *string `json:"grade_name,omitempty"`
	SeriesName  *string `json:"series_name,omitempty"`
}

/* =========================
   Discounts
========================= */

type DiscountRequest struct {
	Code             string   `json:"code" validate:"required,min=2,max=40"`
	Name             string   `json:"name" validate:"required,min=2,max=120"`
	Description      *string  `json:"description" validate:"omitempty,max=1000"`
	Type             string   `json:"type" validate:"required,oneof=sibling scholarship staff early_payment other"`
	CalculationType  string   `json:"calculation_type" validate:"required,oneof=percentage fixed"`
	Value            float64  `json:"value" validate:"gt=0"`
	AppliesTo        []string `json:"applies_to_fee_types" validate:"omitempty,dive,min=1,max=64"`
	MaxAmount        *float64 `json:"max_discount_amount" validate:"omitempty,gt=0"`
	RequiresApproval bool     `json:"requires_approval"`
	AutoApply        bool     `json:"auto_apply"`
	ValidFrom        *string  `json:"valid_from" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil       *string  `json:"valid_until" validate:"omitempty,datetime=2006-01-02"`
}

// ToModel: false kalau persen > 100 atau masa berlaku terbalik
func (r DiscountRequest) ToModel(schoolID uuid.UUID) (model.DiscountModel, bool) {
	if r.CalculationType == model.CalcPercentage && r.Value > 100 {
		return model.DiscountModel{}, false
	}
	from, ok1 := optDate(r.ValidFrom)
	until, ok2 := optDate(r.ValidUntil)
	if !ok1 || !ok2 || (from != nil && until != nil && until.Before(*from)) {
		return model.DiscountModel{}, false
	}
	m := model.DiscountModel{
		DiscountSchoolID:        schoolID,
		DiscountCode:            strings.ToUpper(strings.TrimSpace(r.Code)),
		DiscountName:            strings.TrimSpace(r.Name),
		DiscountDescription:     r.Description,
		DiscountType:            r.Type,
		DiscountCalculationType: r.CalculationType,
		DiscountValue:           helper.Round2(r.Value),
		DiscountMaxAmount:       r.MaxAmount,
		DiscountNeedsApproval:   r.RequiresApproval,
		DiscountAutoApply:       r.AutoApply,
		DiscountValidFrom:       from,
		DiscountValidUntil:      until,
		DiscountStatus:          model.StatusActive,
	}
	if len(r.AppliesTo) > 0 {
		m.DiscountAppliesTo = pq.StringArray(r.AppliesTo)
	}
	return m, true
}

type DiscountUpdateRequest struct {
	Name             *string  `json:"name" validate:"omitempty,min=2,max=120"`
	Description      *string  `json:"description" validate:"omitempty,max=1000"`
	Value            *float64 `json:"value" validate:"omitempty,gt=0"`
	AppliesTo        []string `json:"applies_to_fee_types" validate:"omitempty,dive,min=1,max=64"`
	MaxAmount        *float64 `json:"max_discount_amount" validate:"omitempty,gt=0"`
	RequiresApproval *bool    `json:"requires_approval"`
	AutoApply        *bool    `json:"auto_apply"`
	Status           *string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r DiscountUpdateRequest) Updates() map[string]any {
	u := map[string]any{}
	if r.Name != nil {
		u["discount_name"] = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		u["discount_description"] = *r.Description
	}
	if r.Value != nil {
		u["discount_value"] = helper.Round2(*r.Value)
	}
	if r.AppliesTo != nil {
		u["discount_applies_to_fee_types"] = pq.StringArray(r.AppliesTo)
	}
	if r.MaxAmount != nil {
		u["discount_max_discount_amount"] = *r.MaxAmount
	}
	if r.RequiresApproval != nil {
		u["discount_requires_approval"] = *r.RequiresApproval
	}
	if r.AutoApply != nil {
		u["discount_auto_apply"] = *r.AutoApply
	}
	if r.Status != nil {
		u["discount_status"] = *r.Status
	}
	return u
}

type AssignDiscountRequest struct {
	StudentID    uuid.UUID `json:"student_id" validate:"required"`
	DiscountID   uuid.UUID `json:"discount_id" validate:"required"`
	SchoolYearID uuid.UUID `json:"school_year_id" validate:"required"`
	Reason       *string   `json:"reason" validate:"omitempty,max=1000"`
}

type ApproveDiscountRequest struct {
	Approve bool `json:"approve"`
}

/* =========================
   Student fees
========================= */

type AssignFeesRequest struct {
	StudentID    uuid.UUID `json:"student_id" validate:"required"`
	SchoolYearID uuid.UUID `json:"school_year_id" validate:"required"`
}

type BulkAssignRequest struct {
	ClassID      uuid.UUID `json:"class_id" validate:"required"`
	SchoolYearID uuid.UUID `json:"school_year_id" validate:"required"`
}

type WaiveRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

type BreakdownItem struct {
	FeeStructureID  uuid.UUID `json:"fee_structure_id"`
	FeeTypeID       uuid.UUID `json:"fee_type_id"`
	FeeTypeName     string    `json:"fee_type_name"`
	FeeTypeCategory string    `json:"fee_type_category"`
	OriginalAmount  float64   `json:"original_amount"`
	DiscountAmount  float64   `json:"discount_amount"`
	FinalAmount     float64   `json:"final_amount"`
	IsNewStudent    bool      `json:"is_new_student"`
}

type StudentFeeCalculation struct {
	StudentID     uuid.UUID       `json:"student_id"`
	SchoolYearID  uuid.UUID       `json:"school_year_id"`
	IsNewStudent  bool            `json:"is_new_student"`
	Breakdown     []BreakdownItem `json:"breakdown"`
	TotalOriginal float64         `json:"total_original"`
	TotalDiscount float64         `json:"total_discount"`
	TotalFinal    float64         `json:"total_final"`
}

type StudentFeeItem struct {
	model.StudentFeeModel
	FeeTypeCode string `json:"fee_type_code"`
	FeeTypeName string `json:"fee_type_name"`
}

type StudentFeeSummary struct {
	TotalFees      float64 `json:"total_fees"`
	TotalDiscounts float64 `json:"total_discounts"`
	TotalPaid      float64 `json:"total_paid"`
	TotalBalance   float64 `json:"total_balance"`
	FeeCount       int64   `json:"fee_count"`
}

type OutstandingItem struct {
	StudentID        uuid.UUID `json:"student_id"`
	StudentName      string    `json:"student_name"`
	StudentMatricule *string   `json:"student_matricule,omitempty"`
	ClassName        *string   `json:"class_name,omitempty"`
	TotalBalance     float64   `json:"total_balance"`
	FeeCount         int64     `json:"fee_count"`
}

type BulkError struct {
	StudentID string `json:"student_id"`
	Error     string `json:"error"`
}

type BulkResult struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Inserted  int         `json:"inserted"`
	Errors    []BulkError `json:"errors"`
}
