package dto

import (
	"github.com/google/uuid"

	"schoolhub_backend/internals/features/finance/payment_plans/model"
)

type ScheduleItemRequest struct {
	Number           int     `json:"number" validate:"required,min=1"`
	Percentage       float64 `json:"percentage" validate:"gt=0,lte=100"`
	DueDaysFromStart int     `json:"due_days_from_start" validate:"min=0,max=730"`
	Label            string  `json:"label" validate:"omitempty,max=120"`
}

type TemplateRequest struct {
	SchoolYearID      uuid.UUID             `json:"school_year_id" validate:"required"`
	Name              string                `json:"name" validate:"required,min=2,max=120"`
	InstallmentsCount int                   `json:"installments_count" validate:"required,min=1,max=24"`
	Schedule          []ScheduleItemRequest `json:"schedule" validate:"required,min=1,max=24,dive"`
	IsDefault         bool                  `json:"is_default"`
}

func (r TemplateRequest) Items() []model.ScheduleItem {
	out := make([]model.ScheduleItem, 0, len(r.Schedule))
	for _, s := range r.Schedule {
		out = append(out, model.ScheduleItem{
			Number:           s.Number,
			Percentage:       s.Percentage,
			DueDaysFromStart: s.DueDaysFromStart,
			Label:            s.Label,
		})
	}
	return out
}

type TemplateUpdateRequest struct {
	Name              *string               `json:"name" validate:"omitempty,min=2,max=120"`
	InstallmentsCount *int                  `json:"installments_count" validate:"omitempty,min=1,max=24"`
	Schedule          []ScheduleItemRequest `json:"schedule" validate:"omitempty,min=1,max=24,dive"`
	IsDefault         *bool                 `json:"is_default"`
	Status            *string               `json:"status" validate:"omitempty,oneof=active inactive"`
}

type CreatePlanRequest struct {
	StudentID    uuid.UUID  `json:"student_id" validate:"required"`
	SchoolYearID uuid.UUID  `json:"school_year_id" validate:"required"`
	TemplateID   *uuid.UUID `json:"template_id"`
	// TotalAmount kosong = total saldo tagihan siswa di tahun itu
	TotalAmount *float64 `json:"total_amount" validate:"omitempty,gt=0"`
	StartDate   string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	Notes       *string  `json:"notes" validate:"omitempty,max=1000"`
}

type CancelPlanRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=1000"`
}

type PlanDetail struct {
	model.PaymentPlanModel
	StudentName  string                   `json:"student_name"`
	Installments []model.InstallmentModel `json:"installments" gorm:"-"`
}

type PlanItem struct {
	model.PaymentPlanModel
	StudentName      string `json:"student_name"`
	OverdueCount     int64  `json:"overdue_count"`
	InstallmentCount int64  `json:"installment_count"`
}

type PlanSummary struct {
	TotalPlans       int64   `json:"total_plans"`
	ActivePlans      int64   `json:"active_plans"`
	CompletedPlans   int64   `json:"completed_plans"`
	DefaultedPlans   int64   `json:"defaulted_plans"`
	CancelledPlans   int64   `json:"cancelled_plans"`
	TotalExpected    float64 `json:"total_expected"`
	TotalCollected   float64 `json:"total_collected"`
	TotalOutstanding float64 `json:"total_outstanding"`
}

type OverdueItem struct {
	InstallmentID     uuid.UUID `json:"installment_id"`
	PaymentPlanID     uuid.UUID `json:"payment_plan_id"`
	StudentID         uuid.UUID `json:"student_id"`
	StudentName       string    `json:"student_name"`
	InstallmentNumber int       `json:"installment_number"`
	Amount            float64   `json:"amount"`
	Balance           float64   `json:"balance"`
	DueDate           string    `json:"due_date"`
	DaysOverdue       int       `json:"days_overdue"`
}
