package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub_backend/internals/helpers/dbtime"
)

type SchoolYearRequest struct {
	Name      string `json:"name" validate:"required,min=4,max=50"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsActive  bool   `json:"is_active"`
}

// Dates: start & end dalam bentuk time.Time (sudah lolos validator).
func (r SchoolYearRequest) Dates() (time.Time, time.Time) {
	s, _ := dbtime.ParseDate(r.StartDate)
	e, _ := dbtime.ParseDate(r.EndDate)
	return s, e
}

func (r SchoolYearRequest) CleanName() string { return strings.TrimSpace(r.Name) }

type TermRequest struct {
	SchoolYearID uuid.UUID `json:"school_year_id" validate:"required"`
	Name         string    `json:"name" validate:"required,min=2,max=50"`
	Type         string    `json:"type" validate:"required,oneof=trimester semester"`
	Order        int       `json:"order" validate:"required,min=1,max=4"`
	StartDate    string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string    `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func (r TermRequest) Dates() (time.Time, time.Time) {
	s, _ := dbtime.ParseDate(r.StartDate)
	e, _ := dbtime.ParseDate(r.EndDate)
	return s, e
}
