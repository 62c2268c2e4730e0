package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub_backend/internals/helpers/dbtime"
)

// CreateTeacherRequest: pakai user_id yang sudah ada, atau email + full_name untuk akun baru.
type CreateTeacherRequest struct {
	UserID         *uuid.UUID  `json:"user_id" validate:"required_without=Email"`
	Email          string      `json:"email" validate:"required_without=UserID,omitempty,email,max=255"`
	FullName       string      `json:"full_name" validate:"required_with=Email,omitempty,max=150"`
	Phone          *string     `json:"phone" validate:"omitempty,max=30"`
	Specialization *string     `json:"specialization" validate:"omitempty,max=120"`
	HireDate       *string     `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
	Status         string      `json:"status" validate:"omitempty,oneof=active inactive on_leave"`
	SubjectIDs     []uuid.UUID `json:"subject_ids" validate:"omitempty,dive,required"`
}

type UpdateTeacherRequest struct {
	Specialization *string `json:"specialization" validate:"omitempty,max=120"`
	HireDate       *string `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
	Status         *string `json:"status" validate:"omitempty,oneof=active inactive on_leave"`
}

func (r UpdateTeacherRequest) Updates() map[string]any {
	up := map[string]any{}
	if r.Specialization != nil {
		up["teacher_specialization"] = strings.TrimSpace(*r.Specialization)
	}
	if d := ParseHireDate(r.HireDate); d != nil {
		up["teacher_hire_date"] = *d
	}
	if r.Status != nil {
		up["teacher_status"] = *r.Status
	}
	return up
}

type TeacherSubjectsRequest struct {
	SubjectIDs []uuid.UUID `json:"subject_ids" validate:"required,min=1,dive,required"`
}

// ParseHireDate: nil kalau kosong (format sudah dicek validator).
func ParseHireDate(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	d, err := dbtime.ParseDate(*s)
	if err != nil {
		return nil
	}
	return &d
}

type TeacherListItem struct {
	TeacherID             uuid.UUID  `json:"teacher_id"`
	TeacherUserID         uuid.UUID  `json:"teacher_user_id"`
	FullName              *string    `json:"full_name,omitempty"`
	UserName              string     `json:"user_name"`
	Email                 string     `json:"email"`
	Phone                 *string    `json:"phone,omitempty"`
	TeacherSpecialization *string    `json:"teacher_specialization,omitempty"`
	TeacherHireDate       *time.Time `json:"teacher_hire_date,omitempty"`
	TeacherStatus         string     `json:"teacher_status"`
}

type TeacherSubjectItem struct {
	SubjectID       uuid.UUID `json:"subject_id"`
	SubjectName     string    `json:"subject_name"`
	SubjectCategory string    `json:"subject_category"`
}

type TeacherClassItem struct {
	ClassID      uuid.UUID  `json:"class_id"`
	ClassName    string     `json:"class_name"`
	SchoolYearID uuid.UUID  `json:"school_year_id"`
	SubjectID    *uuid.UUID `json:"subject_id,omitempty"`
	SubjectName  *string    `json:"subject_name,omitempty"`
	HoursPerWeek int        `json:"hours_per_week"`
	IsHomeroom   bool       `json:"is_homeroom"`
}

type CreateTeacherResponse struct {
	TeacherID uuid.UUID `json:"teacher_id"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	NewUser   bool      `json:"new_user"`
	EmailSent bool      `json:"email_sent"`
}
