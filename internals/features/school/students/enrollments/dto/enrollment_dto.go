package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateEnrollmentRequest struct {
	StudentID      uuid.UUID `json:"student_id" validate:"required"`
	ClassID        uuid.UUID `json:"class_id" validate:"required"`
	RollNumber     *int      `json:"roll_number" validate:"omitempty,min=1,max=999"`
	EnrollmentDate *string   `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
}

type ReasonRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

type TransferRequest struct {
	NewClassID    uuid.UUID `json:"new_class_id" validate:"required"`
	Reason        *string   `json:"reason" validate:"omitempty,max=500"`
	EffectiveDate *string   `json:"effective_date" validate:"omitempty,datetime=2006-01-02"`
}

// ReEnrollRequest: grade_mapping dari grade lama → grade baru (kosong = grade sama).
type ReEnrollRequest struct {
	FromYearID   uuid.UUID            `json:"from_school_year_id" validate:"required"`
	ToYearID     uuid.UUID            `json:"to_school_year_id" validate:"required"`
	GradeMapping map[string]uuid.UUID `json:"grade_mapping"`
	AutoConfirm  bool                 `json:"auto_confirm"`
}

type ReEnrollError struct {
	StudentID uuid.UUID `json:"student_id"`
	Error     string    `json:"error"`
}

type ReEnrollResult struct {
	Success int             `json:"success"`
	Skipped int             `json:"skipped"`
	Errors  []ReEnrollError `json:"errors"`
}

type EnrollmentListItem struct {
	EnrollmentID         uuid.UUID  `json:"enrollment_id"`
	EnrollmentStatus     string     `json:"enrollment_status"`
	EnrollmentRollNumber *int       `json:"enrollment_roll_number,omitempty"`
	EnrollmentDate       time.Time  `json:"enrollment_date"`
	EnrollmentPreviousID *uuid.UUID `json:"enrollment_previous_enrollment_id,omitempty"`
	StudentID            uuid.UUID  `json:"student_id"`
	StudentMatricule     string     `json:"student_matricule"`
	StudentFirstName     string     `json:"student_first_name"`
	StudentLastName      string     `json:"student_last_name"`
	StudentGender        *string    `json:"student_gender,omitempty"`
	ClassID              uuid.UUID  `json:"class_id"`
	ClassName            string     `json:"class_name"`
	SchoolYearID         uuid.UUID  `json:"school_year_id"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type ClassCount struct {
	ClassID     uuid.UUID `json:"class_id"`
	ClassName   string    `json:"class_name"`
	MaxStudents int       `json:"max_students"`
	Count       int64     `json:"count"`
	Boys        int64     `json:"boys"`
	Girls       int64     `json:"girls"`
}

type EnrollmentStats struct {
	ByStatus []StatusCount `json:"by_status"`
	ByClass  []ClassCount  `json:"by_class"`
}
