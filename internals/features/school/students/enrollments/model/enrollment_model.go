package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	EnrollmentPending     = "pending"
	EnrollmentConfirmed   = "confirmed"
	EnrollmentCancelled   = "cancelled"
	EnrollmentTransferred = "transferred"
)

type EnrollmentModel struct {
	EnrollmentID           uuid.UUID `gorm:"column:enrollment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"enrollment_id"`
	EnrollmentSchoolID     uuid.UUID `gorm:"column:enrollment_school_id;type:uuid;not null;index" json:"enrollment_school_id"`
	EnrollmentStudentID    uuid.UUID `gorm:"column:enrollment_student_id;type:uuid;not null;index:idx_enrollment_student_year" json:"enrollment_student_id"`
	EnrollmentClassID      uuid.UUID `gorm:"column:enrollment_class_id;type:uuid;not null;index" json:"enrollment_class_id"`
	EnrollmentSchoolYearID uuid.UUID `gorm:"column:enrollment_school_year_id;type:uuid;not null;index:idx_enrollment_student_year" json:"enrollment_school_year_id"`
	EnrollmentStatus       string    `gorm:"column:enrollment_status;size:20;not null;default:pending;index" json:"enrollment_status"`
	EnrollmentRollNumber   *int      `gorm:"column:enrollment_roll_number" json:"enrollment_roll_number,omitempty"`
	EnrollmentDate         time.Time `gorm:"column:enrollment_date;type:date;not null" json:"enrollment_date"`

	EnrollmentConfirmedAt        *time.Time `gorm:"column:enrollment_confirmed_at" json:"enrollment_confirmed_at,omitempty"`
	EnrollmentConfirmedBy        *uuid.UUID `gorm:"column:enrollment_confirmed_by;type:uuid" json:"enrollment_confirmed_by,omitempty"`
	EnrollmentCancelledAt        *time.Time `gorm:"column:enrollment_cancelled_at" json:"enrollment_cancelled_at,omitempty"`
	EnrollmentCancelledBy        *uuid.UUID `gorm:"column:enrollment_cancelled_by;type:uuid" json:"enrollment_cancelled_by,omitempty"`
	EnrollmentCancellationReason *string    `gorm:"column:enrollment_cancellation_reason" json:"enrollment_cancellation_reason,omitempty"`
	EnrollmentTransferredAt      *time.Time `gorm:"column:enrollment_transferred_at" json:"enrollment_transferred_at,omitempty"`
	EnrollmentTransferredTo      *uuid.UUID `gorm:"column:enrollment_transferred_to;type:uuid" json:"enrollment_transferred_to,omitempty"`
	EnrollmentTransferReason     *string    `gorm:"column:enrollment_transfer_reason" json:"enrollment_transfer_reason,omitempty"`
	EnrollmentPreviousID         *uuid.UUID `gorm:"column:enrollment_previous_enrollment_id;type:uuid" json:"enrollment_previous_enrollment_id,omitempty"`

	EnrollmentCreatedAt time.Time `gorm:"column:enrollment_created_at;autoCreateTime" json:"enrollment_created_at"`
	EnrollmentUpdatedAt time.Time `gorm:"column:enrollment_updated_at;autoUpdateTime" json:"enrollment_updated_at"`
}

func (EnrollmentModel) TableName() string { return "enrollments" }
