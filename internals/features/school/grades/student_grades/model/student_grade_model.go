package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GradeStatusDraft     = "draft"
	GradeStatusSubmitted = "submitted"
	GradeStatusValidated = "validated"
	GradeStatusRejected  = "rejected"
)

const (
	GradeTypeQuiz          = "quiz"
	GradeTypeTest          = "test"
	GradeTypeExam          = "exam"
	GradeTypeParticipation = "participation"
	GradeTypeHomework      = "homework"
	GradeTypeProject       = "project"
)

type StudentGradeModel struct {
	StudentGradeID          uuid.UUID `gorm:"column:student_grade_id;type:uuid;default:gen_random_uuid();primaryKey" json:"student_grade_id"`
	StudentGradeSchoolID    uuid.UUID `gorm:"column:student_grade_school_id;type:uuid;not null;index" json:"student_grade_school_id"`
	StudentGradeStudentID   uuid.UUID `gorm:"column:student_grade_student_id;type:uuid;not null;index" json:"student_grade_student_id"`
	StudentGradeClassID     uuid.UUID `gorm:"column:student_grade_class_id;type:uuid;not null;index:idx_grade_class_term" json:"student_grade_class_id"`
	StudentGradeSubjectID   uuid.UUID `gorm:"column:student_grade_subject_id;type:uuid;not null;index" json:"student_grade_subject_id"`
	StudentGradeTermID      uuid.UUID `gorm:"column:student_grade_term_id;type:uuid;not null;index:idx_grade_class_term" json:"student_grade_term_id"`
	StudentGradeTeacherID   uuid.UUID `gorm:"column:student_grade_teacher_id;type:uuid;not null;index" json:"student_grade_teacher_id"`
	StudentGradeValue       float64   `gorm:"column:student_grade_value;type:numeric(4,2);not null" json:"student_grade_value"`
	StudentGradeType        string    `gorm:"column:student_grade_type;size:20;not null" json:"student_grade_type"`
	StudentGradeWeight      int       `gorm:"column:student_grade_weight;not null;default:1" json:"student_grade_weight"`
	StudentGradeDescription *string   `gorm:"column:student_grade_description" json:"student_grade_description,omitempty"`
	StudentGradeDate        time.Time `gorm:"column:student_grade_date;type:date;not null" json:"student_grade_date"`
	StudentGradeStatus      string    `gorm:"column:student_grade_status;size:20;not null;default:draft;index" json:"student_grade_status"`

	StudentGradeSubmittedAt     *time.Time `gorm:"column:student_grade_submitted_at" json:"student_grade_submitted_at,omitempty"`
	StudentGradeValidatedAt     *time.Time `gorm:"column:student_grade_validated_at" json:"student_grade_validated_at,omitempty"`
	StudentGradeValidatedBy     *uuid.UUID `gorm:"column:student_grade_validated_by;type:uuid" json:"student_grade_validated_by,omitempty"`
	StudentGradeRejectionReason *string    `gorm:"column:student_grade_rejection_reason" json:"student_grade_rejection_reason,omitempty"`

	StudentGradeCreatedAt time.Time      `gorm:"column:student_grade_created_at;autoCreateTime" json:"student_grade_created_at"`
	StudentGradeUpdatedAt time.Time      `gorm:"column:student_grade_updated_at;autoUpdateTime" json:"student_grade_updated_at"`
	StudentGradeDeletedAt gorm.DeletedAt `gorm:"column:student_grade_deleted_at;index" json:"-"`
}

func (StudentGradeModel) TableName() string { return "student_grades" }

const (
	ValidationSubmitted = "submitted"
	ValidationValidated = "validated"
	ValidationRejected  = "rejected"
	ValidationEdited    = "edited"
)

// GradeValidationModel: jejak setiap perpindahan status nilai
type GradeValidationModel struct {
	GradeValidationID            uuid.UUID  `gorm:"column:grade_validation_id;type:uuid;default:gen_random_uuid();primaryKey" json:"grade_validation_id"`
	GradeValidationSchoolID      uuid.UUID  `gorm:"column:grade_validation_school_id;type:uuid;not null;index" json:"grade_validation_school_id"`
	GradeValidationGradeID       uuid.UUID  `gorm:"column:grade_validation_grade_id;type:uuid;not null;index" json:"grade_validation_grade_id"`
	GradeValidationAction        string     `gorm:"column:grade_validation_action;size:20;not null" json:"grade_validation_action"`
	GradeValidationPreviousValue *float64   `gorm:"column:grade_validation_previous_value;type:numeric(4,2)" json:"grade_validation_previous_value,omitempty"`
	GradeValidationNewValue      *float64   `gorm:"column:grade_validation_new_value;type:numeric(4,2)" json:"grade_validation_new_value,omitempty"`
	GradeValidationComment       *string    `gorm:"column:grade_validation_comment" json:"grade_validation_comment,omitempty"`
	GradeValidationBy            *uuid.UUID `gorm:"column:grade_validation_by;type:uuid" json:"grade_validation_by,omitempty"`
	GradeValidationCreatedAt     time.Time  `gorm:"column:grade_validation_created_at;autoCreateTime" json:"grade_validation_created_at"`
}

func (GradeValidationModel) TableName() string { return "grade_validations" }

// StudentAverageModel: subject_id NULL = rata-rata umum.
// Dua unique index parsial supaya baris umum juga bisa di-upsert.
type StudentAverageModel struct {
	StudentAverageID         uuid.UUID  `gorm:"column:student_average_id;type:uuid;default:gen_random_uuid();primaryKey" json:"student_average_id"`
	StudentAverageSchoolID   uuid.UUID  `gorm:"column:student_average_school_id;type:uuid;not null;index" json:"student_average_school_id"`
	StudentAverageStudentID  uuid.UUID  `gorm:"column:student_average_student_id;type:uuid;not null;uniqueIndex:uq_average_subject,where:student_average_subject_id IS NOT NULL;uniqueIndex:uq_average_overall,where:student_average_subject_id IS NULL" json:"student_average_student_id"`
	StudentAverageTermID     uuid.UUID  `gorm:"column:student_average_term_id;type:uuid;not null;uniqueIndex:uq_average_subject,where:student_average_subject_id IS NOT NULL;uniqueIndex:uq_average_overall,where:student_average_subject_id IS NULL;index:idx_average_class_term" json:"student_average_term_id"`
	StudentAverageSubjectID  *uuid.UUID `gorm:"column:student_average_subject_id;type:uuid;uniqueIndex:uq_average_subject,where:student_average_subject_id IS NOT NULL" json:"student_average_subject_id,omitempty"`
	StudentAverageClassID    uuid.UUID  `gorm:"column:student_average_class_id;type:uuid;not null;index:idx_average_class_term" json:"student_average_class_id"`
	StudentAverageValue      float64    `gorm:"column:student_average_value;type:numeric(5,2);not null" json:"student_average_value"`
	StudentAverageGradeCount int        `gorm:"column:student_average_grade_count;not null;default:0" json:"student_average_grade_count"`
	StudentAverageRank       *int       `gorm:"column:student_average_rank_in_class" json:"student_average_rank_in_class,omitempty"`
	StudentAverageIsFinal    bool       `gorm:"column:student_average_is_final;not null;default:false" json:"student_average_is_final"`

	StudentAverageCalculatedAt time.Time `gorm:"column:student_average_calculated_at;not null" json:"student_average_calculated_at"`
}

func (StudentAverageModel) TableName() string { return "student_averages" }
