package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EmploymentActive   = "active"
	EmploymentInactive = "inactive"
	EmploymentOnLeave  = "on_leave"
)

type TeacherModel struct {
	TeacherID             uuid.UUID  `gorm:"column:teacher_id;type:uuid;default:gen_random_uuid();primaryKey" json:"teacher_id"`
	TeacherSchoolID       uuid.UUID  `gorm:"column:teacher_school_id;type:uuid;not null;uniqueIndex:uq_teacher_school_user,where:teacher_deleted_at IS NULL" json:"teacher_school_id"`
	TeacherUserID         uuid.UUID  `gorm:"column:teacher_user_id;type:uuid;not null;uniqueIndex:uq_teacher_school_user,where:teacher_deleted_at IS NULL" json:"teacher_user_id"`
	TeacherSpecialization *string    `gorm:"column:teacher_specialization;size:120" json:"teacher_specialization,omitempty"`
	TeacherHireDate       *time.Time `gorm:"column:teacher_hire_date;type:date" json:"teacher_hire_date,omitempty"`
	TeacherStatus         string     `gorm:"column:teacher_status;size:20;not null;default:active;index" json:"teacher_status"`

	TeacherCreatedAt time.Time      `gorm:"column:teacher_created_at;autoCreateTime" json:"teacher_created_at"`
	TeacherUpdatedAt time.Time      `gorm:"column:teacher_updated_at;autoUpdateTime" json:"teacher_updated_at"`
	TeacherDeletedAt gorm.DeletedAt `gorm:"column:teacher_deleted_at;index" json:"-"`
}

func (TeacherModel) TableName() string { return "teachers" }

// TeacherSubjectModel: mapel yang boleh diajar guru
type TeacherSubjectModel struct {
	TeacherSubjectID        uuid.UUID `gorm:"column:teacher_subject_id;type:uuid;default:gen_random_uuid();primaryKey" json:"teacher_subject_id"`
	TeacherSubjectSchoolID  uuid.UUID `gorm:"column:teacher_subject_school_id;type:uuid;not null;index" json:"teacher_subject_school_id"`
	TeacherSubjectTeacherID uuid.UUID `gorm:"column:teacher_subject_teacher_id;type:uuid;not null;uniqueIndex:uq_teacher_subject" json:"teacher_subject_teacher_id"`
	TeacherSubjectSubjectID uuid.UUID `gorm:"column:teacher_subject_subject_id;type:uuid;not null;uniqueIndex:uq_teacher_subject" json:"teacher_subject_subject_id"`
	TeacherSubjectCreatedAt time.Time `gorm:"column:teacher_subject_created_at;autoCreateTime" json:"teacher_subject_created_at"`
}

func (TeacherSubjectModel) TableName() string { return "teacher_subjects" }
