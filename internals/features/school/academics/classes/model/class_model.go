package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClassStatusActive   = "active"
	ClassStatusArchived = "archived"
)

type ClassModel struct {
	ClassID                uuid.UUID  `gorm:"column:class_id;type:uuid;default:gen_random_uuid();primaryKey" json:"class_id"`
	ClassSchoolID          uuid.UUID  `gorm:"column:class_school_id;type:uuid;not null;index" json:"class_school_id"`
	ClassSchoolYearID      uuid.UUID  `gorm:"column:class_school_year_id;type:uuid;not null;index" json:"class_school_year_id"`
	ClassGradeID           uuid.UUID  `gorm:"column:class_grade_id;type:uuid;not null;index" json:"class_grade_id"`
	ClassSeriesID          *uuid.UUID `gorm:"column:class_series_id;type:uuid" json:"class_series_id,omitempty"`
	ClassSection           string     `gorm:"column:class_section;size:10;not null" json:"class_section"`
	ClassName              string     `gorm:"column:class_name;size:120;not null" json:"class_name"`
	ClassClassroomID       *uuid.UUID `gorm:"column:class_classroom_id;type:uuid;index" json:"class_classroom_id,omitempty"`
	ClassHomeroomTeacherID *uuid.UUID `gorm:"column:class_homeroom_teacher_id;type:uuid" json:"class_homeroom_teacher_id,omitempty"`
	ClassMaxStudents       int        `gorm:"column:class_max_students;not null;default:40" json:"class_max_students"`
	ClassStatus            string     `gorm:"column:class_status;size:20;not null;default:active;index" json:"class_status"`

	ClassCreatedAt time.Time      `gorm:"column:class_created_at;autoCreateTime" json:"class_created_at"`
	ClassUpdatedAt time.Time      `gorm:"column:class_updated_at;autoUpdateTime" json:"class_updated_at"`
	ClassDeletedAt gorm.DeletedAt `gorm:"column:class_deleted_at;index" json:"-"`
}

func (ClassModel) TableName() string { return "classes" }

type ClassSubjectModel struct {
	ClassSubjectID           uuid.UUID  `gorm:"column:class_subject_id;type:uuid;default:gen_random_uuid();primaryKey" json:"class_subject_id"`
	ClassSubjectSchoolID     uuid.UUID  `gorm:"column:class_subject_school_id;type:uuid;not null;index" json:"class_subject_school_id"`
	ClassSubjectClassID      uuid.UUID  `gorm:"column:class_subject_class_id;type:uuid;not null;uniqueIndex:uq_class_subject" json:"class_subject_class_id"`
	ClassSubjectSubjectID    uuid.UUID  `gorm:"column:class_subject_subject_id;type:uuid;not null;uniqueIndex:uq_class_subject" json:"class_subject_subject_id"`
	ClassSubjectTeacherID    *uuid.UUID `gorm:"column:class_subject_teacher_id;type:uuid;index" json:"class_subject_teacher_id,omitempty"`
	ClassSubjectCoefficient  int        `gorm:"column:class_subject_coefficient;not null;default:1" json:"class_subject_coefficient"`
	ClassSubjectHoursPerWeek int        `gorm:"column:class_subject_hours_per_week;not null;default:2" json:"class_subject_hours_per_week"`

	ClassSubjectCreatedAt time.Time `gorm:"column:class_subject_created_at;autoCreateTime" json:"class_subject_created_at"`
	ClassSubjectUpdatedAt time.Time `gorm:"column:class_subject_updated_at;autoUpdateTime" json:"class_subject_updated_at"`
}

func (ClassSubjectModel) TableName() string { return "class_subjects" }
