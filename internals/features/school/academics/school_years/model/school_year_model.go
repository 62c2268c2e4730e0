package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SchoolYearModel struct {
	SchoolYearID        uuid.UUID `gorm:"column:school_year_id;type:uuid;default:gen_random_uuid();primaryKey" json:"school_year_id"`
	SchoolYearSchoolID  uuid.UUID `gorm:"column:school_year_school_id;type:uuid;not null;index" json:"school_year_school_id"`
	SchoolYearName      string    `gorm:"column:school_year_name;size:50;not null" json:"school_year_name"`
	SchoolYearStartDate time.Time `gorm:"column:school_year_start_date;type:date;not null" json:"school_year_start_date"`
	SchoolYearEndDate   time.Time `gorm:"column:school_year_end_date;type:date;not null" json:"school_year_end_date"`
	SchoolYearIsActive  bool      `gorm:"column:school_year_is_active;not null;default:false;index" json:"school_year_is_active"`

	SchoolYearCreatedAt time.Time      `gorm:"column:school_year_created_at;autoCreateTime" json:"school_year_created_at"`
	SchoolYearUpdatedAt time.Time      `gorm:"column:school_year_updated_at;autoUpdateTime" json:"school_year_updated_at"`
	SchoolYearDeletedAt gorm.DeletedAt `gorm:"column:school_year_deleted_at;index" json:"-"`
}

func (SchoolYearModel) TableName() string { return "school_years" }

const (
	TermTypeTrimester = "trimester"
	TermTypeSemester  = "semester"
)

type TermModel struct {
	TermID           uuid.UUID `gorm:"column:term_id;type:uuid;default:gen_random_uuid();primaryKey" json:"term_id"`
	TermSchoolID     uuid.UUID `gorm:"column:term_school_id;type:uuid;not null;index" json:"term_school_id"`
	TermSchoolYearID uuid.UUID `gorm:"column:term_school_year_id;type:uuid;not null;index" json:"term_school_year_id"`
	TermName         string    `gorm:"column:term_name;size:50;not null" json:"term_name"`
	TermType         string    `gorm:"column:term_type;size:20;not null;default:trimester" json:"term_type"`
	TermOrder        int       `gorm:"column:term_order;not null;default:1" json:"term_order"`
	TermStartDate    time.Time `gorm:"column:term_start_date;type:date;not null" json:"term_start_date"`
	TermEndDate      time.Time `gorm:"column:term_end_date;type:date;not null" json:"term_end_date"`

	TermCreatedAt time.Time      `gorm:"column:term_created_at;autoCreateTime" json:"term_created_at"`
	TermUpdatedAt time.Time      `gorm:"column:term_updated_at;autoUpdateTime" json:"term_updated_at"`
	TermDeletedAt gorm.DeletedAt `gorm:"column:term_deleted_at;index" json:"-"`
}

func (TermModel) TableName() string { return "terms" }
