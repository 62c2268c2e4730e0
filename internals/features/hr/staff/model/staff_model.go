package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PositionAcademicCoordinator = "academic_coordinator"
	PositionDisciplineOfficer   = "discipline_officer"
	PositionAccountant          = "accountant"
	PositionCashier             = "cashier"
	PositionRegistrar           = "registrar"
	PositionOther               = "other"
)

type StaffModel struct {
	StaffID         uuid.UUID  `gorm:"column:staff_id;type:uuid;default:gen_random_uuid();primaryKey" json:"staff_id"`
	StaffSchoolID   uuid.UUID  `gorm:"column:staff_school_id;type:uuid;not null;uniqueIndex:uq_staff_school_user,where:staff_deleted_at IS NULL" json:"staff_school_id"`
	StaffUserID     uuid.UUID  `gorm:"column:staff_user_id;type:uuid;not null;uniqueIndex:uq_staff_school_user,where:staff_deleted_at IS NULL" json:"staff_user_id"`
	StaffPosition   string     `gorm:"column:staff_position;size:30;not null;index" json:"staff_position"`
	StaffDepartment *string    `gorm:"column:staff_department;size:100" json:"staff_department,omitempty"`
	StaffHireDate   *time.Time `gorm:"column:staff_hire_date;type:date" json:"staff_hire_date,omitempty"`
	StaffStatus     string     `gorm:"column:staff_status;size:20;not null;default:active;index" json:"staff_status"`

	StaffCreatedAt time.Time      `gorm:"column:staff_created_at;autoCreateTime" json:"staff_created_at"`
	StaffUpdatedAt time.Time      `gorm:"column:staff_updated_at;autoUpdateTime" json:"staff_updated_at"`
	StaffDeletedAt gorm.DeletedAt `gorm:"column:staff_deleted_at;index" json:"-"`
}

func (StaffModel) TableName() string { return "staff" }
