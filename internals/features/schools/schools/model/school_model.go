package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SchoolStatusActive    = "active"
	SchoolStatusInactive  = "inactive"
	SchoolStatusSuspended = "suspended"
)

type SchoolModel struct {
	SchoolID       uuid.UUID      `gorm:"column:school_id;type:uuid;default:gen_random_uuid();primaryKey" json:"school_id"`
	SchoolName     string         `gorm:"column:school_name;size:200;not null" json:"school_name"`
	SchoolCode     string         `gorm:"column:school_code;size:30;not null;uniqueIndex:uq_schools_code,where:school_deleted_at IS NULL" json:"school_code"`
	SchoolAddress  *string        `gorm:"column:school_address;type:text" json:"school_address,omitempty"`
	SchoolPhone    *string        `gorm:"column:school_phone;size:30" json:"school_phone,omitempty"`
	SchoolEmail    *string        `gorm:"column:school_email;size:255" json:"school_email,omitempty"`
	SchoolLogoURL  *string        `gorm:"column:school_logo_url;type:text" json:"school_logo_url,omitempty"`
	SchoolStatus   string         `gorm:"column:school_status;size:20;not null;default:active;index" json:"school_status"`
	SchoolSettings datatypes.JSON `gorm:"column:school_settings;type:jsonb;default:'{}'" json:"school_settings"`

	SchoolCreatedAt time.Time      `gorm:"column:school_created_at;autoCreateTime" json:"school_created_at"`
	SchoolUpdatedAt time.Time      `gorm:"column:school_updated_at;autoUpdateTime" json:"school_updated_at"`
	SchoolDeletedAt gorm.DeletedAt `gorm:"column:school_deleted_at;index" json:"-"`
}

func (SchoolModel) TableName() string { return "schools" }
