package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ClassroomStatusActive      = "active"
	ClassroomStatusMaintenance = "maintenance"
	ClassroomStatusInactive    = "inactive"
)

type ClassroomModel struct {
	ClassroomID        uuid.UUID      `gorm:"column:classroom_id;type:uuid;default:gen_random_uuid();primaryKey" json:"classroom_id"`
	ClassroomSchoolID  uuid.UUID      `gorm:"column:classroom_school_id;type:uuid;not null;uniqueIndex:uq_classrooms_school_code,where:classroom_deleted_at IS NULL" json:"classroom_school_id"`
	ClassroomName      string         `gorm:"column:classroom_name;size:100;not null" json:"classroom_name"`
	ClassroomCode      string         `gorm:"column:classroom_code;size:20;not null;uniqueIndex:uq_classrooms_school_code,where:classroom_deleted_at IS NULL" json:"classroom_code"`
	ClassroomType      string         `gorm:"column:classroom_type;size:20;not null;default:regular" json:"classroom_type"`
	ClassroomCapacity  int            `gorm:"column:classroom_capacity;not null;default:30" json:"classroom_capacity"`
	ClassroomFloor     *string        `gorm:"column:classroom_floor;size:20" json:"classroom_floor,omitempty"`
	ClassroomBuilding  *string        `gorm:"column:classroom_building;size:100" json:"classroom_building,omitempty"`
	ClassroomEquipment datatypes.JSON `gorm:"column:classroom_equipment;type:jsonb;default:'[]'" json:"classroom_equipment"`
	ClassroomStatus    string         `gorm:"column:classroom_status;size:20;not null;default:active;index" json:"classroom_status"`
	ClassroomNotes     *string        `gorm:"column:classroom_notes;type:text" json:"classroom_notes,omitempty"`

	ClassroomCreatedAt time.Time      `gorm:"column:classroom_created_at;autoCreateTime" json:"classroom_created_at"`
	ClassroomUpdatedAt time.Time      `gorm:"column:classroom_updated_at;autoUpdateTime" json:"classroom_updated_at"`
	ClassroomDeletedAt gorm.DeletedAt `gorm:"column:classroom_deleted_at;index" json:"-"`
}

func (ClassroomModel) TableName() string { return "classrooms" }
