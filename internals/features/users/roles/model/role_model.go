package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleScopeSchool = "school"
	RoleScopeSystem = "system"
)

type RoleModel struct {
	RoleID          uuid.UUID      `gorm:"column:role_id;type:uuid;default:gen_random_uuid();primaryKey" json:"role_id"`
	RoleSlug        string         `gorm:"column:role_slug;size:60;not null;uniqueIndex:uq_roles_slug,where:role_deleted_at IS NULL" json:"role_slug"`
	RoleName        string         `gorm:"column:role_name;size:120;not null" json:"role_name"`
	RoleDescription *string        `gorm:"column:role_description;type:text" json:"role_description,omitempty"`
	RolePermissions datatypes.JSON `gorm:"column:role_permissions;type:jsonb;not null;default:'{}'" json:"role_permissions"`
	RoleScope       string         `gorm:"column:role_scope;size:10;not null;default:'school'" json:"role_scope"`
	RoleIsSystem    bool           `gorm:"column:role_is_system;not null;default:false" json:"role_is_system"`

	RoleCreatedAt time.Time      `gorm:"column:role_created_at;autoCreateTime" json:"role_created_at"`
	RoleUpdatedAt time.Time      `gorm:"column:role_updated_at;autoUpdateTime" json:"role_updated_at"`
	RoleDeletedAt gorm.DeletedAt `gorm:"column:role_deleted_at;index" json:"-"`
}

func (RoleModel) TableName() string { return "roles" }

// UserRoleModel: user ↔ role (↔ school, NULL untuk role system)
type UserRoleModel struct {
	UserRoleID         uuid.UUID  `gorm:"column:user_role_id;type:uuid;default:gen_random_uuid();primaryKey" json:"user_role_id"`
	UserRoleUserID     uuid.UUID  `gorm:"column:user_role_user_id;type:uuid;not null;index" json:"user_role_user_id"`
	UserRoleRoleID     uuid.UUID  `gorm:"column:user_role_role_id;type:uuid;not null" json:"user_role_role_id"`
	UserRoleSchoolID   *uuid.UUID `gorm:"column:user_role_school_id;type:uuid;index" json:"user_role_school_id,omitempty"`
	UserRoleAssignedBy *uuid.UUID `gorm:"column:user_role_assigned_by;type:uuid" json:"user_role_assigned_by,omitempty"`

	UserRoleCreatedAt time.Time      `gorm:"column:user_role_created_at;autoCreateTime" json:"user_role_created_at"`
	UserRoleDeletedAt gorm.DeletedAt `gorm:"column:user_role_deleted_at;index" json:"-"`
}

func (UserRoleModel) TableName() string { return "user_roles" }
