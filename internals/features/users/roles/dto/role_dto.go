package dto

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"schoolhub_backend/internals/features/users/roles/model"
)

type CreateRoleRequest struct {
	RoleSlug        string              `json:"role_slug" validate:"required,min=2,max=60,lowercase"`
	RoleName        string              `json:"role_name" validate:"required,min=2,max=120"`
	RoleDescription *string             `json:"role_description" validate:"omitempty,max=500"`
	RolePermissions map[string][]string `json:"role_permissions"`
	RoleScope       string              `json:"role_scope" validate:"omitempty,oneof=school system"`
}

func (r CreateRoleRequest) ToModel() model.RoleModel {
	scope := r.RoleScope
	if scope == "" {
		scope = model.RoleScopeSchool
	}
	return model.RoleModel{
		RoleSlug:        strings.TrimSpace(r.RoleSlug),
		RoleName:        strings.TrimSpace(r.RoleName),
		RoleDescription: r.RoleDescription,
		RolePermissions: permsJSON(r.RolePermissions),
		RoleScope:       scope,
	}
}

type UpdateRoleRequest struct {
	RoleName        *string             `json:"role_name" validate:"omitempty,min=2,max=120"`
	RoleDescription *string             `json:"role_description" validate:"omitempty,max=500"`
	RolePermissions map[string][]string `json:"role_permissions"`
}

func (r UpdateRoleRequest) ApplyPatch(m *model.RoleModel) {
	if r.RoleName != nil {
		m.RoleName = strings.TrimSpace(*r.RoleName)
	}
	if r.RoleDescription != nil {
		m.RoleDescription = r.RoleDescription
	}
	if r.RolePermissions != nil {
		m.RolePermissions = permsJSON(r.RolePermissions)
	}
}

func permsJSON(p map[string][]string) datatypes.JSON {
	if p == nil {
		p = map[string][]string{}
	}
	b, _ := json.Marshal(p)
	return datatypes.JSON(b)
}

type AssignUserRoleRequest struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	RoleSlug string    `json:"role_slug" validate:"required"`
}

type UserRoleItem struct {
	UserRoleID uuid.UUID `json:"user_role_id" gorm:"column:user_role_id"`
	UserID     uuid.UUID `json:"user_id" gorm:"column:user_role_user_id"`
	UserName   string    `json:"user_name" gorm:"column:user_name"`
	Email      string    `json:"email" gorm:"column:email"`
	RoleSlug   string    `json:"role_slug" gorm:"column:role_slug"`
	RoleName   string    `json:"role_name" gorm:"column:role_name"`
}
