package dto

import (
	"github.com/google/uuid"
)

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,min=3,max=255"` // email atau user_name
	Password   string `json:"password" validate:"required,min=8"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"` // boleh kosong kalau dari cookie
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72,nefield=OldPassword"`
}

type SchoolRoleItem struct {
	SchoolID   uuid.UUID `json:"school_id"`
	SchoolName string    `json:"school_name"`
	Roles      []string  `json:"roles"`
}

type MeResponse struct {
	ID          uuid.UUID        `json:"id"`
	UserName    string           `json:"user_name"`
	FullName    *string          `json:"full_name,omitempty"`
	Email       string           `json:"email"`
	RolesGlobal []string         `json:"roles_global"`
	SchoolRoles []SchoolRoleItem `json:"school_roles"`
	TeacherID   *uuid.UUID       `json:"teacher_id,omitempty"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
