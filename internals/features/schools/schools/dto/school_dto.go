package dto

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"schoolhub_backend/internals/features/schools/schools/model"
)

type CreateSchoolRequest struct {
	SchoolName     string          `json:"school_name" validate:"required,min=2,max=200"`
	SchoolCode     string          `json:"school_code" validate:"required,min=2,max=30,alphanum"`
	SchoolAddress  *string         `json:"school_address" validate:"omitempty,max=500"`
	SchoolPhone    *string         `json:"school_phone" validate:"omitempty,max=30"`
	SchoolEmail    *string         `json:"school_email" validate:"omitempty,email"`
	SchoolLogoURL  *string         `json:"school_logo_url" validate:"omitempty,url"`
	SchoolStatus   string          `json:"school_status" validate:"omitempty,oneof=active inactive suspended"`
	SchoolSettings json.RawMessage `json:"school_settings"`
}

func (r CreateSchoolRequest) ToModel() model.SchoolModel {
	m := model.SchoolModel{
		SchoolName:    strings.TrimSpace(r.SchoolName),
		SchoolCode:    NormalizeCode(r.SchoolCode),
		SchoolAddress: r.SchoolAddress,
		SchoolPhone:   r.SchoolPhone,
		SchoolEmail:   r.SchoolEmail,
		SchoolLogoURL: r.SchoolLogoURL,
		SchoolStatus:  r.SchoolStatus,
	}
	if m.SchoolStatus == "" {
		m.SchoolStatus = model.SchoolStatusActive
	}
	m.SchoolSettings = datatypes.JSON([]byte("{}"))
	if len(r.SchoolSettings) > 0 {
		m.SchoolSettings = datatypes.JSON(r.SchoolSettings)
	}
	return m
}

// PATCH: hanya field yang dikirim
type UpdateSchoolRequest struct {
	SchoolName     *string         `json:"school_name" validate:"omitempty,min=2,max=200"`
	SchoolCode     *string         `json:"school_code" validate:"omitempty,min=2,max=30,alphanum"`
	SchoolAddress  *string         `json:"school_address" validate:"omitempty,max=500"`
	SchoolPhone    *string         `json:"school_phone" validate:"omitempty,max=30"`
	SchoolEmail    *string         `json:"school_email" validate:"omitempty,email"`
	SchoolLogoURL  *string         `json:"school_logo_url" validate:"omitempty,url"`
	SchoolStatus   *string         `json:"school_status" validate:"omitempty,oneof=active inactive suspended"`
	SchoolSettings json.RawMessage `json:"school_settings"`
}

func (r UpdateSchoolRequest) Updates() map[string]any {
	up := map[string]any{}
	if r.SchoolName != nil {
		up["school_name"] = strings.TrimSpace(*r.SchoolName)
	}
	if r.SchoolCode != nil {
		up["school_code"] = NormalizeCode(*r.SchoolCode)
	}
	if r.SchoolAddress != nil {
		up["school_address"] = *r.SchoolAddress
	}
	if r.SchoolPhone != nil {
		up["school_phone"] = *r.SchoolPhone
	}
	if r.SchoolEmail != nil {
		up["school_email"] = *r.SchoolEmail
	}
	if r.SchoolLogoURL != nil {
		up["school_logo_url"] = *r.SchoolLogoURL
	}
	if r.SchoolStatus != nil {
		up["school_status"] = *r.SchoolStatus
	}
	if len(r.SchoolSettings) > 0 {
		up["school_settings"] = datatypes.JSON(r.SchoolSettings)
	}
	return up
}

func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

type CreateSchoolAdminRequest struct {
	FullName string  `json:"full_name" validate:"required,min=2,max=150"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	UserName string  `json:"user_name" validate:"omitempty,min=3,max=50"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
}

type SchoolAdminResponse struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Email     string `json:"email"`
	EmailSent bool   `json:"email_sent"`
}
