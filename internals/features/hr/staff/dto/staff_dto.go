package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	teacherDTO "schoolhub_backend/internals/features/hr/teachers/dto"
)

const positions = "academic_coordinator discipline_officer accountant cashier registrar other"

type CreateStaffRequest struct {
	UserID     *uuid.UUID `json:"user_id" validate:"required_without=Email"`
	Email      string     `json:"email" validate:"required_without=UserID,omitempty,email,max=255"`
	FullName   string     `json:"full_name" validate:"required_with=Email,omitempty,max=150"`
	Phone      *string    `json:"phone" validate:"omitempty,max=30"`
	Position   string     `json:"position" validate:"required,oneof=academic_coordinator discipline_officer accountant cashier registrar other"`
	Department *string    `json:"department" validate:"omitempty,max=100"`
	HireDate   *string    `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
	Status     string     `json:"status" validate:"omitempty,oneof=active inactive on_leave"`
}

func (r CreateStaffRequest) HireTime() *time.Time { return teacherDTO.ParseHireDate(r.HireDate) }

type UpdateStaffRequest struct {
	Position   *string `json:"position" validate:"omitempty,oneof=academic_coordinator discipline_officer accountant cashier registrar other"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	HireDate   *string `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
	Status     *string `json:"status" validate:"omitempty,oneof=active inactive on_leave"`
}

func (r UpdateStaffRequest) Updates() map[string]any {
	up := map[string]any{}
	if r.Position != nil {
		up["staff_position"] = *r.Position
	}
	if r.Department != nil {
		up["staff_department"] = strings.TrimSpace(*r.Department)
	}
	if d := teacherDTO.ParseHireDate(r.HireDate); d != nil {
		up["staff_hire_date"] = *d
	}
	if r.Status != nil {
		up["staff_status"] = *r.Status
	}
	return up
}

// ValidPosition dipakai filter list.
func ValidPosition(p string) bool {
	for _, s := range strings.Fields(positions) {
		if s == p {
			return true
		}
	}
	return false
}

type StaffListItem struct {
	StaffID         uuid.UUID  `json:"staff_id"`
	StaffUserID     uuid.UUID  `json:"staff_user_id"`
	FullName        *string    `json:"full_name,omitempty"`
	UserName        string     `json:"user_name"`
	Email           string     `json:"email"`
	Phone           *string    `json:"phone,omitempty"`
	StaffPosition   string     `json:"staff_position"`
	StaffDepartment *string    `json:"staff_department,omitempty"`
	StaffHireDate   *time.Time `json:"staff_hire_date,omitempty"`
	StaffStatus     string     `json:"staff_status"`
}

type CreateStaffResponse struct {
	StaffID   uuid.UUID `json:"staff_id"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	RoleSlug  string    `json:"role_slug,omitempty"`
	NewUser   bool      `json:"new_user"`
	EmailSent bool      `json:"email_sent"`
}
