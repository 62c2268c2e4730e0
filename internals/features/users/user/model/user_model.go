package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel merepresentasikan tabel users
type UserModel struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserName string    `gorm:"column:user_name;size:50;not null;uniqueIndex:uq_users_user_name,where:deleted_at IS NULL" json:"user_name"`
	FullName *string   `gorm:"column:full_name;size:150" json:"full_name,omitempty"`
	Email    string    `gorm:"column:email;size:255;not null;uniqueIndex:uq_users_email,where:deleted_at IS NULL" json:"email"`
	Phone    *string   `gorm:"column:phone;size:30" json:"phone,omitempty"`
	Password *string   `gorm:"column:password" json:"-"`
	GoogleID *string   `gorm:"column:google_id;size:255;uniqueIndex" json:"google_id,omitempty"`

	IsActive    bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `gorm:"column:last_login_at;type:timestamptz" json:"last_login_at,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (UserModel) TableName() string { return "users" }

// DisplayName: full_name kalau ada, selain itu user_name.
func (u UserModel) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.UserName
}
