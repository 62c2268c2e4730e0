package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/constants"
	"schoolhub_backend/internals/features/schools/schools/dto"
	"schoolhub_backend/internals/features/schools/schools/model"
	roleService "schoolhub_backend/internals/features/users/roles/service"
	userModel "schoolhub_backend/internals/features/users/user/model"
	userService "schoolhub_backend/internals/features/users/user/service"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/mailer"
)

type SchoolAdminService struct {
	DB     *gorm.DB
	Mailer mailer.Mailer
}

func NewSchoolAdminService(db *gorm.DB, m mailer.Mailer) *SchoolAdminService {
	if m == nil {
		m = mailer.New()
	}
	return &SchoolAdminService{DB: db, Mailer: m}
}

// CreateAdmin: user baru (password acak) + role school_administrator, lalu email sambutan.
// Kalau email sudah terdaftar, user lama cukup diberi role.
func (s *SchoolAdminService) CreateAdmin(ctx context.Context, schoolID uuid.UUID, req dto.CreateSchoolAdminRequest, by *uuid.UUID) (dto.SchoolAdminResponse, error) {
	var (
		school  model.SchoolModel
		user    userModel.UserModel
		tempPwd string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&school, "school_id = ?", schoolID).Error; err != nil {
			return errors.Wrap(helper.ErrNotFound, "sekolah tidak ditemukan")
		}

		u, pwd, err := userService.ProvisionUser(tx, userService.NewAccount{
			Email:    req.Email,
			FullName: req.FullName,
			UserName: req.UserName,
			Phone:    req.Phone,
		})
		if err != nil {
			return err
		}
		user, tempPwd = u, pwd
		return roleService.GrantRole(ctx, tx, user.ID, constants.RoleSchoolAdmin, &schoolID, by)
	})
	if err != nil {
		return dto.SchoolAdminResponse{}, err
	}

	resp := dto.SchoolAdminResponse{UserID: user.ID.String(), UserName: user.UserName, Email: user.Email}
	if tempPwd != "" {
		msg := mailer.WelcomeAdmin(configs.AppName, school.SchoolName, user.DisplayName(), user.Email, tempPwd)
		if err := s.Mailer.Send(ctx, msg); err != nil {
			log.Printf("[MAIL] ❌ gagal kirim welcome ke %s: %v", user.Email, err)
		} else {
			resp.EmailSent = true
		}
	}
	return resp, nil
}
