package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/constants"
	"schoolhub_backend/internals/features/hr/staff/dto"
	"schoolhub_backend/internals/features/hr/staff/model"
	roleService "schoolhub_backend/internals/features/users/roles/service"
	userService "schoolhub_backend/internals/features/users/user/service"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/mailer"
)

// RoleForPosition: jabatan → role sekolah. "other" tidak dapat role apa pun.
func RoleForPosition(position string) string {
	switch position {
	case model.PositionAcademicCoordinator:
		return constants.RoleAcademicCoordinator
	case model.PositionDisciplineOfficer:
		return constants.RoleDisciplineOfficer
	case model.PositionAccountant:
		return constants.RoleAccountant
	case model.PositionCashier:
		return constants.RoleCashier
	case model.PositionRegistrar:
		return constants.RoleRegistrar
	}
	return ""
}

type StaffService struct {
	DB     *gorm.DB
	Mailer mailer.Mailer
}

func NewStaffService(db *gorm.DB, m mailer.Mailer) *StaffService {
	if m == nil {
		m = mailer.New()
	}
	return &StaffService{DB: db, Mailer: m}
}

func LoadStaff(ctx context.Context, db *gorm.DB, schoolID, staffID uuid.UUID) (model.StaffModel, error) {
	var m model.StaffModel
	err := db.WithContext(ctx).
		Where("staff_id = ? AND staff_school_id = ?", staffID, schoolID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "staf tidak ditemukan")
	}
	return m, err
}

func (s *StaffService) Create(ctx context.Context, schoolID uuid.UUID, req dto.CreateStaffRequest, by *uuid.UUID) (dto.CreateStaffResponse, error) {
	var (
		resp       dto.CreateStaffResponse
		tempPwd    string
		schoolName string
		fullName   string
	)
	resp.RoleSlug = RoleForPosition(req.Position)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("schools").Select("school_name").
			Where("school_id = ? AND school_deleted_at IS NULL", schoolID).
			Scan(&schoolName).Error; err != nil {
			return err
		}

		var userID uuid.UUID
		if req.UserID != nil {
			var n int64
			if err := tx.Table("users").Where("id = ? AND deleted_at IS NULL", *req.UserID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return errors.Wrap(helper.ErrNotFound, "user tidak ditemukan")
			}
			userID = *req.UserID
		} else {
			u, pwd, err := userService.ProvisionUser(tx, userService.NewAccount{
				Email:    req.Email,
				FullName: req.FullName,
				Phone:    req.Phone,
			})
			if err != nil {
				return err
			}
			userID, tempPwd, fullName = u.ID, pwd, u.DisplayName()
			resp.Email = u.Email
		}

		m := model.StaffModel{
			StaffSchoolID:   schoolID,
			StaffUserID:     userID,
			StaffPosition:   req.Position,
			StaffDepartment: req.Department,
			StaffHireDate:   req.HireTime(),
			StaffStatus:     req.Status,
		}
		if m.StaffStatus == "" {
			m.StaffStatus = "active"
		}
		if err := tx.Create(&m).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return errors.Wrap(helper.ErrConflict, "user sudah terdaftar sebagai staf di sekolah ini")
			}
			return err
		}
		if resp.RoleSlug != "" {
			if err := roleService.GrantRole(ctx, tx, userID, resp.RoleSlug, &schoolID, by); err != nil {
				return err
			}
		}
		resp.StaffID, resp.UserID = m.StaffID, userID
		return nil
	})
	if err != nil {
		return resp, err
	}

	if tempPwd != "" {
		resp.NewUser = true
		msg := mailer.WelcomeStaff(configs.AppName, schoolName, fullName, resp.Email, tempPwd, "personnel")
		if err := s.Mailer.Send(ctx, msg); err != nil {
			log.Printf("[MAIL] ❌ gagal kirim welcome staf ke %s: %v", resp.Email, err)
		} else {
			resp.EmailSent = true
		}
	}
	return resp, nil
}

// ChangePosition: ganti jabatan sekaligus pindahkan role lama → role baru.
func ChangePosition(ctx context.Context, db *gorm.DB, m model.StaffModel, up map[string]any, by *uuid.UUID) error {
	newPos, ok := up["staff_position"].(string)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&m).Updates(up).Error; err != nil {
			return err
		}
		if !ok || newPos == m.StaffPosition {
			return nil
		}
		if old := RoleForPosition(m.StaffPosition); old != "" {
			if err := roleService.RevokeRole(ctx, tx, m.StaffUserID, old, &m.StaffSchoolID); err != nil {
				return err
			}
		}
		if nr := RoleForPosition(newPos); nr != "" {
			return roleService.GrantRole(ctx, tx, m.StaffUserID, nr, &m.StaffSchoolID, by)
		}
		return nil
	})
}
