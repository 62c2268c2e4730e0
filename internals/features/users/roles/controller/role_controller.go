package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "schoolhub_backend/internals/features/users/roles/dto"
	model "schoolhub_backend/internals/features/users/roles/model"
	roleService "schoolhub_backend/internals/features/users/roles/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type RoleController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewRoleController(db *gorm.DB, v *validator.Validate) *RoleController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &RoleController{DB: db, Validate: v}
}

func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

/* ============================ ROLES (owner) ============================ */

// GET /api/o/roles
func (ctl *RoleController) List(c *fiber.Ctx) error {
	q := ctl.DB.WithContext(reqCtx(c)).Model(&model.RoleModel{})
	if scope := strings.TrimSpace(c.Query("scope")); scope != "" {
		q = q.Where("role_scope = ?", scope)
	}
	var rows []model.RoleModel
	if err := q.Order("role_is_system DESC, role_slug ASC").Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil role")
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /api/o/roles
func (ctl *RoleController) Create(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m := req.ToModel()
	if err := ctl.DB.WithContext(reqCtx(c)).Create(&m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Slug role sudah dipakai")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat role")
	}
	return helper.JsonCreated(c, "Role dibuat", m)
}

// PATCH /api/o/roles/:id
func (ctl *RoleController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var m model.RoleModel
	if err := ctl.DB.WithContext(reqCtx(c)).First(&m, "role_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Role tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil role")
	}
	req.ApplyPatch(&m)
	if err := ctl.DB.WithContext(reqCtx(c)).Save(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan role")
	}
	return helper.JsonUpdated(c, "Role diperbarui", m)
}

// DELETE /api/o/roles/:id (role system tidak bisa dihapus)
func (ctl *RoleController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var m model.RoleModel
	if err := ctl.DB.WithContext(reqCtx(c)).First(&m, "role_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Role tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil role")
	}
	if m.RoleIsSystem {
		return helper.JsonError(c, fiber.StatusForbidden, "Role system tidak bisa dihapus")
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Delete(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus role")
	}
	return helper.JsonDeleted(c, "Role dihapus", fiber.Map{"role_id": m.RoleID})
}

/* ============================ USER ROLES (school admin) ============================ */

// GET /api/a/:school_id/user-roles
func (ctl *RoleController) ListSchoolUserRoles(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	q := ctl.DB.WithContext(reqCtx(c)).Table("user_roles ur").
		Select("ur.user_role_id, ur.user_role_user_id, u.user_name, u.email, r.role_slug, r.role_name").
		Joins("JOIN users u ON u.id = ur.user_role_user_id AND u.deleted_at IS NULL").
		Joins("JOIN roles r ON r.role_id = ur.user_role_role_id").
		Where("ur.user_role_school_id = ? AND ur.user_role_deleted_at IS NULL", schoolID)
	if slug := strings.TrimSpace(c.Query("role")); slug != "" {
		q = q.Where("r.role_slug = ?", slug)
	}
	var rows []dto.UserRoleItem
	if err := q.Order("u.user_name ASC").Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil user role")
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /api/a/:school_id/user-roles
func (ctl *RoleController) AssignUserRole(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	actor, _ := helperAuth.GetUserIDFromToken(c)

	var req dto.AssignUserRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var role model.RoleModel
	if err := ctl.DB.WithContext(reqCtx(c)).Where("role_slug = ?", req.RoleSlug).First(&role).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Role tidak ditemukan")
	}
	if role.RoleScope == model.RoleScopeSystem {
		return helper.JsonError(c, fiber.StatusForbidden, "Role system hanya bisa diberikan owner")
	}

	var actorPtr *uuid.UUID
	if actor != uuid.Nil {
		actorPtr = &actor
	}
	if err := roleService.GrantRole(reqCtx(c), ctl.DB, req.UserID, req.RoleSlug, &schoolID, actorPtr); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Role diberikan", fiber.Map{"user_id": req.UserID, "role_slug": req.RoleSlug})
}

// DELETE /api/a/:school_id/user-roles/:id
func (ctl *RoleController) RevokeUserRole(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	res := ctl.DB.WithContext(reqCtx(c)).
		Where("user_role_id = ? AND user_role_school_id = ?", id, schoolID).
		Delete(&model.UserRoleModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mencabut role")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "User role tidak ditemukan")
	}
	return helper.JsonDeleted(c, "Role dicabut", fiber.Map{"user_role_id": id})
}
