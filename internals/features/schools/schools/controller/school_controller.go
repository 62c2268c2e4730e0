package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/schools/dto"
	"schoolhub_backend/internals/features/schools/schools/model"
	"schoolhub_backend/internals/features/schools/schools/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type SchoolController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Admins   *service.SchoolAdminService
}

func NewSchoolController(db *gorm.DB, v *validator.Validate, admins *service.SchoolAdminService) *SchoolController {
	if v == nil {
		v = helper.NewValidator()
	}
	if admins == nil {
		admins = service.NewSchoolAdminService(db, nil)
	}
	return &SchoolController{DB: db, Validate: v, Admins: admins}
}

func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

var schoolSortable = map[string]string{
	"name":       "school_name",
	"code":       "school_code",
	"created_at": "school_created_at",
}

// GET /api/o/schools
func (ctl *SchoolController) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)

	q := ctl.DB.WithContext(reqCtx(c)).Model(&model.SchoolModel{})
	if s := strings.TrimSpace(c.Query("search")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(school_name) LIKE ? OR LOWER(school_code) LIKE ?", like, like)
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("school_status = ?", st)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung sekolah")
	}
	var rows []model.SchoolModel
	if err := q.Order(p.OrderClause(schoolSortable, "created_at")).
		Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil sekolah")
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

func (ctl *SchoolController) load(c *fiber.Ctx) (model.SchoolModel, error) {
	var m model.SchoolModel
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return m, fiber.NewError(fiber.StatusBadRequest, "id tidak valid")
	}
	if err := ctl.DB.WithContext(reqCtx(c)).First(&m, "school_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return m, fiber.NewError(fiber.StatusNotFound, "Sekolah tidak ditemukan")
		}
		return m, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil sekolah")
	}
	return m, nil
}

// GET /api/o/schools/:id
func (ctl *SchoolController) Get(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "OK", m)
}

// GET /api/u/schools/current : sekolah aktif milik user
func (ctl *SchoolController) Current(c *fiber.Ctx) error {
	sid, err := helperAuth.ResolveSchoolID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Sekolah aktif belum dipilih")
	}
	if !helperAuth.IsOwnerGlobal(c) && len(helperAuth.RolesInSchool(c, sid)) == 0 {
		return helper.JsonError(c, fiber.StatusForbidden, "Bukan anggota sekolah ini")
	}
	var m model.SchoolModel
	if err := ctl.DB.WithContext(reqCtx(c)).First(&m, "school_id = ?", sid).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Sekolah tidak ditemukan")
	}
	return helper.JsonOK(c, "OK", m)
}

// POST /api/o/schools
func (ctl *SchoolController) Create(c *fiber.Ctx) error {
	var req dto.CreateSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m := req.ToModel()
	if err := ctl.DB.WithContext(reqCtx(c)).Create(&m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Kode sekolah sudah dipakai")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat sekolah")
	}
	return helper.JsonCreated(c, "Sekolah dibuat", m)
}

// PATCH /api/o/schools/:id
func (ctl *SchoolController) Update(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	var req dto.UpdateSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	up := req.Updates()
	if len(up) == 0 {
		return helper.JsonOK(c, "Tidak ada perubahan", m)
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Model(&m).Updates(up).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Kode sekolah sudah dipakai")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui sekolah")
	}
	_ = ctl.DB.WithContext(reqCtx(c)).First(&m, "school_id = ?", m.SchoolID).Error
	return helper.JsonUpdated(c, "Sekolah diperbarui", m)
}

// DELETE /api/o/schools/:id (soft)
func (ctl *SchoolController) Delete(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Delete(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus sekolah")
	}
	return helper.JsonDeleted(c, "Sekolah dihapus", fiber.Map{"school_id": m.SchoolID})
}

// POST /api/o/schools/:id/admins
func (ctl *SchoolController) CreateAdmin(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var req dto.CreateSchoolAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	var by *uuid.UUID
	if uid, err := helperAuth.GetUserIDFromToken(c); err == nil {
		by = &uid
	}
	resp, err := ctl.Admins.CreateAdmin(reqCtx(c), id, req, by)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Admin sekolah dibuat", resp)
}
