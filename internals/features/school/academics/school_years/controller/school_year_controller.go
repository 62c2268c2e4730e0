package controller

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/academics/school_years/dto"
	"schoolhub_backend/internals/features/school/academics/school_years/model"
	"schoolhub_backend/internals/features/school/academics/school_years/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type SchoolYearController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewSchoolYearController(db *gorm.DB, v *validator.Validate) *SchoolYearController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &SchoolYearController{DB: db, Validate: v}
}

func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

func paramUUID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(key)))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
	}
	return id, nil
}

/* ============================ SCHOOL YEARS ============================ */

// GET /school-years
func (ctl *SchoolYearController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var rows []model.SchoolYearModel
	if err := ctl.DB.WithContext(reqCtx(c)).
		Where("school_year_school_id = ?", schoolID).
		Order("school_year_start_date DESC").
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil tahun ajaran")
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /school-years/active
func (ctl *SchoolYearController) Active(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	y, err := service.ActiveYear(reqCtx(c), ctl.DB, schoolID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", y)
}

// GET /school-years/:id (beserta term)
func (ctl *SchoolYearController) Get(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	y, err := service.LoadYear(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var terms []model.TermModel
	if err := ctl.DB.WithContext(reqCtx(c)).
		Where("term_school_year_id = ?", y.SchoolYearID).
		Order("term_order ASC").Find(&terms).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil term")
	}
	return helper.JsonOK(c, "OK", fiber.Map{"school_year": y, "terms": terms})
}

// POST /school-years
func (ctl *SchoolYearController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.SchoolYearRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	start, end := req.Dates()
	if err := service.CheckRange(start, end); err != nil {
		return helper.FromServiceError(c, err)
	}
	m := model.SchoolYearModel{
		SchoolYearSchoolID:  schoolID,
		SchoolYearName:      req.CleanName(),
		SchoolYearStartDate: start,
		SchoolYearEndDate:   end,
		SchoolYearIsActive:  req.IsActive,
	}
	if err := service.Save(reqCtx(c), ctl.DB, &m); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Tahun ajaran dibuat", m)
}

// PUT /school-years/:id
func (ctl *SchoolYearController) Update(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SchoolYearRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m, err := service.LoadYear(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	start, end := req.Dates()
	if err := service.CheckRange(start, end); err != nil {
		return helper.FromServiceError(c, err)
	}
	m.SchoolYearName = req.CleanName()
	m.SchoolYearStartDate, m.SchoolYearEndDate = start, end
	m.SchoolYearIsActive = req.IsActive
	if err := service.Save(reqCtx(c), ctl.DB, &m); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Tahun ajaran diperbarui", m)
}

// POST /school-years/:id/activate
func (ctl *SchoolYearController) Activate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := service.SetActive(reqCtx(c), ctl.DB, schoolID, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Tahun ajaran diaktifkan", fiber.Map{"school_year_id": id})
}

// DELETE /school-years/:id (ditolak kalau masih ada kelas)
func (ctl *SchoolYearController) Delete(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	db := ctl.DB.WithContext(reqCtx(c))
	var n int64
	if err := db.Table("classes").
		Where("class_school_year_id = ? AND class_deleted_at IS NULL", id).
		Count(&n).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa kelas")
	}
	if n > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "Tahun ajaran masih memiliki kelas")
	}
	res := db.Where("school_year_school_id = ? AND school_year_id = ?", schoolID, id).Delete(&model.SchoolYearModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus tahun ajaran")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Tahun ajaran tidak ditemukan")
	}
	return helper.JsonDeleted(c, "Tahun ajaran dihapus", fiber.Map{"school_year_id": id})
}

/* ============================ TERMS ============================ */

// GET /terms?school_year_id=
func (ctl *SchoolYearController) ListTerms(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	q := ctl.DB.WithContext(reqCtx(c)).Where("term_school_id = ?", schoolID)
	if raw := strings.TrimSpace(c.Query("school_year_id")); raw != "" {
		yid, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "school_year_id tidak valid")
		}
		q = q.Where("term_school_year_id = ?", yid)
	}
	var rows []model.TermModel
	if err := q.Order("term_start_date ASC").Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil term")
	}
	return helper.JsonOK(c, "OK", rows)
}

func (ctl *SchoolYearController) termFromRequest(c *fiber.Ctx, schoolID uuid.UUID, req dto.TermRequest, m *model.TermModel) error {
	year, err := service.LoadYear(reqCtx(c), ctl.DB, schoolID, req.SchoolYearID)
	if err != nil {
		return err
	}
	start, end := req.Dates()
	if err := service.CheckTermWithinYear(year, start, end); err != nil {
		return err
	}
	m.TermSchoolID = schoolID
	m.TermSchoolYearID = year.SchoolYearID
	m.TermName = strings.TrimSpace(req.Name)
	m.TermType = req.Type
	m.TermOrder = req.Order
	m.TermStartDate, m.TermEndDate = start, end
	return nil
}

// POST /terms
func (ctl *SchoolYearController) CreateTerm(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.TermRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	var m model.TermModel
	if err := ctl.termFromRequest(c, schoolID, req, &m); err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Create(&m).Error; err != nil {
		return helper.FromServiceError(c, errors.Wrap(err, "gagal membuat term"))
	}
	return helper.JsonCreated(c, "Term dibuat", m)
}

// PUT /terms/:id
func (ctl *SchoolYearController) UpdateTerm(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TermRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m, err := service.LoadTerm(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := ctl.termFromRequest(c, schoolID, req, &m); err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Save(&m).Error; err != nil {
		return helper.FromServiceError(c, errors.Wrap(err, "gagal memperbarui term"))
	}
	return helper.JsonUpdated(c, "Term diperbarui", m)
}

// DELETE /terms/:id
func (ctl *SchoolYearController) DeleteTerm(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	res := ctl.DB.WithContext(reqCtx(c)).
		Where("term_school_id = ? AND term_id = ?", schoolID, id).
		Delete(&model.TermModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus term")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Term tidak ditemukan")
	}
	return helper.JsonDeleted(c, "Term dihapus", fiber.Map{"term_id": id})
}
