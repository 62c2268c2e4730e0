package controller

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/students/enrollments/dto"
	"schoolhub_backend/internals/features/school/students/enrollments/model"
	"schoolhub_backend/internals/features/school/students/enrollments/service"
	yearService "schoolhub_backend/internals/features/school/academics/school_years/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type EnrollmentController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewEnrollmentController(db *gorm.DB, v *validator.Validate) *EnrollmentController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &EnrollmentController{DB: db, Validate: v}
}

func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

func actor(c *fiber.Ctx) *uuid.UUID {
	if uid, err := helperAuth.GetUserIDFromToken(c); err == nil {
		return &uid
	}
	return nil
}

func (ctl *EnrollmentController) load(c *fiber.Ctx) (model.EnrollmentModel, error) {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return model.EnrollmentModel{}, err
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return model.EnrollmentModel{}, fiber.NewError(fiber.StatusBadRequest, "enrollment_id tidak valid")
	}
	m, err := service.LoadEnrollment(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return m, fiber.NewError(helper.StatusFor(err), helper.UserMessage(err))
	}
	return m, nil
}

// GET /enrollments?school_year_id=&class_id=&status=&q=
func (ctl *EnrollmentController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "roll", "asc", helper.AdminOpts)

	q := ctl.DB.WithContext(reqCtx(c)).Table("enrollments e").
		Joins("JOIN students s ON s.student_id = e.enrollment_student_id").
		Joins("JOIN classes c ON c.class_id = e.enrollment_class_id").
		Where("e.enrollment_school_id = ?", schoolID)

	for key, col := range map[string]string{
		"school_year_id": "e.enrollment_school_year_id",
		"class_id":       "e.enrollment_class_id",
		"student_id":     "e.enrollment_student_id",
	} {
		if raw := strings.TrimSpace(c.Query(key)); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, key+" tidak valid")
			}
			q = q.Where(col+" = ?", id)
		}
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("e.enrollment_status = ?", st)
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(s.student_first_name) LIKE ? OR LOWER(s.student_last_name) LIKE ? OR LOWER(s.student_matricule) LIKE ?",
			like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung pendaftaran")
	}
	rows := []dto.EnrollmentListItem{}
	if err := q.Select(`e.enrollment_id, e.enrollment_status, e.enrollment_roll_number, e.enrollment_date,
			e.enrollment_previous_enrollment_id AS enrollment_previous_id,
			s.student_id, s.student_matricule, s.student_first_name, s.student_last_name, s.student_gender,
			c.class_id, c.class_name, e.enrollment_school_year_id AS school_year_id`).
		Order(p.OrderClause(map[string]string{
			"roll":      "e.enrollment_roll_number",
			"last_name": "s.student_last_name",
			"date":      "e.enrollment_date",
			"class":     "c.class_name",
		}, "roll")).
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil pendaftaran")
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /enrollments/:id
func (ctl *EnrollmentController) Get(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "OK", m)
}

// POST /enrollments
func (ctl *EnrollmentController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.CreateEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m, err := service.Create(reqCtx(c), ctl.DB, schoolID, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Pendaftaran dibuat", m)
}

// POST /enrollments/:id/confirm
func (ctl *EnrollmentController) Confirm(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	if err := service.Confirm(reqCtx(c), ctl.DB, &m, actor(c)); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Pendaftaran dikonfirmasi", m)
}

// POST /enrollments/:id/cancel
func (ctl *EnrollmentController) Cancel(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	var req dto.ReasonRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
		}
		if err := ctl.Validate.Struct(req); err != nil {
			return helper.ValidationError(c, err)
		}
	}
	if err := service.Cancel(reqCtx(c), ctl.DB, &m, actor(c), req.Reason); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Pendaftaran dibatalkan", m)
}

// DELETE /enrollments/:id : hanya pending
func (ctl *EnrollmentController) Delete(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	if m.EnrollmentStatus != model.EnrollmentPending {
		return helper.JsonError(c, fiber.StatusBadRequest, "Hanya pendaftaran pending yang bisa dihapus, gunakan cancel")
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Delete(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus pendaftaran")
	}
	return helper.JsonDeleted(c, "Pendaftaran dihapus", fiber.Map{"enrollment_id": m.EnrollmentID})
}

// POST /enrollments/:id/transfer
func (ctl *EnrollmentController) Transfer(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "enrollment_id tidak valid")
	}
	var req dto.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	next, err := service.Transfer(reqCtx(c), ctl.DB, schoolID, id, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Siswa dipindahkan", next)
}

// POST /enrollments/re-enroll
func (ctl *EnrollmentController) ReEnroll(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.ReEnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if req.FromYearID == req.ToYearID {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tahun asal dan tujuan harus berbeda")
	}
	res, err := service.BulkReEnroll(reqCtx(c), ctl.DB, schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Daftar ulang selesai", res)
}

// GET /enrollments/stats?school_year_id= (default tahun aktif)
func (ctl *EnrollmentController) Stats(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var yearID uuid.UUID
	if raw := strings.TrimSpace(c.Query("school_year_id")); raw != "" {
		if yearID, err = uuid.Parse(raw); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "school_year_id tidak valid")
		}
	} else {
		y, err := yearService.ActiveYear(reqCtx(c), ctl.DB, schoolID)
		if err != nil {
			return helper.FromServiceError(c, err)
		}
		yearID = y.SchoolYearID
	}
	st, err := service.Stats(reqCtx(c), ctl.DB, schoolID, yearID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung statistik pendaftaran")
	}
	return helper.JsonOK(c, "OK", st)
}
