package controller

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/academics/classes/dto"
	"schoolhub_backend/internals/features/school/academics/classes/model"
	"schoolhub_backend/internals/features/school/academics/classes/service"
	yearService "schoolhub_backend/internals/features/school/academics/school_years/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type ClassController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewClassController(db *gorm.DB, v *validator.Validate) *ClassController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &ClassController{DB: db, Validate: v}
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

func queryUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
	}
	return &id, nil
}

// GET /classes?school_year_id=&grade_id=&status=
func (ctl *ClassController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	q := ctl.DB.WithContext(reqCtx(c)).Table("classes c").
		Select(`c.class_id, c.class_name, c.class_section, c.class_school_year_id, c.class_grade_id,
			g.grade_name, g.grade_order, c.class_series_id, c.class_classroom_id,
			c.class_max_students, c.class_status,
			(SELECT COUNT(*) FROM enrollments e
			  WHERE e.enrollment_class_id = c.class_id AND e.enrollment_status = 'confirmed') AS enrolled_count`).
		Joins("JOIN grades g ON g.grade_id = c.class_grade_id").
		Where("c.class_school_id = ? AND c.class_deleted_at IS NULL", schoolID)

	if yid, err := queryUUID(c, "school_year_id"); err != nil {
		return err
	} else if yid != nil {
		q = q.Where("c.class_school_year_id = ?", *yid)
	}
	if gid, err := queryUUID(c, "grade_id"); err != nil {
		return err
	} else if gid != nil {
		q = q.Where("c.class_grade_id = ?", *gid)
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("c.class_status = ?", st)
	}

	var rows []dto.ClassListItem
	if err := q.Order("g.grade_order ASC, c.class_section ASC").Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil kelas")
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /classes/:id (beserta mapel & jumlah siswa)
func (ctl *ClassController) Get(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	m, err := service.LoadClass(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	subjects, err := ctl.classSubjects(c, schoolID, id)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil mapel kelas")
	}
	enrolled, err := service.ConfirmedCount(reqCtx(c), ctl.DB, id)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung siswa")
	}
	return helper.JsonOK(c, "OK", fiber.Map{
		"class":          m,
		"subjects":       subjects,
		"enrolled_count": enrolled,
	})
}

func (ctl *ClassController) apply(c *fiber.Ctx, schoolID uuid.UUID, req dto.ClassRequest, m *model.ClassModel) error {
	ctx := reqCtx(c)
	if _, err := yearService.LoadYear(ctx, ctl.DB, schoolID, req.SchoolYearID); err != nil {
		return err
	}
	name, err := service.ResolveName(ctx, ctl.DB, req.GradeID, req.SeriesID, req.CleanSection())
	if err != nil {
		return err
	}
	m.ClassSchoolID = schoolID
	m.ClassSchoolYearID = req.SchoolYearID
	m.ClassGradeID = req.GradeID
	m.ClassSeriesID = req.SeriesID
	m.ClassSection = req.CleanSection()
	m.ClassName = name
	m.ClassClassroomID = req.ClassroomID
	m.ClassHomeroomTeacherID = req.HomeroomTeacherID
	m.ClassMaxStudents = req.MaxOrDefault()
	m.ClassStatus = req.Status
	if m.ClassStatus == "" {
		m.ClassStatus = model.ClassStatusActive
	}
	return nil
}

// POST /classes
func (ctl *ClassController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	var m model.ClassModel
	if err := ctl.apply(c, schoolID, req, &m); err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Create(&m).Error; err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Kelas dibuat", m)
}

// PUT /classes/:id
func (ctl *ClassController) Update(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m, err := service.LoadClass(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := ctl.apply(c, schoolID, req, &m); err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Save(&m).Error; err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Kelas diperbarui", m)
}

// DELETE /classes/:id : 400 kalau masih ada siswa terkonfirmasi
func (ctl *ClassController) Delete(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	m, err := service.LoadClass(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	n, err := service.ConfirmedCount(reqCtx(c), ctl.DB, id)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung siswa")
	}
	if n > 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Kelas masih memiliki siswa terdaftar")
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Delete(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus kelas")
	}
	return helper.JsonDeleted(c, "Kelas dihapus", fiber.Map{"class_id": id})
}
