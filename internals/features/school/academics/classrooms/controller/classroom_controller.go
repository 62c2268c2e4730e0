package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/academics/classrooms/dto"
	"schoolhub_backend/internals/features/school/academics/classrooms/model"
	"schoolhub_backend/internals/features/school/academics/classrooms/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type ClassroomController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewClassroomController(db *gorm.DB, v *validator.Validate) *ClassroomController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &ClassroomController{DB: db, Validate: v}
}

func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

var classroomSortable = map[string]string{
	"name":     "classroom_name",
	"code":     "classroom_code",
	"capacity": "classroom_capacity",
	"created":  "classroom_created_at",
}

func (ctl *ClassroomController) load(c *fiber.Ctx) (model.ClassroomModel, error) {
	var m model.ClassroomModel
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return m, err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return m, fiber.NewError(fiber.StatusBadRequest, "id tidak valid")
	}
	err = ctl.DB.WithContext(reqCtx(c)).
		Where("classroom_school_id = ? AND classroom_id = ?", schoolID, id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, fiber.NewError(fiber.StatusNotFound, "Ruang kelas tidak ditemukan")
	}
	return m, err
}

// GET /classrooms  (getClassrooms)
func (ctl *ClassroomController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "name", "asc", helper.DefaultOpts)

	q := ctl.DB.WithContext(reqCtx(c)).Model(&model.ClassroomModel{}).
		Where("classroom_school_id = ?", schoolID)
	if t := strings.TrimSpace(c.Query("type")); t != "" {
		q = q.Where("classroom_type = ?", t)
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("classroom_status = ?", st)
	}
	if s := strings.TrimSpace(c.Query("search")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(classroom_name) LIKE ? OR LOWER(classroom_code) LIKE ? OR LOWER(COALESCE(classroom_building,'')) LIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung ruang kelas")
	}
	var rows []model.ClassroomModel
	if err := q.Order(p.OrderClause(classroomSortable, "name")).
		Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil ruang kelas")
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /classrooms/:id  (beserta kelas aktif yang memakai)
func (ctl *ClassroomController) Get(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	assigned, err := service.ActiveAssignments(reqCtx(c), ctl.DB, m.ClassroomSchoolID, nil, &m.ClassroomID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil kelas terkait")
	}
	list := assigned[m.ClassroomID]
	if list == nil {
		list = []dto.AssignedClass{}
	}
	return helper.JsonOK(c, "OK", dto.ClassroomDetail{ClassroomModel: m, AssignedClasses: list})
}

// POST /classrooms
func (ctl *ClassroomController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.ClassroomRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m := model.ClassroomModel{ClassroomSchoolID: schoolID}
	req.Apply(&m)
	if err := ctl.DB.WithContext(reqCtx(c)).Create(&m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Kode ruang kelas sudah dipakai")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat ruang kelas")
	}
	return helper.JsonCreated(c, "Ruang kelas dibuat", m)
}

// PUT /classrooms/:id
func (ctl *ClassroomController) Update(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	var req dto.ClassroomRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	req.Apply(&m)
	if err := ctl.DB.WithContext(reqCtx(c)).Save(&m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Kode ruang kelas sudah dipakai")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui ruang kelas")
	}
	return helper.JsonUpdated(c, "Ruang kelas diperbarui", m)
}

// DELETE /classrooms/:id  (deleteClassroom)
func (ctl *ClassroomController) Delete(c *fiber.Ctx) error {
	m, err := ctl.load(c)
	if err != nil {
		return err
	}
	assigned, err := service.ActiveAssignments(reqCtx(c), ctl.DB, m.ClassroomSchoolID, nil, &m.ClassroomID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa kelas terkait")
	}
	if list := assigned[m.ClassroomID]; len(list) > 0 {
		return helper.JsonErrorData(c, fiber.StatusConflict, "Ruang kelas masih dipakai kelas aktif", list)
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Delete(&m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus ruang kelas")
	}
	return helper.JsonDeleted(c, "Ruang kelas dihapus", fiber.Map{"classroom_id": m.ClassroomID})
}

// GET /classrooms/availability?school_year_id=  (checkClassroomAvailability)
func (ctl *ClassroomController) Availability(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	yearID, err := uuid.Parse(strings.TrimSpace(c.Query("school_year_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "school_year_id wajib diisi")
	}
	var rooms []model.ClassroomModel
	if err := ctl.DB.WithContext(reqCtx(c)).
		Where("classroom_school_id = ?", schoolID).
		Order("classroom_name ASC").Find(&rooms).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil ruang kelas")
	}
	assigned, err := service.ActiveAssignments(reqCtx(c), ctl.DB, schoolID, &yearID, nil)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil kelas terkait")
	}
	return helper.JsonOK(c, "OK", service.BuildAvailability(rooms, assigned))
}
