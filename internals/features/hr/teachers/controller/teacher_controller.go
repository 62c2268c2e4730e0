package controller

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/hr/teachers/dto"
	"schoolhub_backend/internals/features/hr/teachers/model"
	"schoolhub_backend/internals/features/hr/teachers/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type TeacherController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Svc      *service.TeacherService
}

func NewTeacherController(db *gorm.DB, v *validator.Validate) *TeacherController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &TeacherController{DB: db, Validate: v, Svc: service.NewTeacherService(db, nil)}
}

func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

func (ctl *TeacherController) scope(c *fiber.Ctx) (uuid.UUID, model.TeacherModel, error) {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return uuid.Nil, model.TeacherModel{}, err
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, model.TeacherModel{}, fiber.NewError(fiber.StatusBadRequest, "teacher_id tidak valid")
	}
	t, err := service.LoadTeacher(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return uuid.Nil, t, fiber.NewError(helper.StatusFor(err), helper.UserMessage(err))
	}
	return schoolID, t, nil
}

// GET /teachers?q=&status=&subject_id=
func (ctl *TeacherController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "name", "asc", helper.AdminOpts)

	q := ctl.DB.WithContext(reqCtx(c)).Table("teachers t").
		Joins("JOIN users u ON u.id = t.teacher_user_id").
		Where("t.teacher_school_id = ? AND t.teacher_deleted_at IS NULL", schoolID)
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(COALESCE(u.full_name, '')) LIKE ? OR LOWER(u.email) LIKE ? OR LOWER(u.user_name) LIKE ?", like, like, like)
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("t.teacher_status = ?", st)
	}
	if sid, err := uuid.Parse(strings.TrimSpace(c.Query("subject_id"))); err == nil {
		q = q.Where("EXISTS (SELECT 1 FROM teacher_subjects ts WHERE ts.teacher_subject_teacher_id = t.teacher_id AND ts.teacher_subject_subject_id = ?)", sid)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung guru")
	}

	rows := []dto.TeacherListItem{}
	order := p.OrderClause(map[string]string{
		"name":      "COALESCE(u.full_name, u.user_name)",
		"hire_date": "t.teacher_hire_date",
		"created":   "t.teacher_created_at",
	}, "name")
	if err := q.Select(`t.teacher_id, t.teacher_user_id, u.full_name, u.user_name, u.email, u.phone,
			t.teacher_specialization, t.teacher_hire_date, t.teacher_status`).
		Order(order).Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil guru")
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /teachers/:id
func (ctl *TeacherController) Get(c *fiber.Ctx) error {
	_, t, err := ctl.scope(c)
	if err != nil {
		return err
	}
	subjects, err := service.Subjects(reqCtx(c), ctl.DB, t.TeacherID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil mapel guru")
	}
	return helper.JsonOK(c, "OK", fiber.Map{"teacher": t, "subjects": subjects})
}

// POST /teachers
func (ctl *TeacherController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.CreateTeacherRequest
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
	resp, err := ctl.Svc.Create(reqCtx(c), schoolID, req, by)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Guru ditambahkan", resp)
}

// PATCH /teachers/:id
func (ctl *TeacherController) Update(c *fiber.Ctx) error {
	_, t, err := ctl.scope(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	up := req.Updates()
	if len(up) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tidak ada perubahan")
	}
	if err := ctl.DB.WithContext(reqCtx(c)).Model(&t).Updates(up).Error; err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Guru diperbarui", t)
}

// DELETE /teachers/:id (soft). Mapel kelas yang dia pegang dilepas.
func (ctl *TeacherController) Delete(c *fiber.Ctx) error {
	_, t, err := ctl.scope(c)
	if err != nil {
		return err
	}
	err = ctl.DB.WithContext(reqCtx(c)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("class_subjects").
			Where("class_subject_teacher_id = ?", t.TeacherID).
			Update("class_subject_teacher_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&t).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus guru")
	}
	return helper.JsonDeleted(c, "Guru dihapus", fiber.Map{"teacher_id": t.TeacherID})
}

// GET /teachers/:id/subjects
func (ctl *TeacherController) ListSubjects(c *fiber.Ctx) error {
	_, t, err := ctl.scope(c)
	if err != nil {
		return err
	}
	rows, err := service.Subjects(reqCtx(c), ctl.DB, t.TeacherID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil mapel guru")
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /teachers/:id/subjects (tambah) | PUT /teachers/:id/subjects (ganti semua)
func (ctl *TeacherController) SetSubjects(replace bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		schoolID, t, err := ctl.scope(c)
		if err != nil {
			return err
		}
		var req dto.TeacherSubjectsRequest
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
		}
		if err := ctl.Validate.Struct(req); err != nil {
			return helper.ValidationError(c, err)
		}
		if replace {
			err = service.ReplaceSubjects(reqCtx(c), ctl.DB, schoolID, t.TeacherID, req.SubjectIDs)
		} else {
			err = service.AddSubjects(reqCtx(c), ctl.DB, schoolID, t.TeacherID, req.SubjectIDs)
		}
		if err != nil {
			return helper.FromServiceError(c, err)
		}
		rows, err := service.Subjects(reqCtx(c), ctl.DB, t.TeacherID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil mapel guru")
		}
		return helper.JsonUpdated(c, "Mapel guru diperbarui", rows)
	}
}

// DELETE /teachers/:id/subjects/:subject_id
func (ctl *TeacherController) RemoveSubject(c *fiber.Ctx) error {
	_, t, err := ctl.scope(c)
	if err != nil {
		return err
	}
	sid, err := uuid.Parse(strings.TrimSpace(c.Params("subject_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "subject_id tidak valid")
	}
	ok, err := service.RemoveSubject(reqCtx(c), ctl.DB, t.TeacherID, sid)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus mapel guru")
	}
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Mapel tidak terdaftar untuk guru ini")
	}
	return helper.JsonDeleted(c, "Mapel guru dihapus", fiber.Map{"teacher_id": t.TeacherID, "subject_id": sid})
}

// GET /teachers/:id/classes?school_year_id=
func (ctl *TeacherController) Classes(c *fiber.Ctx) error {
	schoolID, t, err := ctl.scope(c)
	if err != nil {
		return err
	}
	var yearID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("school_year_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "school_year_id tidak valid")
		}
		yearID = &id
	}
	rows, err := service.Classes(reqCtx(c), ctl.DB, schoolID, t.TeacherID, yearID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil kelas guru")
	}
	return helper.JsonOK(c, "OK", rows)
}
