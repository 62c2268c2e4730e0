package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/grades/student_grades/dto"
	"schoolhub_backend/internals/features/school/grades/student_grades/model"
	"schoolhub_backend/internals/features/school/grades/student_grades/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type StudentGradeController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewStudentGradeController(db *gorm.DB, v *validator.Validate) *StudentGradeController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &StudentGradeController{DB: db, Validate: v}
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

func (ctl *StudentGradeController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

// GET /grades/classes/:class_id?subject_id=&term_id=&status=&student_id=
func (ctl *StudentGradeController) ListByClass(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "class_id")
	if err != nil {
		return err
	}
	if err := service.EnsureClass(ctl.DB.WithContext(reqCtx(c)), schoolID, classID); err != nil {
		return helper.FromServiceError(c, err)
	}
	p := helper.ParseFiber(c, "date", "desc", helper.AdminOpts)

	q := ctl.DB.WithContext(reqCtx(c)).Table("student_grades g").
		Joins("JOIN students s ON s.student_id = g.student_grade_student_id").
		Joins("JOIN subjects sj ON sj.subject_id = g.student_grade_subject_id").
		Where("g.student_grade_school_id = ? AND g.student_grade_class_id = ? AND g.student_grade_deleted_at IS NULL", schoolID, classID)
	for key, col := range map[string]string{
		"subject_id": "g.student_grade_subject_id",
		"term_id":    "g.student_grade_term_id",
		"student_id": "g.student_grade_student_id",
	} {
		id, err := queryUUID(c, key)
		if err != nil {
			return err
		}
		if id != nil {
			q = q.Where(col+" = ?", *id)
		}
	}
	if st := strings.TrimSpace(c.Query("status")); st != "" {
		q = q.Where("g.student_grade_status = ?", st)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung nilai")
	}
	rows := []dto.GradeListItem{}
	if err := q.Select("g.*, s.student_first_name, s.student_last_name, s.student_matricule, sj.subject_name").
		Order(p.OrderClause(map[string]string{
			"date":      "g.student_grade_date",
			"value":     "g.student_grade_value",
			"last_name": "s.student_last_name",
			"created":   "g.student_grade_created_at",
		}, "date")).
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil nilai")
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /grades/:id
func (ctl *StudentGradeController) Get(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	m, err := service.LoadGrade(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", m)
}

// POST /grades
func (ctl *StudentGradeController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.CreateGradeRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	m, err := service.CreateGrade(reqCtx(c), ctl.DB, schoolID, req, helperAuth.GetTeacherIDFromToken(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Nilai disimpan (draft)", m)
}

// POST /grades/bulk
func (ctl *StudentGradeController) BulkCreate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.BulkGradesRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	rows, err := service.BulkCreate(reqCtx(c), ctl.DB, schoolID, req, helperAuth.GetTeacherIDFromToken(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, fmt.Sprintf("%d nilai disimpan", len(rows)), rows)
}

// PATCH /grades/:id
func (ctl *StudentGradeController) Update(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateGradeRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	m, err := service.UpdateGrade(reqCtx(c), ctl.DB, schoolID, id, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Nilai diperbarui", m)
}

// POST /grades/status
func (ctl *StudentGradeController) UpdateStatus(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.StatusUpdateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	res, err := service.UpdateStatus(reqCtx(c), ctl.DB, schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, fmt.Sprintf("%d nilai diperbarui, %d dilewati", len(res.Updated), len(res.Skipped)), res)
}

// statusAs: POST /grades/submit|validate|reject, status diambil dari rute
func (ctl *StudentGradeController) statusAs(target string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		schoolID, err := helperAuth.SchoolIDFromCtx(c)
		if err != nil {
			return err
		}
		var req dto.StatusUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
		}
		req.Status = target
		if err := ctl.Validate.Struct(req); err != nil {
			return helper.ValidationError(c, err)
		}
		res, err := service.UpdateStatus(reqCtx(c), ctl.DB, schoolID, req, actor(c))
		if err != nil {
			return helper.FromServiceError(c, err)
		}
		return helper.JsonUpdated(c, fmt.Sprintf("%d nilai diperbarui, %d dilewati", len(res.Updated), len(res.Skipped)), res)
	}
}

func (ctl *StudentGradeController) Submit(c *fiber.Ctx) error {
	return ctl.statusAs(model.GradeStatusSubmitted)(c)
}

func (ctl *StudentGradeController) ValidateGrades(c *fiber.Ctx) error {
	return ctl.statusAs(model.GradeStatusValidated)(c)
}

func (ctl *StudentGradeController) Reject(c *fiber.Ctx) error {
	return ctl.statusAs(model.GradeStatusRejected)(c)
}

// POST /grades/submit-all
func (ctl *StudentGradeController) SubmitAll(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.ScopeRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	res, err := service.SubmitAll(reqCtx(c), ctl.DB, schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, fmt.Sprintf("%d nilai dikirim untuk validasi", len(res.Updated)), res)
}

// DELETE /grades/drafts
func (ctl *StudentGradeController) DeleteDrafts(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.DeleteDraftsRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	n, err := service.DeleteDrafts(reqCtx(c), ctl.DB, schoolID, req.GradeIDs)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus nilai")
	}
	return helper.JsonDeleted(c, fmt.Sprintf("%d draft dihapus", n), fiber.Map{"deleted": n})
}

// GET /grades/pending
func (ctl *StudentGradeController) Pending(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	rows, err := service.PendingValidations(reqCtx(c), ctl.DB, schoolID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil antrean validasi")
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /grades/classes/:class_id/stats?subject_id=&term_id=
func (ctl *StudentGradeController) ClassStats(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "class_id")
	if err != nil {
		return err
	}
	subjectID, err := queryUUID(c, "subject_id")
	if err != nil {
		return err
	}
	termID, err := queryUUID(c, "term_id")
	if err != nil {
		return err
	}
	st, err := service.ClassStats(reqCtx(c), ctl.DB, schoolID, classID, subjectID, termID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", st)
}

// GET /grades/:id/history
func (ctl *StudentGradeController) History(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	rows, err := service.History(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}
