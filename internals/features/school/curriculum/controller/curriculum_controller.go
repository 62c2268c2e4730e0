package controller

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/curriculum/dto"
	"schoolhub_backend/internals/features/school/curriculum/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/dbtime"
)

type CurriculumController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewCurriculumController(db *gorm.DB, v *validator.Validate) *CurriculumController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &CurriculumController{DB: db, Validate: v}
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

func queryUUID(c *fiber.Ctx, key string, required bool) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		if required {
			return nil, fiber.NewError(fiber.StatusBadRequest, key+" wajib diisi")
		}
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
	}
	return &id, nil
}

func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := dbtime.ParseDate(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" harus YYYY-MM-DD")
	}
	return &d, nil
}

func (ctl *CurriculumController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

/* ===================== chapters ===================== */

// GET /curriculum/chapters?class_id=&subject_id=
func (ctl *CurriculumController) ListChapters(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	classID, err := queryUUID(c, "class_id", true)
	if err != nil {
		return err
	}
	subjectID, err := queryUUID(c, "subject_id", true)
	if err != nil {
		return err
	}
	rows, err := service.ChaptersForClass(reqCtx(c), ctl.DB, schoolID, *classID, *subjectID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /curriculum/chapters
func (ctl *CurriculumController) CreateChapter(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.ChapterRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.CreateChapter(reqCtx(c), ctl.DB, req.ToModel(schoolID))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Bab dibuat", out)
}

// PATCH /curriculum/chapters/:id
func (ctl *CurriculumController) UpdateChapter(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChapterUpdateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.UpdateChapter(reqCtx(c), ctl.DB, schoolID, id, req.Updates())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Bab diperbarui", out)
}

// DELETE /curriculum/chapters/:id
func (ctl *CurriculumController) DeleteChapter(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := service.DeleteChapter(reqCtx(c), ctl.DB, schoolID, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Bab dihapus", fiber.Map{"program_chapter_id": id})
}

// POST /curriculum/chapters/complete
func (ctl *CurriculumController) CompleteChapter(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.CompleteChapterRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.CompleteChapter(reqCtx(c), ctl.DB, schoolID, req, helperAuth.GetTeacherIDFromToken(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Bab ditandai selesai", out)
}

// DELETE /curriculum/classes/:class_id/chapters/:id/complete
func (ctl *CurriculumController) UncompleteChapter(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "class_id")
	if err != nil {
		return err
	}
	chapterID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := service.UncompleteChapter(reqCtx(c), ctl.DB, schoolID, classID, chapterID); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Tanda selesai dibatalkan", fiber.Map{"chapter_id": chapterID})
}

/* ===================== sessions ===================== */

// GET /curriculum/classes/:class_id/sessions?from=&to=&status=
func (ctl *CurriculumController) ListSessions(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	classID, err := paramUUID(c, "class_id")
	if err != nil {
		return err
	}
	from, err := queryDate(c, "from")
	if err != nil {
		return err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return err
	}
	rows, err := service.ListSessions(reqCtx(c), ctl.DB, schoolID, classID, from, to, strings.TrimSpace(c.Query("status")))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /curriculum/sessions
func (ctl *CurriculumController) CreateSession(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.ClassSessionRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	m, ok := req.ToModel(schoolID)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tanggal/jam sesi tidak valid")
	}
	out, err := service.CreateSession(reqCtx(c), ctl.DB, schoolID, m)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Sesi dibuat", out)
}

// PATCH /curriculum/sessions/:id
func (ctl *CurriculumController) UpdateSession(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ClassSessionUpdateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.UpdateSession(reqCtx(c), ctl.DB, schoolID, id, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Sesi diperbarui", out)
}

// DELETE /curriculum/sessions/:id
func (ctl *CurriculumController) DeleteSession(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := service.DeleteSession(reqCtx(c), ctl.DB, schoolID, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Sesi dihapus", fiber.Map{"class_session_id": id})
}

// POST /curriculum/sessions/:id/complete
func (ctl *CurriculumController) CompleteSession(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CompleteSessionRequest
	if len(c.Body()) > 0 {
		if err := ctl.bind(c, &req); err != nil {
			return err
		}
	}
	out, err := service.CompleteSession(reqCtx(c), ctl.DB, schoolID, id, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Sesi selesai", out)
}

/* ===================== progress ===================== */

// POST /curriculum/progress/recalculate
func (ctl *CurriculumController) Recalculate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.RecalculateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	rows, err := service.Recalculate(reqCtx(c), ctl.DB, schoolID, req.ClassID, req.TermID, time.Now())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Progres dihitung ulang", rows)
}

// GET /curriculum/progress?term_id=&class_id=&status=
func (ctl *CurriculumController) Overview(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	termID, err := queryUUID(c, "term_id", true)
	if err != nil {
		return err
	}
	classID, err := queryUUID(c, "class_id", false)
	if err != nil {
		return err
	}
	rows, err := service.Overview(reqCtx(c), ctl.DB, schoolID, *termID, classID, strings.TrimSpace(c.Query("status")))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /curriculum/progress/behind?term_id=&threshold=-10
func (ctl *CurriculumController) Behind(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	termID, err := queryUUID(c, "term_id", true)
	if err != nil {
		return err
	}
	threshold := service.DefaultBehindThreshold
	if raw := strings.TrimSpace(c.Query("threshold")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "threshold harus angka")
		}
		threshold = v
	}
	rows, err := service.BehindSchedule(reqCtx(c), ctl.DB, schoolID, *termID, threshold)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", fiber.Map{"threshold": threshold, "items": rows})
}

func (ctl *CurriculumController) termQuery(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	termID, err := queryUUID(c, "term_id", true)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return schoolID, *termID, nil
}

// GET /curriculum/progress/stats?term_id=
func (ctl *CurriculumController) Stats(c *fiber.Ctx) error {
	schoolID, termID, err := ctl.termQuery(c)
	if err != nil {
		return err
	}
	rows, err := service.StatsByStatus(reqCtx(c), ctl.DB, schoolID, termID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /curriculum/progress/subjects?term_id=
func (ctl *CurriculumController) BySubject(c *fiber.Ctx) error {
	schoolID, termID, err := ctl.termQuery(c)
	if err != nil {
		return err
	}
	rows, err := service.ProgressBySubject(reqCtx(c), ctl.DB, schoolID, termID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /curriculum/progress/teachers?term_id=
func (ctl *CurriculumController) TeacherSummary(c *fiber.Ctx) error {
	schoolID, termID, err := ctl.termQuery(c)
	if err != nil {
		return err
	}
	rows, err := service.TeacherSummary(reqCtx(c), ctl.DB, schoolID, termID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}
