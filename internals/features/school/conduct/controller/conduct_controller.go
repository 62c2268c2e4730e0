package controller

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/conduct/dto"
	"schoolhub_backend/internals/features/school/conduct/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/dbtime"
	"schoolhub_backend/internals/helpers/mailer"
)

type ConductController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Mailer   mailer.Mailer
}

func NewConductController(db *gorm.DB, v *validator.Validate, m mailer.Mailer) *ConductController {
	if v == nil {
		v = helper.NewValidator()
	}
	if m == nil {
		m = mailer.New()
	}
	return &ConductController{DB: db, Validate: v, Mailer: m}
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

func (ctl *ConductController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

// GET /conduct?type=&status=&severity=&category=&student_id=&class_id=&from=&to=&q=
func (ctl *ConductController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	f := service.Filter{
		Type:     strings.TrimSpace(c.Query("type")),
		Status:   strings.TrimSpace(c.Query("status")),
		Severity: strings.TrimSpace(c.Query("severity")),
		Category: strings.TrimSpace(c.Query("category")),
		Search:   c.Query("q"),
	}
	if f.StudentID, err = queryUUID(c, "student_id"); err != nil {
		return err
	}
	if f.ClassID, err = queryUUID(c, "class_id"); err != nil {
		return err
	}
	if f.From, err = queryDate(c, "from"); err != nil {
		return err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "incident_date", "desc", helper.AdminOpts)
	rows, total, err := service.List(reqCtx(c), ctl.DB, schoolID, f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /conduct/:id
func (ctl *ConductController) Get(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := service.Get(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", out)
}

// POST /conduct
func (ctl *ConductController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.ConductRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	m, ok := req.ToModel(schoolID, actor(c))
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tanggal tidak valid atau akhir sanksi sebelum mulai")
	}
	out, err := service.Create(reqCtx(c), ctl.DB, m)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Catatan perilaku dibuat", out)
}

// PATCH /conduct/:id
func (ctl *ConductController) Update(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ConductUpdateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.Update(reqCtx(c), ctl.DB, schoolID, id, req.Updates())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Catatan perilaku diperbarui", out)
}

// DELETE /conduct/:id
func (ctl *ConductController) Delete(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := service.Delete(reqCtx(c), ctl.DB, schoolID, id, actor(c)); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Catatan perilaku dihapus", fiber.Map{"conduct_record_id": id})
}

// PATCH /conduct/:id/status
func (ctl *ConductController) UpdateStatus(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.StatusRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.UpdateStatus(reqCtx(c), ctl.DB, schoolID, id, req, actor(c), time.Now())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Status diperbarui", out)
}

// POST /conduct/:id/follow-ups
func (ctl *ConductController) AddFollowUp(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.FollowUpRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.AddFollowUp(reqCtx(c), ctl.DB, schoolID, id, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Tindak lanjut ditambahkan", out)
}

// POST /conduct/:id/follow-ups/:follow_up_id/complete
func (ctl *ConductController) CompleteFollowUp(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	fuID, err := paramUUID(c, "follow_up_id")
	if err != nil {
		return err
	}
	var req dto.CompleteFollowUpRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.CompleteFollowUp(reqCtx(c), ctl.DB, schoolID, id, fuID, req.Outcome, time.Now())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Tindak lanjut selesai", out)
}

// DELETE /conduct/:id/follow-ups/:follow_up_id
func (ctl *ConductController) DeleteFollowUp(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	fuID, err := paramUUID(c, "follow_up_id")
	if err != nil {
		return err
	}
	if err := service.DeleteFollowUp(reqCtx(c), ctl.DB, schoolID, id, fuID); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Tindak lanjut dihapus", fiber.Map{"conduct_follow_up_id": fuID})
}

// POST /conduct/:id/parent/notify
func (ctl *ConductController) NotifyParent(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ParentNotifyRequest
	if len(c.Body()) > 0 {
		if err := ctl.bind(c, &req); err != nil {
			return err
		}
	}
	out, err := service.NotifyParent(reqCtx(c), ctl.DB, ctl.Mailer, schoolID, id, req, actor(c), time.Now())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Orang tua sudah diberi tahu", out)
}

// POST /conduct/:id/parent/acknowledge
func (ctl *ConductController) AcknowledgeParent(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ParentAckRequest
	if len(c.Body()) > 0 {
		if err := ctl.bind(c, &req); err != nil {
			return err
		}
	}
	out, err := service.AcknowledgeParent(reqCtx(c), ctl.DB, schoolID, id, req.Response, time.Now())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Konfirmasi orang tua dicatat", out)
}

// GET /conduct/students/:student_id/summary?school_year_id=
func (ctl *ConductController) StudentSummary(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	studentID, err := paramUUID(c, "student_id")
	if err != nil {
		return err
	}
	yearID, err := queryUUID(c, "school_year_id")
	if err != nil {
		return err
	}
	out, err := service.StudentSummary(reqCtx(c), ctl.DB, schoolID, studentID, yearID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", out)
}
