package controller

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/finance/payment_plans/dto"
	"schoolhub_backend/internals/features/finance/payment_plans/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/dbtime"
)

type PaymentPlanController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewPaymentPlanController(db *gorm.DB, v *validator.Validate) *PaymentPlanController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &PaymentPlanController{DB: db, Validate: v}
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

func (ctl *PaymentPlanController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

/* =========================
   Templates
========================= */

// GET /finance/payment-plan-templates?school_year_id=
func (ctl *PaymentPlanController) ListTemplates(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	yearID, err := queryUUID(c, "school_year_id")
	if err != nil {
		return err
	}
	rows, err := service.ListTemplates(reqCtx(c), ctl.DB, schoolID, yearID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /finance/payment-plan-templates
func (ctl *PaymentPlanController) CreateTemplate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.TemplateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.CreateTemplate(reqCtx(c), ctl.DB, schoolID, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Template cicilan dibuat", out)
}

// PATCH /finance/payment-plan-templates/:id
func (ctl *PaymentPlanController) UpdateTemplate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TemplateUpdateRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.UpdateTemplate(reqCtx(c), ctl.DB, schoolID, id, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Template cicilan diperbarui", out)
}

// DELETE /finance/payment-plan-templates/:id
func (ctl *PaymentPlanController) DeleteTemplate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := service.DeleteTemplate(reqCtx(c), ctl.DB, schoolID, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Template cicilan dihapus", fiber.Map{"payment_plan_template_id": id})
}

/* =========================
   Plans
========================= */

// GET /finance/payment-plans?school_year_id=&student_id=&status=
func (ctl *PaymentPlanController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	f := service.PlanFilter{Status: strings.TrimSpace(c.Query("status"))}
	if f.SchoolYearID, err = queryUUID(c, "school_year_id"); err != nil {
		return err
	}
	if f.StudentID, err = queryUUID(c, "student_id"); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	rows, total, err := service.List(reqCtx(c), ctl.DB, schoolID, f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// POST /finance/payment-plans
func (ctl *PaymentPlanController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.CreatePlanRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.CreateFromTemplate(reqCtx(c), ctl.DB, schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Rencana pembayaran dibuat", out)
}

// GET /finance/payment-plans/:id
func (ctl *PaymentPlanController) Get(c *fiber.Ctx) error {
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

// POST /finance/payment-plans/:id/cancel
func (ctl *PaymentPlanController) Cancel(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CancelPlanRequest
	if len(c.Body()) > 0 {
		if err := ctl.bind(c, &req); err != nil {
			return err
		}
	}
	out, err := service.Cancel(reqCtx(c), ctl.DB, schoolID, id, req.Reason, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Rencana pembayaran dibatalkan", out)
}

// GET /finance/payment-plans/summary?school_year_id=
func (ctl *PaymentPlanController) Summary(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	yearID, err := queryUUID(c, "school_year_id")
	if err != nil {
		return err
	}
	if yearID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "school_year_id wajib diisi")
	}
	out, err := service.Summary(reqCtx(c), ctl.DB, schoolID, *yearID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", out)
}

/* =========================
   Installments
========================= */

// POST /finance/installments/:id/waive
func (ctl *PaymentPlanController) WaiveInstallment(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := service.WaiveInstallment(reqCtx(c), ctl.DB, schoolID, id, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Cicilan dibebaskan", out)
}

// GET /finance/installments/overdue?school_year_id=
func (ctl *PaymentPlanController) Overdue(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	yearID, err := queryUUID(c, "school_year_id")
	if err != nil {
		return err
	}
	rows, err := service.ListOverdue(reqCtx(c), ctl.DB, schoolID, yearID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /finance/installments/mark-overdue
func (ctl *PaymentPlanController) MarkOverdue(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	n, err := service.MarkOverdue(reqCtx(c), ctl.DB, &schoolID, dbtime.Today())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Cicilan overdue diperbarui", fiber.Map{"updated": n})
}
