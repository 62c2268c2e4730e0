package controller

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/finance/refunds/dto"
	"schoolhub_backend/internals/features/finance/refunds/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/dbtime"
)

type RefundController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewRefundController(db *gorm.DB, v *validator.Validate) *RefundController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &RefundController{DB: db, Validate: v}
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

func (ctl *RefundController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

// GET /finance/refunds?payment_id=&status=&from=&to=
func (ctl *RefundController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	f := service.RefundFilter{Status: strings.TrimSpace(c.Query("status"))}
	if raw := strings.TrimSpace(c.Query("payment_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "payment_id tidak valid")
		}
		f.PaymentID = &id
	}
	if f.From, err = queryDate(c, "from"); err != nil {
		return err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	rows, total, err := service.List(reqCtx(c), ctl.DB, schoolID, f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /finance/refunds/pending-count
func (ctl *RefundController) PendingCount(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	n, err := service.PendingCount(reqCtx(c), ctl.DB, schoolID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", fiber.Map{"pending": n})
}

// GET /finance/refunds/:id
func (ctl *RefundController) Get(c *fiber.Ctx) error {
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

// POST /finance/refunds
func (ctl *RefundController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.CreateRefundRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.Create(reqCtx(c), ctl.DB, schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Permintaan refund dibuat", out)
}

// POST /finance/refunds/:id/approve
func (ctl *RefundController) Approve(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := service.Approve(reqCtx(c), ctl.DB, schoolID, id, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Refund disetujui", out)
}

// POST /finance/refunds/:id/reject
func (ctl *RefundController) Reject(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.RejectRefundRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.Reject(reqCtx(c), ctl.DB, schoolID, id, req.Reason, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Refund ditolak", out)
}

// POST /finance/refunds/:id/process
func (ctl *RefundController) Process(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProcessRefundRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.Process(reqCtx(c), ctl.DB, schoolID, id, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Refund diproses", out)
}

// POST /finance/refunds/:id/cancel
func (ctl *RefundController) Cancel(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := service.Cancel(reqCtx(c), ctl.DB, schoolID, id, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Refund dibatalkan", out)
}
