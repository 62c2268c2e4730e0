package controller

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/messages/dto"
	"schoolhub_backend/internals/features/school/messages/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/mailer"
)

type MessageController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Mailer   mailer.Mailer
}

func NewMessageController(db *gorm.DB, v *validator.Validate, m mailer.Mailer) *MessageController {
	if v == nil {
		v = helper.NewValidator()
	}
	if m == nil {
		m = mailer.New()
	}
	return &MessageController{DB: db, Validate: v, Mailer: m}
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

func (ctl *MessageController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

// POST /messages
func (ctl *MessageController) Send(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req dto.SendRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.Send(reqCtx(c), ctl.DB, ctl.Mailer, schoolID, userID, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Pesan terkirim", out)
}

// POST /messages/broadcast
func (ctl *MessageController) Broadcast(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req dto.ClassBroadcastRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.BroadcastToClass(reqCtx(c), ctl.DB, ctl.Mailer, schoolID, userID, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Pesan kelas terkirim", out)
}

// GET /messages/inbox?unread=true
func (ctl *MessageController) Inbox(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := service.Inbox(reqCtx(c), ctl.DB, userID, c.QueryBool("unread"), p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /messages/outbox?status=
func (ctl *MessageController) Outbox(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := service.Outbox(reqCtx(c), ctl.DB, userID, strings.TrimSpace(c.Query("status")), p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// GET /messages/:id/thread
func (ctl *MessageController) Thread(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	rows, err := service.Thread(reqCtx(c), ctl.DB, id, userID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", rows)
}

// POST /messages/:id/reply
func (ctl *MessageController) Reply(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReplyRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.Reply(reqCtx(c), ctl.DB, ctl.Mailer, id, userID, req.Body)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Balasan terkirim", out)
}

// POST /messages/:id/read
func (ctl *MessageController) MarkRead(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := service.MarkRead(reqCtx(c), ctl.DB, id, userID, time.Now())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Pesan dibaca", out)
}

// GET /messages/unread-count
func (ctl *MessageController) UnreadCount(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	n, err := service.UnreadCount(reqCtx(c), ctl.DB, userID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", fiber.Map{"unread": n})
}
