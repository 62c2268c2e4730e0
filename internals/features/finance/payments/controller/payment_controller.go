package controller

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/finance/payments/dto"
	"schoolhub_backend/internals/features/finance/payments/service"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/dbtime"
)

type PaymentController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewPaymentController(db *gorm.DB, v *validator.Validate) *PaymentController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &PaymentController{DB: db, Validate: v}
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

func (ctl *PaymentController) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

// GET /finance/payments?student_id=&status=&method=&from=&to=&q=
func (ctl *PaymentController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	f := service.PaymentFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Method: strings.TrimSpace(c.Query("method")),
		Q:      c.Query("q"),
	}
	if f.StudentID, err = queryUUID(c, "student_id"); err != nil {
		return err
	}
	if f.From, err = queryDate(c, "from"); err != nil {
		return err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "payment_date", "desc", helper.AdminOpts)
	rows, total, err := service.List(reqCtx(c), ctl.DB, schoolID, f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "OK", rows, helper.BuildMeta(total, p))
}

// POST /finance/payments
func (ctl *PaymentController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.CreatePaymentRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.CreatePayment(reqCtx(c), ctl.DB, schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Pembayaran dicatat", out)
}

// GET /finance/payments/:id
func (ctl *PaymentController) Get(c *fiber.Ctx) error {
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

// GET /finance/payments/:id/receipt
func (ctl *PaymentController) Receipt(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := service.Receipt(reqCtx(c), ctl.DB, schoolID, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", out)
}

// POST /finance/payments/:id/cancel
func (ctl *PaymentController) Cancel(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CancelPaymentRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.CancelPayment(reqCtx(c), ctl.DB, schoolID, id, req.Reason, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Pembayaran dibatalkan", out)
}

func (ctl *PaymentController) cashierParams(c *fiber.Ctx) (uuid.UUID, time.Time, error) {
	cashier, err := queryUUID(c, "cashier_id")
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}
	if cashier == nil {
		if cashier = actor(c); cashier == nil {
			return uuid.Nil, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "cashier_id wajib diisi")
		}
	}
	day, err := queryDate(c, "date")
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}
	if day == nil {
		t := dbtime.Today()
		day = &t
	}
	return *cashier, *day, nil
}

// GET /finance/payments/cashier-summary?cashier_id=&date=
func (ctl *PaymentController) CashierSummary(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	cashier, day, err := ctl.cashierParams(c)
	if err != nil {
		return err
	}
	out, err := service.CashierDailySummary(reqCtx(c), ctl.DB, schoolID, cashier, day)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "OK", out)
}

// GET /finance/payments/cashier-summary/export?cashier_id=&date=
func (ctl *PaymentController) ExportCashierSummary(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	cashier, day, err := ctl.cashierParams(c)
	if err != nil {
		return err
	}
	sum, err := service.CashierDailySummary(reqCtx(c), ctl.DB, schoolID, cashier, day)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	rows, err := service.CashierPayments(reqCtx(c), ctl.DB, schoolID, cashier, day)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	f, err := service.BuildCashierWorkbook(sum, rows)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat file excel")
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat file excel")
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="caisse-`+sum.Date+`.xlsx"`)
	return c.Send(buf.Bytes())
}

// POST /finance/payments/online
func (ctl *PaymentController) CreateOnline(c *fiber.Ctx) error {
	schoolID, err := helperAuth.SchoolIDFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.OnlinePaymentRequest
	if err := ctl.bind(c, &req); err != nil {
		return err
	}
	out, err := service.CreateOnlinePayment(reqCtx(c), ctl.DB, schoolID, req, actor(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Token pembayaran dibuat", out)
}

// POST /payments/midtrans/webhook (publik, diverifikasi lewat signature)
func (ctl *PaymentController) MidtransWebhook(c *fiber.Ctx) error {
	var n dto.MidtransNotification
	if err := c.BodyParser(&n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	headers := map[string]string{}
	for k, v := range c.GetReqHeaders() {
		headers[k] = strings.Join(v, ",")
	}
	meta := service.WebhookMeta{Headers: headers, RawQuery: string(c.Request().URI().QueryString())}
	out, err := service.HandleMidtransNotification(reqCtx(c), ctl.DB, n, meta)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return c.JSON(out)
}
