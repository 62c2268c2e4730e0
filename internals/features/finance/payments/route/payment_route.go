package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	paymentCtl "schoolhub_backend/internals/features/finance/payments/controller"
	rateLimiter "schoolhub_backend/internals/middlewares"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// PaymentAdminRoutes: /api/a/:school_id/finance/payments
func PaymentAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := paymentCtl.NewPaymentController(db, nil)
	finance := featuresMiddleware.RequireSchoolRoles("keuangan", constants.FinanceRoles...)
	approve := featuresMiddleware.RequireSchoolRoles("persetujuan keuangan", constants.RoleSchoolAdmin, constants.RoleAccountant)

	g := admin.Group("/finance/payments", finance)
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Post("/online", ctl.CreateOnline)
	g.Get("/cashier-summary", ctl.CashierSummary)
	g.Get("/cashier-summary/export", ctl.ExportCashierSummary)
	g.Get("/:id", ctl.Get)
	g.Get("/:id/receipt", ctl.Receipt)
	g.Post("/:id/cancel", approve, ctl.Cancel)
}

// PaymentPublicRoutes: callback gateway, tanpa JWT
func PaymentPublicRoutes(public fiber.Router, db *gorm.DB) {
	ctl := paymentCtl.NewPaymentController(db, nil)
	public.Post("/payments/midtrans/webhook", rateLimiter.WebhookRateLimiter(), ctl.MidtransWebhook)
}
