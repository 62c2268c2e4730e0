package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	planCtl "schoolhub_backend/internals/features/finance/payment_plans/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// PaymentPlanAdminRoutes: /api/a/:school_id/finance/payment-plans, templates & installments
func PaymentPlanAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := planCtl.NewPaymentPlanController(db, nil)
	finance := featuresMiddleware.RequireSchoolRoles("keuangan", constants.FinanceRoles...)
	approve := featuresMiddleware.RequireSchoolRoles("persetujuan keuangan", constants.RoleSchoolAdmin, constants.RoleAccountant)

	g := admin.Group("/finance", finance)

	t := g.Group("/payment-plan-templates")
	t.Get("/", ctl.ListTemplates)
	t.Post("/", approve, ctl.CreateTemplate)
	t.Patch("/:id", approve, ctl.UpdateTemplate)
	t.Delete("/:id", approve, ctl.DeleteTemplate)

	p := g.Group("/payment-plans")
	p.Get("/", ctl.List)
	p.Post("/", ctl.Create)
	p.Get("/summary", ctl.Summary)
	p.Get("/:id", ctl.Get)
	p.Post("/:id/cancel", approve, ctl.Cancel)

	i := g.Group("/installments")
	i.Get("/overdue", ctl.Overdue)
	i.Post("/mark-overdue", ctl.MarkOverdue)
	i.Post("/:id/waive", approve, ctl.WaiveInstallment)
}
