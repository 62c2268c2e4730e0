package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	refundCtl "schoolhub_backend/internals/features/finance/refunds/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// RefundAdminRoutes: /api/a/:school_id/finance/refunds
func RefundAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := refundCtl.NewRefundController(db, nil)
	finance := featuresMiddleware.RequireSchoolRoles("keuangan", constants.FinanceRoles...)
	approve := featuresMiddleware.RequireSchoolRoles("persetujuan keuangan", constants.RoleSchoolAdmin, constants.RoleAccountant)

	g := admin.Group("/finance/refunds", finance)
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Get("/pending-count", ctl.PendingCount)
	g.Get("/:id", ctl.Get)
	g.Post("/:id/approve", approve, ctl.Approve)
	g.Post("/:id/reject", approve, ctl.Reject)
	g.Post("/:id/process", approve, ctl.Process)
	g.Post("/:id/cancel", ctl.Cancel)
}
