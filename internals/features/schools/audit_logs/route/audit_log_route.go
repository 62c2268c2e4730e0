package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	auditCtl "schoolhub_backend/internals/features/schools/audit_logs/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// AuditLogAdminRoutes: /api/a/:school_id/audit-logs (admin saja)
func AuditLogAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := auditCtl.NewAuditLogController(db)
	admin.Get("/audit-logs", featuresMiddleware.RequireSchoolRoles("audit log", constants.AdminOnly...), ctl.List)
}
