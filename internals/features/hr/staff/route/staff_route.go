package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	staffCtl "schoolhub_backend/internals/features/hr/staff/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// StaffAdminRoutes: /api/a/:school_id/staff (admin saja)
func StaffAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := staffCtl.NewStaffController(db, nil)
	g := admin.Group("/staff", featuresMiddleware.RequireSchoolRoles("staf", constants.AdminOnly...))
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Get)
	g.Post("/", ctl.Create)
	g.Patch("/:id", ctl.Update)
	g.Delete("/:id", ctl.Delete)
}
