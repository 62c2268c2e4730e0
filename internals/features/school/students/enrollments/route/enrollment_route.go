package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	enrollmentCtl "schoolhub_backend/internals/features/school/students/enrollments/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// EnrollmentAdminRoutes: /api/a/:school_id/enrollments
func EnrollmentAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := enrollmentCtl.NewEnrollmentController(db, nil)
	manage := featuresMiddleware.RequireSchoolRoles("pendaftaran", constants.RegistrarRoles...)

	g := admin.Group("/enrollments")
	g.Get("/", ctl.List)
	g.Get("/stats", ctl.Stats)
	g.Post("/re-enroll", manage, ctl.ReEnroll)
	g.Get("/:id", ctl.Get)
	g.Post("/", manage, ctl.Create)
	g.Post("/:id/confirm", manage, ctl.Confirm)
	g.Post("/:id/cancel", manage, ctl.Cancel)
	g.Post("/:id/transfer", manage, ctl.Transfer)
	g.Delete("/:id", manage, ctl.Delete)
}
