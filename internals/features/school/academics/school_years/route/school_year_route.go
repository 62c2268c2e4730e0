package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	yearCtl "schoolhub_backend/internals/features/school/academics/school_years/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// SchoolYearAdminRoutes: /api/a/:school_id/school-years & /terms
func SchoolYearAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := yearCtl.NewSchoolYearController(db, nil)
	manage := featuresMiddleware.RequireSchoolRoles("tahun ajaran", constants.AcademicAdminRoles...)

	y := admin.Group("/school-years")
	y.Get("/", ctl.List)
	y.Get("/active", ctl.Active)
	y.Get("/:id", ctl.Get)
	y.Post("/", manage, ctl.Create)
	y.Put("/:id", manage, ctl.Update)
	y.Post("/:id/activate", manage, ctl.Activate)
	y.Delete("/:id", manage, ctl.Delete)

	t := admin.Group("/terms")
	t.Get("/", ctl.ListTerms)
	t.Post("/", manage, ctl.CreateTerm)
	t.Put("/:id", manage, ctl.UpdateTerm)
	t.Delete("/:id", manage, ctl.DeleteTerm)
}
