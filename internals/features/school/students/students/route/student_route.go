package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	studentCtl "schoolhub_backend/internals/features/school/students/students/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// StudentAdminRoutes: /api/a/:school_id/students + /parents
func StudentAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := studentCtl.NewStudentController(db, nil)
	manage := featuresMiddleware.RequireSchoolRoles("siswa", constants.RegistrarRoles...)

	g := admin.Group("/students")
	g.Get("/", ctl.List)
	g.Get("/stats", ctl.Stats)
	g.Get("/export", manage, ctl.Export)
	g.Post("/import", manage, ctl.Import)
	g.Get("/:id", ctl.Get)
	g.Post("/", manage, ctl.Create)
	g.Patch("/:id", manage, ctl.Update)
	g.Patch("/:id/status", manage, ctl.UpdateStatus)
	g.Delete("/:id", manage, ctl.Delete)
	g.Post("/:id/photo", manage, ctl.UploadPhoto)
	g.Post("/:id/parents", manage, ctl.LinkParent)
	g.Delete("/:id/parents/:parent_id", manage, ctl.UnlinkParent)

	p := admin.Group("/parents")
	p.Get("/", ctl.ListParents)
	p.Put("/:parent_id", manage, ctl.UpdateParent)
}
