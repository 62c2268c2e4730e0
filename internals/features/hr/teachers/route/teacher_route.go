package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	teacherCtl "schoolhub_backend/internals/features/hr/teachers/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// TeacherAdminRoutes: /api/a/:school_id/teachers
func TeacherAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := teacherCtl.NewTeacherController(db, nil)
	manage := featuresMiddleware.RequireSchoolRoles("guru", constants.AdminOnly...)

	g := admin.Group("/teachers")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Get)
	g.Post("/", manage, ctl.Create)
	g.Patch("/:id", manage, ctl.Update)
	g.Delete("/:id", manage, ctl.Delete)

	g.Get("/:id/classes", ctl.Classes)
	g.Get("/:id/subjects", ctl.ListSubjects)
	g.Post("/:id/subjects", manage, ctl.SetSubjects(false))
	g.Put("/:id/subjects", manage, ctl.SetSubjects(true))
	g.Delete("/:id/subjects/:subject_id", manage, ctl.RemoveSubject)
}
