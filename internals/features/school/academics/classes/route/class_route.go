package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	classCtl "schoolhub_backend/internals/features/school/academics/classes/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// ClassAdminRoutes: /api/a/:school_id/classes
func ClassAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := classCtl.NewClassController(db, nil)
	manage := featuresMiddleware.RequireSchoolRoles("kelas", constants.AcademicAdminRoles...)

	g := admin.Group("/classes")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Get)
	g.Post("/", manage, ctl.Create)
	g.Put("/:id", manage, ctl.Update)
	g.Delete("/:id", manage, ctl.Delete)

	g.Get("/:id/subjects", ctl.ListSubjects)
	g.Post("/:id/subjects", manage, ctl.AddSubject)
	g.Post("/:id/subjects/copy", manage, ctl.CopySubjects)
	g.Patch("/:id/subjects/:subject_id", manage, ctl.UpdateSubject)
	g.Delete("/:id/subjects/:subject_id", manage, ctl.RemoveSubject)
	g.Put("/:id/subjects/:subject_id/teacher", manage, ctl.AssignTeacher)
	g.Delete("/:id/subjects/:subject_id/teacher", manage, ctl.UnassignTeacher)

	admin.Get("/teachers/:teacher_id/workload", ctl.TeacherWorkload)
}
