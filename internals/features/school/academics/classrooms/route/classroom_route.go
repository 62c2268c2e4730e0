package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	classroomCtl "schoolhub_backend/internals/features/school/academics/classrooms/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// ClassroomAdminRoutes: /api/a/:school_id/classrooms
func ClassroomAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := classroomCtl.NewClassroomController(db, nil)
	manage := featuresMiddleware.RequireSchoolRoles("ruang kelas", constants.AcademicAdminRoles...)

	g := admin.Group("/classrooms")
	g.Get("/", ctl.List)
	g.Get("/availability", ctl.Availability)
	g.Get("/:id", ctl.Get)
	g.Post("/", manage, ctl.Create)
	g.Put("/:id", manage, ctl.Update)
	g.Delete("/:id", manage, ctl.Delete)
}
