package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	timetableCtl "schoolhub_backend/internals/features/school/timetables/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// TimetableAdminRoutes: /api/a/:school_id/timetables
func TimetableAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := timetableCtl.NewTimetableController(db, nil)
	manage := featuresMiddleware.RequireSchoolRoles("jadwal", constants.AcademicAdminRoles...)

	g := admin.Group("/timetables")
	g.Get("/conflicts", ctl.SchoolConflicts)
	g.Post("/check-conflicts", ctl.CheckConflicts)
	g.Get("/classes/:id", ctl.ByClass())
	g.Get("/teachers/:id", ctl.ByTeacher())
	g.Get("/teachers/:id/hours", ctl.TeacherHours)
	g.Get("/teachers/:id/availability", ctl.TeacherAvailability())
	g.Get("/classrooms/:id", ctl.ByClassroom())
	g.Get("/classrooms/:id/availability", ctl.ClassroomAvailability())

	g.Post("/", manage, ctl.Create)
	g.Post("/bulk", manage, ctl.BulkCreate)
	g.Post("/generate-sessions", manage, ctl.GenerateSessions)
	g.Put("/:id", manage, ctl.Update)
	g.Delete("/classes/:id", manage, ctl.DeleteClassTimetable)
	g.Delete("/:id", manage, ctl.Delete)
}
