package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	attendanceCtl "schoolhub_backend/internals/features/school/attendance/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// AttendanceAdminRoutes: /api/a/:school_id/attendance
func AttendanceAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := attendanceCtl.NewAttendanceController(db, nil)
	record := featuresMiddleware.RequireSchoolRoles("absensi", constants.ConductRoles...)
	adminOnly := featuresMiddleware.RequireSchoolRoles("absensi guru", constants.AdminOnly...)
	oversee := featuresMiddleware.RequireSchoolRoles("alert absensi", constants.AcademicAdminRoles...)

	g := admin.Group("/attendance")

	g.Get("/classes/:class_id/roster", ctl.Roster)
	g.Get("/classes/:class_id/stats", ctl.ClassStats)
	g.Post("/students/bulk", record, ctl.BulkSave)
	g.Get("/students/:student_id/history", ctl.StudentHistory)
	g.Get("/students/:student_id/trend", ctl.StudentTrend)
	g.Get("/students/:student_id/chronic", ctl.ChronicCheck)

	g.Get("/teachers/daily", oversee, ctl.TeachersDaily)
	g.Get("/teachers/punctuality", oversee, ctl.Punctuality)
	g.Put("/teachers", adminOnly, ctl.UpsertTeacher)
	g.Put("/teachers/bulk", adminOnly, ctl.BulkUpsertTeachers)
	g.Get("/teachers/:teacher_id", oversee, ctl.TeacherRange)
	g.Get("/teachers/:teacher_id/lateness", oversee, ctl.LatenessInMonth)

	g.Get("/settings", ctl.GetSettings)
	g.Put("/settings", adminOnly, ctl.SaveSettings)

	g.Get("/alerts", oversee, ctl.ListAlerts)
	g.Get("/alerts/counts", oversee, ctl.AlertCounts)
	g.Post("/alerts/detect/chronic", oversee, ctl.DetectChronic)
	g.Post("/alerts/detect/lateness", oversee, ctl.DetectLateness)
	g.Post("/alerts/:id/acknowledge", oversee, ctl.Acknowledge())
	g.Post("/alerts/:id/resolve", oversee, ctl.Resolve())
	g.Post("/alerts/:id/dismiss", oversee, ctl.Dismiss())
}
