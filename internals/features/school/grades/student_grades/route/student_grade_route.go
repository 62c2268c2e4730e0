package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	gradeCtl "schoolhub_backend/internals/features/school/grades/student_grades/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// StudentGradeAdminRoutes: /api/a/:school_id/grades & /averages
func StudentGradeAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := gradeCtl.NewStudentGradeController(db, nil)
	entry := featuresMiddleware.RequireSchoolRoles("nilai", constants.AcademicRoles...)
	validate := featuresMiddleware.RequireSchoolRoles("validasi nilai", constants.GradeValidatorRoles...)

	g := admin.Group("/grades")
	g.Get("/pending", validate, ctl.Pending)
	g.Get("/classes/:class_id", ctl.ListByClass)
	g.Get("/classes/:class_id/stats", ctl.ClassStats)
	g.Post("/", entry, ctl.Create)
	g.Post("/bulk", entry, ctl.BulkCreate)
	g.Post("/submit", entry, ctl.Submit)
	g.Post("/submit-all", entry, ctl.SubmitAll)
	g.Post("/validate", validate, ctl.ValidateGrades)
	g.Post("/reject", validate, ctl.Reject)
	g.Post("/status", validate, ctl.UpdateStatus)
	g.Delete("/drafts", entry, ctl.DeleteDrafts)
	g.Get("/:id", ctl.Get)
	g.Get("/:id/history", ctl.History)
	g.Patch("/:id", entry, ctl.Update)

	a := admin.Group("/averages")
	a.Get("/classes/:class_id", ctl.Averages)
	a.Get("/classes/:class_id/export", ctl.ExportSheet)
	a.Post("/recalculate", validate, ctl.Recalculate)
}
