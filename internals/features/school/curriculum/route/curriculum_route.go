package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	curriculumCtl "schoolhub_backend/internals/features/school/curriculum/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// CurriculumAdminRoutes: /api/a/:school_id/curriculum
func CurriculumAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := curriculumCtl.NewCurriculumController(db, nil)
	teach := featuresMiddleware.RequireSchoolRoles("kurikulum", constants.AcademicRoles...)
	manage := featuresMiddleware.RequireSchoolRoles("program kurikulum", constants.AcademicAdminRoles...)

	g := admin.Group("/curriculum")

	g.Get("/chapters", ctl.ListChapters)
	g.Post("/chapters", manage, ctl.CreateChapter)
	g.Post("/chapters/complete", teach, ctl.CompleteChapter)
	g.Patch("/chapters/:id", manage, ctl.UpdateChapter)
	g.Delete("/chapters/:id", manage, ctl.DeleteChapter)
	g.Delete("/classes/:class_id/chapters/:id/complete", teach, ctl.UncompleteChapter)

	g.Get("/classes/:class_id/sessions", ctl.ListSessions)
	g.Post("/sessions", teach, ctl.CreateSession)
	g.Patch("/sessions/:id", teach, ctl.UpdateSession)
	g.Delete("/sessions/:id", teach, ctl.DeleteSession)
	g.Post("/sessions/:id/complete", teach, ctl.CompleteSession)

	g.Get("/progress", ctl.Overview)
	g.Get("/progress/behind", ctl.Behind)
	g.Get("/progress/stats", ctl.Stats)
	g.Get("/progress/subjects", ctl.BySubject)
	g.Get("/progress/teachers", ctl.TeacherSummary)
	g.Post("/progress/recalculate", teach, ctl.Recalculate)
}
