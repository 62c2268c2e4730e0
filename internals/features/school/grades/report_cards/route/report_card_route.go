package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	reportCtl "schoolhub_backend/internals/features/school/grades/report_cards/controller"
	"schoolhub_backend/internals/helpers/mailer"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// ReportCardAdminRoutes: /api/a/:school_id/report-cards & /report-card-templates
func ReportCardAdminRoutes(admin fiber.Router, db *gorm.DB, m mailer.Mailer) {
	ctl := reportCtl.NewReportCardController(db, nil, m)
	manage := featuresMiddleware.RequireSchoolRoles("rapor", constants.GradeValidatorRoles...)
	comment := featuresMiddleware.RequireSchoolRoles("komentar rapor", constants.AcademicRoles...)

	g := admin.Group("/report-cards")
	g.Get("/", ctl.List)
	g.Get("/delivery-status", ctl.DeliveryStatus)
	g.Get("/classes/:class_id/stats", ctl.ClassStats)
	g.Post("/generate", manage, ctl.Generate)
	g.Post("/generate-class", manage, ctl.BulkGenerate)
	g.Get("/:id", ctl.Get)
	g.Post("/:id/send", manage, ctl.Send)
	g.Post("/:id/delivered", manage, ctl.MarkDelivered)
	g.Post("/:id/viewed", ctl.MarkViewed)
	g.Put("/:id/comments", comment, ctl.UpsertComment)
	g.Put("/:id/homeroom-comment", comment, ctl.HomeroomComment)

	t := admin.Group("/report-card-templates")
	t.Get("/", ctl.ListTemplates)
	t.Post("/", manage, ctl.CreateTemplate)
	t.Patch("/:id", manage, ctl.UpdateTemplate)
	t.Delete("/:id", manage, ctl.DeleteTemplate)
}
