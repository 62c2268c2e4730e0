package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	conductCtl "schoolhub_backend/internals/features/school/conduct/controller"
	"schoolhub_backend/internals/helpers/mailer"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// ConductAdminRoutes: /api/a/:school_id/conduct
func ConductAdminRoutes(admin fiber.Router, db *gorm.DB, m mailer.Mailer) {
	ctl := conductCtl.NewConductController(db, nil, m)
	record := featuresMiddleware.RequireSchoolRoles("catatan perilaku", constants.ConductRoles...)
	decide := featuresMiddleware.RequireSchoolRoles("keputusan disiplin", constants.RoleSchoolAdmin, constants.RoleDisciplineOfficer)

	g := admin.Group("/conduct", record)

	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Get("/students/:student_id/summary", ctl.StudentSummary)
	g.Get("/:id", ctl.Get)
	g.Patch("/:id", ctl.Update)
	g.Delete("/:id", decide, ctl.Delete)
	g.Patch("/:id/status", decide, ctl.UpdateStatus)

	g.Post("/:id/follow-ups", ctl.AddFollowUp)
	g.Post("/:id/follow-ups/:follow_up_id/complete", ctl.CompleteFollowUp)
	g.Delete("/:id/follow-ups/:follow_up_id", decide, ctl.DeleteFollowUp)

	g.Post("/:id/parent/notify", ctl.NotifyParent)
	g.Post("/:id/parent/acknowledge", ctl.AcknowledgeParent)
}
