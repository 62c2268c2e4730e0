package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	messageCtl "schoolhub_backend/internals/features/school/messages/controller"
	"schoolhub_backend/internals/helpers/mailer"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"
)

// MessageAdminRoutes: /api/a/:school_id/messages (staf → orang tua)
func MessageAdminRoutes(admin fiber.Router, db *gorm.DB, m mailer.Mailer) {
	ctl := messageCtl.NewMessageController(db, nil, m)
	broadcast := featuresMiddleware.RequireSchoolRoles("pesan kelas", constants.AcademicRoles...)

	g := admin.Group("/messages")
	g.Post("/", ctl.Send)
	g.Post("/broadcast", broadcast, ctl.Broadcast)
	g.Get("/inbox", ctl.Inbox)
	g.Get("/outbox", ctl.Outbox)
	g.Get("/unread-count", ctl.UnreadCount)
	g.Get("/:id/thread", ctl.Thread)
	g.Post("/:id/reply", ctl.Reply)
	g.Post("/:id/read", ctl.MarkRead)
}

// MessageUserRoutes: /api/u/messages (sisi orang tua)
func MessageUserRoutes(user fiber.Router, db *gorm.DB, m mailer.Mailer) {
	ctl := messageCtl.NewMessageController(db, nil, m)

	g := user.Group("/messages")
	g.Get("/inbox", ctl.Inbox)
	g.Get("/unread-count", ctl.UnreadCount)
	g.Get("/:id/thread", ctl.Thread)
	g.Post("/:id/reply", ctl.Reply)
	g.Post("/:id/read", ctl.MarkRead)
}
