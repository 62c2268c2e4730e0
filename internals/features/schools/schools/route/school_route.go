package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	schoolCtl "schoolhub_backend/internals/features/schools/schools/controller"
)

// SchoolOwnerRoutes: /api/o/schools
func SchoolOwnerRoutes(owner fiber.Router, db *gorm.DB) {
	ctl := schoolCtl.NewSchoolController(db, nil, nil)
	g := owner.Group("/schools")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Get("/:id", ctl.Get)
	g.Patch("/:id", ctl.Update)
	g.Delete("/:id", ctl.Delete)
	g.Post("/:id/admins", ctl.CreateAdmin)
}

// SchoolUserRoutes: /api/u/schools
func SchoolUserRoutes(user fiber.Router, db *gorm.DB) {
	ctl := schoolCtl.NewSchoolController(db, nil, nil)
	user.Get("/schools/current", ctl.Current)
}
