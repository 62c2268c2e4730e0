package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	roleCtl "schoolhub_backend/internals/features/users/roles/controller"
	featuresMiddleware "schoolhub_backend/internals/middlewares/features"

	"schoolhub_backend/internals/constants"
)

// RoleOwnerRoutes: /api/o/roles
func RoleOwnerRoutes(owner fiber.Router, db *gorm.DB) {
	ctl := roleCtl.NewRoleController(db, nil)
	g := owner.Group("/roles")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Patch("/:id", ctl.Update)
	g.Delete("/:id", ctl.Delete)
}

// RoleAdminRoutes: /api/a/:school_id/user-roles (admin sekolah saja)
func RoleAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := roleCtl.NewRoleController(db, nil)
	g := admin.Group("/user-roles",
		featuresMiddleware.RequireSchoolRoles("user role", constants.AdminOnly...),
	)
	g.Get("/", ctl.ListSchoolUserRoles)
	g.Post("/", ctl.AssignUserRole)
	g.Delete("/:id", ctl.RevokeUserRole)
}
