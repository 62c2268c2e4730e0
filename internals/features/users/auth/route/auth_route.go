// file: internals/features/users/auth/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authController "schoolhub_backend/internals/features/users/auth/controller"
	rateLimiter "schoolhub_backend/internals/middlewares"
)

// AuthRoutes: /api/auth (login & refresh publik, sisanya butuh JWT)
func AuthRoutes(app *fiber.App, db *gorm.DB, protected fiber.Handler) {
	ctl := authController.NewAuthController(db, nil)

	base := app.Group("/api/auth")
	base.Post("/login", rateLimiter.LoginRateLimiter(), ctl.Login)
	base.Post("/login-google", rateLimiter.LoginRateLimiter(), ctl.LoginGoogle)
	base.Post("/refresh-token", ctl.RefreshToken)
	base.Post("/logout", ctl.Logout)

	base.Get("/me", protected, ctl.Me)
	base.Post("/change-password", protected, ctl.ChangePassword)
}
