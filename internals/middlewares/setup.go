package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"schoolhub_backend/internals/middlewares/logger"
)

// SetupMiddlewares: urutan penting, recover paling luar.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(ReportInternalErrors())
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
}
