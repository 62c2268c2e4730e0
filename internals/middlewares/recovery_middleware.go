package middlewares

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rollbar/rollbar-go"

	helper "schoolhub_backend/internals/helpers"
)

// RecoveryMiddleware menangkap panic, lapor ke Rollbar, lalu jadi 500.
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Printf("❌ [PANIC] %s %s: %v", c.Method(), c.OriginalURL(), e)
			rollbar.Critical(fmt.Errorf("panic: %v", e), requestExtras(c))
		},
	})
}

// ErrorHandler: semua error yang lolos dari handler dibungkus ke envelope standar.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := helper.StatusFor(err)
	msg := helper.UserMessage(err)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status, msg = fe.Code, fe.Message
	}

	if status >= fiber.StatusInternalServerError {
		log.Printf("❌ [ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
		rollbar.Error(err, requestExtras(c))
		msg = "Terjadi kesalahan pada server"
	}
	return helper.JsonError(c, status, msg)
}

// ReportInternalErrors: error 5xx yang sudah dijawab handler (helper.FromServiceError)
// tetap dikirim ke Rollbar.
func ReportInternalErrors() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if ie, ok := c.Locals("internal_error").(error); ok && ie != nil {
			log.Printf("❌ [ERROR] %s %s: %v", c.Method(), c.OriginalURL(), ie)
			rollbar.Error(ie, requestExtras(c))
		}
		return err
	}
}

func requestExtras(c *fiber.Ctx) map[string]interface{} {
	return map[string]interface{}{
		"method":     c.Method(),
		"path":       c.OriginalURL(),
		"request_id": c.Locals("reqid"),
		"ip":         c.IP(),
	}
}
