package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	database "schoolhub_backend/internals/databases"
	helper "schoolhub_backend/internals/helpers"
)

func limiterStorage(prefix string) fiber.Storage {
	if database.Redis == nil {
		return nil // limiter pakai memory bawaan
	}
	return NewRedisStorage(database.Redis, "rl:"+prefix+":")
}

func newLimiter(prefix string, max int, exp time.Duration, msg string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: exp,
		Storage:    limiterStorage(prefix),
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, msg)
		},
	})
}

// Global limiter: untuk semua endpoint biasa
func GlobalRateLimiter() fiber.Handler {
	return newLimiter("global", 120, time.Minute,
		"❌ Terlalu banyak permintaan. Silakan coba lagi nanti.")
}

// Rate limiter untuk login route (lebih ketat)
func LoginRateLimiter() fiber.Handler {
	return newLimiter("login", 5, time.Minute,
		"❌ Terlalu banyak percobaan login. Coba beberapa saat lagi.")
}

// Webhook payment gateway: longgar tapi tetap dibatasi
func WebhookRateLimiter() fiber.Handler {
	return newLimiter("webhook", 300, time.Minute,
		"❌ Terlalu banyak notifikasi.")
}
