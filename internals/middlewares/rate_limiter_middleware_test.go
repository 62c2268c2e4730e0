package middlewares

import (
	"net/http/httptest"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	database "schoolhub_backend/internals/databases"
)

func TestLimiterStorageMemoryWithoutRedis(t *testing.T) {
	prev := database.Redis
	database.Redis = nil
	t.Cleanup(func() { database.Redis = prev })

	assert.Nil(t, limiterStorage("global"))
}

func TestLimiterStorageUsesRedisWhenConnected(t *testing.T) {
	prev := database.Redis
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	database.Redis = rdb
	t.Cleanup(func() {
		database.Redis = prev
		_ = rdb.Close()
	})

	st, ok := limiterStorage("global").(*RedisStorage)
	require.True(t, ok, "limiter harus memakai RedisStorage kalau client ada")
	assert.Equal(t, "rl:global:", st.prefix)
	assert.Same(t, rdb, st.client)
}

func TestLoginRateLimiterBlocksAfterMax(t *testing.T) {
	prev := database.Redis
	database.Redis = nil
	t.Cleanup(func() { database.Redis = prev })

	app := fiber.New()
	app.Post("/login", LoginRateLimiter(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
