package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"

	"schoolhub_backend/internals/configs"
	database "schoolhub_backend/internals/databases"
	overdueScheduler "schoolhub_backend/internals/features/finance/payment_plans/scheduler"
	paymentService "schoolhub_backend/internals/features/finance/payments/service"
	authScheduler "schoolhub_backend/internals/features/users/auth/scheduler"
	middlewares "schoolhub_backend/internals/middlewares"
	routes "schoolhub_backend/internals/route"
)

func main() {
	configs.LoadEnv()
	if configs.InitRollbar() {
		defer configs.CloseRollbar()
	}

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            middlewares.ErrorHandler,
		DisableStartupMessage:   true,
		BodyLimit:               configs.GetEnvInt("BODY_LIMIT_MB", 10) * 1024 * 1024,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          configs.GetEnvList("TRUSTED_PROXIES", "0.0.0.0/0"),
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// HTTP timeout guard (selaras dengan statement_timeout di DB)
		ctx, cancel := context.WithTimeout(c.Context(), time.Duration(configs.GetEnvInt("REQUEST_TIMEOUT_SEC", 5))*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	// 🔌 DB + redis (sebelum middleware: limiter memilih storage saat dibuat)
	database.ConnectDB()
	database.TunePool()
	if configs.GetEnvBool("AUTO_MIGRATE", false) {
		if err := database.AutoMigrate(database.DB); err != nil {
			log.Fatalf("❌ migrate: %v", err)
		}
	}
	database.WarmUpQueries()
	database.ConnectRedis()

	middlewares.SetupMiddlewares(app)

	// ✅ MIDTRANS
	paymentService.InitMidtrans(configs.MidtransServerKey, configs.MidtransProduction)
	if !paymentService.MidtransEnabled() {
		log.Println("⚠️ MIDTRANS_SERVER_KEY kosong, pembayaran online nonaktif")
	}

	// ⏱ scheduler setelah DB siap
	jobsCtx, stopJobs := context.WithCancel(context.Background())
	jobs := []<-chan struct{}{
		authScheduler.StartBlacklistCleanupScheduler(jobsCtx, database.DB),
		overdueScheduler.StartOverdueScheduler(jobsCtx, database.DB),
	}

	// ✅ Routes
	routes.SetupRoutes(app, database.DB)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: server → scheduler → pool DB & redis
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("shutdown err: %v", err)
	}

	stopJobs()
	for _, done := range jobs {
		select {
		case <-done:
		case <-ctx.Done():
			log.Println("⚠️ scheduler tidak berhenti tepat waktu")
		}
	}

	database.CloseRedis()
	database.Close()
	log.Println("👋 Bye")
}
