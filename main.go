package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"game-platform/config"
	"game-platform/handlers"
	"game-platform/middleware"
	"game-platform/services"
	"game-platform/utils"
	"game-platform/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	db, err := utils.OpenDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	history := workers.NewHistoryWorker(db)
	if err := history.Start(cfg.HistoryFlushInterval); err != nil {
		log.Fatal("failed to start history worker: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := services.Options{
		GroupSize: cfg.MatchGroupSize,
		Recorder:  history,
	}
	if cfg.R2.Enabled() {
		uploader, err := utils.NewR2Uploader(ctx, cfg.R2)
		if err != nil {
			log.Fatal("failed to initialize R2 client: ", err)
		}
		opts.Uploader = uploader
	} else {
		log.Println("⚠️  R2 not configured, patch ledger export disabled")
	}

	// The one platform instance for this process.
	platform := services.NewPlatform(opts)

	admin, err := platform.Registry().RegisterAdmin(cfg.AdminName, cfg.AdminEmail)
	if err != nil {
		log.Fatal("failed to create default admin: ", err)
	}
	log.Printf("✅ Default admin %s (%s)", admin.Name, admin.ID)

	if cfg.SeedDemo {
		if err := services.SeedDemo(platform, services.Caller{UserID: admin.ID, Admin: true}); err != nil {
			log.Fatal("failed to seed demo data: ", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "game-platform",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken))

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID",
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID",
		MaxAge:        86400,
	}))

	handlers.SetupPlatformRoutes(app, handlers.NewPlatformHandler(platform, history))

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ Matchmaking group size: %d", platform.GroupSize())
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := history.Stop(shutdownCtx); err != nil {
		log.Printf("[HISTORY] ❌ %v", err)
	}
}
