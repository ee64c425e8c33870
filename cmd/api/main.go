package main

import (
	"fmt"
	"log"
	"time"

	"task-manager-api/configs"
	v1 "task-manager-api/internal/api/v1"
	"task-manager-api/internal/api/v1/handlers"
	"task-manager-api/internal/middleware"
	"task-manager-api/internal/repository"
	myws "task-manager-api/internal/websocket"
	"task-manager-api/pkg/auth"
	"task-manager-api/pkg/database"
	"task-manager-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

func main() {
	// Inisialisasi logger
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	// Load config
	cfg := configs.LoadConfig()

	// Inisialisasi database
	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database Connected")

	// Bootstrap skema dari definisi statis
	if err := repository.CreateTablesIfNotExist(db); err != nil {
		log.Fatalf("Error creating tables: %v", err)
	}

	// Inisialisasi Redis
	redisClient := database.ConnectRedis(cfg)
	defer redisClient.Close()

	// Service token + password
	authSvc := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)

	// Hub websocket untuk feed event task
	hub := myws.NewHub()
	go hub.Run()

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	h := handlers.New(db, redisClient, authSvc, hub)
	v1.RegisterRoutes(app, h, authSvc)

	// WebSocket: klien menerima event task miliknya sendiri
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", middleware.TokenGate(authSvc), websocket.New(func(conn *websocket.Conn) {
		client := &myws.Client{Conn: conn, UserID: conn.Locals("userID").(int)}
		hub.Register <- client
		defer func() {
			hub.Unregister <- client
		}()
		for {
			// Feed satu arah; baca hanya untuk mendeteksi koneksi putus
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))

	addr := fmt.Sprintf(":%d", cfg.AppPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
