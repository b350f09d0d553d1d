package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nptel-tracker-api/internal/config"
	"github.com/noah-isme/nptel-tracker-api/internal/database"
	"github.com/noah-isme/nptel-tracker-api/internal/handler"
	"github.com/noah-isme/nptel-tracker-api/internal/middleware"
	"github.com/noah-isme/nptel-tracker-api/internal/repository"
	"github.com/noah-isme/nptel-tracker-api/internal/router"
	"github.com/noah-isme/nptel-tracker-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	importJobRepo := repository.NewImportJobRepository(db)

	importEvents := service.NewNATSImportPublisher(natsConn, "", logger)

	studentService := service.NewStudentService(studentRepo, logger)
	reportService := service.NewReportService(studentRepo, redisClient, cfg.ReportCacheTTL, logger)
	dashboardService := service.NewDashboardService(studentRepo, redisClient, cfg.ReportCacheTTL, logger)
	importService := service.NewImportService(studentRepo, importJobRepo, importEvents, validate, cfg.ImportMaxSizeMB, cfg.CourseTypePrefix, logger)

	studentHandler := handler.NewStudentHandler(studentService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	importHandler := handler.NewImportHandler(importService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StudentHandler:   studentHandler,
		ReportHandler:    reportHandler,
		DashboardHandler: dashboardHandler,
		ImportHandler:    importHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
