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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hadir-app/hadir-api/internal/config"
	"github.com/hadir-app/hadir-api/internal/database"
	"github.com/hadir-app/hadir-api/internal/handler"
	"github.com/hadir-app/hadir-api/internal/middleware"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/repository"
	"github.com/hadir-app/hadir-api/internal/router"
	"github.com/hadir-app/hadir-api/internal/service"
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

	if err := db.AutoMigrate(&models.User{}, &models.Class{}, &models.Attendance{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, dashboard caching disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	credentialService := service.NewCredentialService(userRepo, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, validate, logger)
	checkInService := service.NewCheckInService(credentialService, attendanceService, validate, logger)
	studentService := service.NewStudentService(userRepo, attendanceRepo, credentialService, validate, logger)
	teacherService := service.NewTeacherService(userRepo, attendanceRepo, validate, logger)
	classService := service.NewClassService(classRepo, userRepo, validate, logger)
	dashboardService := service.NewDashboardService(userRepo, classRepo, attendanceRepo, redisClient, cfg.DashboardCacheTTL, logger)
	seedService := service.NewSeedService(userRepo, classRepo, attendanceRepo, credentialService, cfg.SeedEnabled, cfg.SeedToken, logger)

	attendanceHandler := handler.NewAttendanceHandler(attendanceService, checkInService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	teacherHandler := handler.NewTeacherHandler(teacherService, logger)
	classHandler := handler.NewClassHandler(classService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	seedHandler := handler.NewSeedHandler(seedService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AttendanceHandler: attendanceHandler,
		StudentHandler:    studentHandler,
		TeacherHandler:    teacherHandler,
		ClassHandler:      classHandler,
		DashboardHandler:  dashboardHandler,
		SeedHandler:       seedHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
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
