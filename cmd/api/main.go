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

	"github.com/noah-isme/kursus-go-api/internal/config"
	"github.com/noah-isme/kursus-go-api/internal/coursecache"
	"github.com/noah-isme/kursus-go-api/internal/database"
	"github.com/noah-isme/kursus-go-api/internal/handler"
	"github.com/noah-isme/kursus-go-api/internal/middleware"
	"github.com/noah-isme/kursus-go-api/internal/models"
	"github.com/noah-isme/kursus-go-api/internal/repository"
	"github.com/noah-isme/kursus-go-api/internal/router"
	"github.com/noah-isme/kursus-go-api/internal/service"
	"github.com/noah-isme/kursus-go-api/pkg/vcs"
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

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Exercise{},
		&models.AvailablePoint{},
		&models.AwardedPoint{},
		&models.Submission{},
		&models.FeedbackQuestion{},
		&models.FeedbackAnswer{},
		&models.StudentEvent{},
		&models.TestScannerCacheEntry{},
	); err != nil {
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
		logger.Warn().Msg("redis url not configured, statistics caching disabled")
	}

	var events *nats.Conn
	if cfg.NATSURL != "" {
		events, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer events.Drain()
	} else {
		logger.Warn().Msg("nats url not configured, refresh events disabled")
	}

	git := vcs.NewGitRunner(vcs.Config{
		Binary:  cfg.GitBinary,
		Timeout: cfg.RefreshTimeout,
		Logger:  logger.With().Str("component", "vcs").Logger(),
	})

	store := coursecache.NewStore(coursecache.NewLayout(cfg.CacheRoot), git, logger.With().Str("component", "coursecache").Logger())

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	userRepo := repository.NewUserRepository(db)

	courseService := service.NewCourseService(courseRepo, exerciseRepo, store, validate, cfg.Timezone, logger)
	exerciseService := service.NewExerciseService(courseRepo, exerciseRepo, service.StoredDeadlinePolicy{}, logger)
	statsService := service.NewStatsService(courseRepo, pointsRepo, submissionRepo, redisClient, cfg.StatsCacheTTL, logger)
	refreshService := service.NewRefreshService(courseRepo, store, service.NewGitRefresher(git), events, cfg.NATSSubject, logger)

	courseHandler := handler.NewCourseHandler(courseService, refreshService, logger)
	exerciseHandler := handler.NewExerciseHandler(exerciseService, logger)
	statsHandler := handler.NewStatsHandler(statsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:   courseHandler,
		ExerciseHandler: exerciseHandler,
		StatsHandler:    statsHandler,
		Identity:        middleware.Identity(userRepo, logger),
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
