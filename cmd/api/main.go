// Command api serves the quiz and export study tools over HTTP.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"studykit/internal/adapter"
	"studykit/internal/adapter/mockcontent"
	"studykit/internal/cache"
	"studykit/internal/config"
	"studykit/internal/domain"
	"studykit/internal/handler"
	"studykit/internal/logger"
	"studykit/internal/middleware"
	"studykit/internal/progress"
	"studykit/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Job board storage: Redis when configured, process memory otherwise
	var jobCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		jobCache = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Job board backed by Redis", zap.String("address", cfg.Redis.Address))
	} else {
		jobCache = adapter.NewMemoryCacheAdapter()
		appLogger.Info("Job board backed by process memory")
	}
	board := service.NewJobBoard(jobCache, cfg.Export.JobTTL)

	content := mockcontent.NewProvider(time.Now())

	generation := progress.NewSimulator(
		progress.Config{Step: cfg.Quiz.Generation.Step, Interval: cfg.Quiz.Generation.Interval},
		progress.WithLogger(appLogger.Named("generation")),
	)
	exporting := progress.NewSimulator(
		progress.Config{Step: cfg.Export.Progress.Step, Interval: cfg.Export.Progress.Interval},
		progress.WithLogger(appLogger.Named("export")),
	)

	// Initialize services
	quizService := service.NewQuizService(content, generation, board, cfg.Quiz.RevealDelay, appLogger.Named("quiz"),
		service.WithIdleTTL(cfg.Quiz.SessionTTL))
	exportService := service.NewExportService(content, exporting, board, cfg.Export.ClearOnSuccess, appLogger.Named("export"),
		service.WithIdleTTL(cfg.Export.SessionTTL))
	summaryService := service.NewSummaryService(generation, board, appLogger.Named("summary"))
	defer quizService.Shutdown()
	defer exportService.Shutdown()
	defer summaryService.Shutdown()

	// Initialize handlers
	quizHandler := handler.NewQuizHandler(quizService)
	exportHandler := handler.NewExportHandler(exportService)
	summaryHandler := handler.NewSummaryHandler(summaryService)
	jobHandler := handler.NewJobHandler(board)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := jobCache.Ping(c.UserContext()); err != nil {
			return domain.NewInternalError("job board unavailable", err)
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	handler.RegisterRoutes(app.Group("/api"), quizHandler, exportHandler, summaryHandler, jobHandler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		return app.Listen(":" + strconv.Itoa(cfg.Server.Port))
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Server stopped with error", zap.Error(err))
		quizService.Shutdown()
		exportService.Shutdown()
		summaryService.Shutdown()
		os.Exit(1)
	}
	appLogger.Info("Server exited gracefully")
}
