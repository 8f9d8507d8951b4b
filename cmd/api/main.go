package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"alfredoptarigan/career-assistant/internal/config"
	"alfredoptarigan/career-assistant/internal/handlers"
	"alfredoptarigan/career-assistant/internal/logger"
	"alfredoptarigan/career-assistant/internal/middleware"
	"alfredoptarigan/career-assistant/internal/repositories"
	"alfredoptarigan/career-assistant/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("config loaded", zap.String("env", cfg.Server.Env))

	// Initialize database. The API keeps serving without it: quotas fail open
	// and cache writes are skipped.
	var db *gorm.DB
	if cfg.DatabaseConfigured() {
		db, err = config.InitDatabase(cfg, zlog)
		if err != nil {
			zlog.Error("database unavailable, continuing without persistence", zap.Error(err))
			db = nil
		}
	} else {
		zlog.Warn("database credentials not configured, continuing without persistence")
	}

	// Initialize repositories
	cacheRepo := repositories.NewComparisonCacheRepository(db)
	requestRepo := repositories.NewUserRequestRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Gemini AI
	var model services.LanguageModel
	modelConfigured := false
	geminiService, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
		MaxRetries:  cfg.Gemini.MaxRetries,
		RetryDelay:  cfg.Gemini.RetryDelay,
	}, zlog)
	if err != nil {
		zlog.Warn("language model unavailable, only session resumes will succeed", zap.Error(err))
		model = services.NewUnconfiguredModel()
	} else {
		model = geminiService
		modelConfigured = true
		zlog.Info("gemini initialized", zap.String("model", geminiService.ModelName()))
	}

	// Initialize services
	var archive services.ReportArchive
	if cfg.Storage.ArchiveReports {
		storageService := services.NewStorageService(cfg.Storage.ReportPath)
		if err := storageService.EnsureDir(); err != nil {
			zlog.Fatal("failed to create report directory", zap.Error(err))
		}
		archive = services.NewReportArchive(storageService, reportRepo, zlog)
	}

	extractor := services.NewDocumentExtractor(services.ExtractorOptions{
		FetchTimeout: cfg.Fetch.Timeout,
		MaxFileSize:  cfg.Storage.MaxFileSize,
	}, zlog)
	limiter := services.NewRateLimiter(requestRepo, services.RateLimitOptions{
		GlobalMax: cfg.RateLimit.GlobalMax,
		PerIPMax:  cfg.RateLimit.PerIPMax,
		Window:    cfg.RateLimit.Window,
	}, zlog)
	analyzer := services.NewCandidacyAnalyzer(model, zlog)
	resolver := services.NewComparisonResolver(cacheRepo, analyzer, zlog)
	renderer := services.NewReportRenderer(zlog)
	processes := services.NewProcessStore(cfg.Process.Capacity, cfg.Process.TTL)

	app := services.NewApplicationService(processes, extractor, limiter, resolver, renderer, archive, zlog)
	zlog.Info("services initialized")

	// Start housekeeping
	janitor := services.NewJanitor(cacheRepo, archive, services.JanitorOptions{
		Interval:     cfg.Housekeeping.Interval,
		CacheMaxAge:  cfg.Housekeeping.CacheMaxAge,
		ReportMaxAge: cfg.Housekeeping.ReportMaxAge,
	}, zlog)
	janitor.Start(ctx)

	// Initialize handlers
	processHandler := handlers.NewProcessHandler(app, cfg.Storage.MaxFileSize)
	statusHandler := handlers.NewStatusHandler(app)
	healthHandler := handlers.NewHealthHandler(cfg.DatabaseConfigured(), modelConfigured, cfg.Gemini.Model)

	// Create Fiber app
	server := fiber.New(fiber.Config{
		AppName:      "Career Assistant API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(2*cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	handlers.RegisterRoutes(
		server.Group("/api"),
		processHandler,
		statusHandler,
		healthHandler,
		middleware.BurstLimiter(cfg.RateLimit.BurstMax, cfg.RateLimit.BurstWindow),
	)

	server.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Career Assistant API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/process",
				"GET /api/status/:process_id",
				"GET /api/download/:process_id",
				"GET /api/health",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		janitor.Stop()
		cancel()
		if err := server.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := server.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}
