package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linguabridge/learning-service/internal/cache"
	"github.com/linguabridge/learning-service/internal/config"
	"github.com/linguabridge/learning-service/internal/content"
	"github.com/linguabridge/learning-service/internal/handlers"
	"github.com/linguabridge/learning-service/internal/progress"
	"github.com/linguabridge/learning-service/internal/repositories/postgres"
	"github.com/linguabridge/learning-service/internal/services"
	"github.com/linguabridge/learning-service/internal/utils"
	"github.com/linguabridge/learning-service/internal/validator"
	"github.com/linguabridge/learning-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := slog.Default()
	if sl, ok := logger.(*utils.SlogLogger); ok {
		slogger = sl.GetSlogLogger()
	}

	logger.Info("Starting learning service",
		"environment", cfg.Environment,
		"port", cfg.Port)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	library := content.NewLibrary(logger)
	if err := library.LoadDir(cfg.ContentDir); err != nil {
		logger.Error("Failed to load curriculum", "dir", cfg.ContentDir, "error", err)
		os.Exit(1)
	}

	v := validator.New()
	cacheService := cache.NewRedisCache(redisClient, logger)
	progressRepo := postgres.NewProgressPostgreSQL(db)
	engine := progress.NewEngine(progressRepo, library, logger)
	importer := content.NewImporter(logger)

	sessionService := services.NewSessionService(library, engine, publisher, cacheService, slogger, v)
	contentService := services.NewContentService(library, importer, engine, slogger)
	progressService := services.NewProgressService(engine, cacheService, slogger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	manager := handlers.NewHandlerManager(contentService, sessionService, progressService, logger)
	manager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()
	logger.Info("Learning service listening", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
