package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/complyhub/compliance-management-api/internal/system/cache"
	"github.com/complyhub/compliance-management-api/internal/system/config"
	"github.com/complyhub/compliance-management-api/internal/system/database"
	"github.com/complyhub/compliance-management-api/internal/system/database/provider"
	"github.com/complyhub/compliance-management-api/internal/system/log"
	"github.com/complyhub/compliance-management-api/internal/system/mailer"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
	"github.com/complyhub/compliance-management-api/internal/system/middleware"
	"github.com/complyhub/compliance-management-api/internal/system/storage"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Set Gin to release mode by default (can be overridden by GIN_MODE env var)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Server"))
	logger.Info("Starting Compliance Management API Server...",
		log.String("version", version), log.String("build_date", buildDate))

	// A local .env is optional; real deployments pass COMPLIANCE_MGT_* variables directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to read .env file", log.Error(err))
	}

	// Priority: CONFIG_PATH env var > repository/conf/deployment.yaml > cmd/server/repository/conf/deployment.yaml
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", log.Error(err))
	}
	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, nil); err != nil {
		logger.Warn("Invalid log level, keeping default", log.String("level", cfg.Logging.Level), log.Error(err))
	}
	logger.Info("Configuration loaded successfully",
		log.String("config_path", configPath), log.String("log_level", logger.Level()))

	db, err := database.Initialize(&cfg.Database.Compliance)
	if err != nil {
		logger.Fatal("Failed to initialize database", log.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.HealthCheck(ctx); err != nil {
		logger.Fatal("Database health check failed", log.Error(err))
	}
	provider.InitDBProvider(db)
	logger.Info("Database connection established successfully")

	objects, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize evidence storage", log.Error(err))
	}

	var objCache cache.Store = cache.NoopCache{}
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize redis", log.Error(err))
		}
		objCache = redisCache
	}

	recorder := metrics.NewRecorder()

	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(),
		middleware.CorrelationIDMiddleware(),
		middleware.MetricsMiddleware(recorder),
	)
	if cfg.CORS.Enabled {
		router.Use(middleware.CORSMiddleware(middleware.CORSOptions{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
		}))
	}
	router.Use(middleware.IdentityMiddleware(cfg.Security.UserIDHeader))

	registerServices(router, cfg, serviceDeps{
		dbClient: provider.GetDBProvider().GetComplianceDBClient(),
		db:       db,
		objects:  objects,
		cache:    objCache,
		locker:   objCache,
		mailer:   mailer.New(cfg.Mailer),
		recorder: recorder,
	})

	server := &http.Server{
		Addr:           cfg.Server.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		logger.Info("Starting HTTP server...", log.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", log.Error(err))
		}
	}()

	logger.Info("Server is running", log.String("address", server.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", log.Error(err))
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			logger.Warn("Failed to close redis connection", log.Error(err))
		}
	}
	if err := provider.GetDBProviderCloser().Close(); err != nil {
		logger.Warn("Failed to close database", log.Error(err))
	}

	logger.Info("Server exited gracefully")
}
