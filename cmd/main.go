package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cashmere-labs/settlement-service/internal/api/routes"
	"github.com/cashmere-labs/settlement-service/internal/domain/services/admin"
	"github.com/cashmere-labs/settlement-service/internal/domain/services/transfer"
	"github.com/cashmere-labs/settlement-service/internal/infrastructure/adapters/messenger"
	"github.com/cashmere-labs/settlement-service/internal/infrastructure/config"
	"github.com/cashmere-labs/settlement-service/internal/infrastructure/database"
	"github.com/cashmere-labs/settlement-service/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run migrations
	if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	custodianKey, err := cfg.Custodian.Key()
	if err != nil {
		logger.Fatal("Failed to parse custodian key", zap.Error(err))
	}

	repo := repositories.NewSettlementRepository(db)
	tokenMessenger := messenger.NewClient(messenger.Config{
		BaseURL:     cfg.Messenger.BaseURL,
		Environment: cfg.Messenger.Environment,
		Timeout:     time.Duration(cfg.Messenger.Timeout) * time.Second,
	}, custodianKey, logger)

	adminSvc := admin.NewService(repo, custodianKey.PublicKey(), logger)
	transferSvc := transfer.NewService(repo, tokenMessenger, logger)

	router := routes.SetupRoutes(db, adminSvc, transferSvc, logger)

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("environment", cfg.Environment),
			zap.String("custodian", custodianKey.PublicKey().String()))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Give outstanding requests time to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

func newLogger(level, environment string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zapCfg.Build()
}
