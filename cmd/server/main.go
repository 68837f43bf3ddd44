package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recopesa/intake-backend/internal/api"
	"github.com/recopesa/intake-backend/internal/cache"
	"github.com/recopesa/intake-backend/internal/config"
	"github.com/recopesa/intake-backend/internal/repository/postgres"
	"github.com/recopesa/intake-backend/internal/service"
	"github.com/recopesa/intake-backend/internal/storage"
	"github.com/recopesa/intake-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := postgres.InitSchema(ctx, db.DB.DB); err != nil {
		cancel()
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	cancel()

	// Initialize caches, falling back to no-op when Redis is unavailable
	summaryCache, configCache, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("redis unavailable, caching disabled")
		summaryCache, configCache = cache.NewNoop()
	}

	// Optional export archive
	var archive storage.ObjectStorage
	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Log.Warn().Err(err).Msg("export archive unavailable, exports will not be archived")
		} else {
			archive = client
		}
	}

	// Initialize repositories and services
	reportRepo := postgres.NewReportRepository(db)
	productRepo := postgres.NewProductRepository(db)
	supplierRepo := postgres.NewSupplierRepository(db)
	userRepo := postgres.NewUserRepository(db)
	configRepo := postgres.NewConfigRepository(db)

	configService := service.NewConfigService(configRepo, configCache)
	reportService := service.NewReportService(reportRepo, productRepo, configService, summaryCache)
	catalogService := service.NewCatalogService(productRepo, supplierRepo, userRepo)
	exportService := service.NewExportService(reportService, archive)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		Reports: reportService,
		Catalog: catalogService,
		Config:  configService,
		Exports: exportService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
