// cmd/server/main.go
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

	"github.com/havers0n/my-awesome-project-sub004/internal/api"
	"github.com/havers0n/my-awesome-project-sub004/internal/cache"
	"github.com/havers0n/my-awesome-project-sub004/internal/config"
	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/havers0n/my-awesome-project-sub004/internal/ledger"
	"github.com/havers0n/my-awesome-project-sub004/internal/repository/postgres"
	"github.com/havers0n/my-awesome-project-sub004/internal/service"
	"github.com/havers0n/my-awesome-project-sub004/pkg/logger"
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

	store := postgres.NewLedgerStore(db)

	// Initialize analysis cache (noop when redis is disabled)
	analysisCache, err := cache.NewAnalysisCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, analysis caching disabled")
		analysisCache = cache.NewNoopAnalysisCache()
	}

	// Initialize ledger engine and services
	engine := ledger.NewEngine(store, ledger.Config{
		LowStockThreshold: cfg.Analytics.LowStockThreshold,
		AppendRetries:     cfg.Analytics.AppendRetries,
	})
	engine.OnStatusTransition(func(productID string, from, to domain.Status, at time.Time) {
		logger.Log.Info().
			Str("product_id", productID).
			Str("from", string(from)).
			Str("to", string(to)).
			Time("at", at).
			Msg("Stock status changed")
	})

	ledgerService := service.NewLedgerService(engine, store)
	analyticsService := service.NewAnalyticsService(store, analysisCache, cfg.Analytics)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		LedgerService:    ledgerService,
		AnalyticsService: analyticsService,
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
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
