package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/havers0n/my-awesome-project-sub004/internal/cache"
	"github.com/havers0n/my-awesome-project-sub004/internal/config"
	"github.com/havers0n/my-awesome-project-sub004/internal/ingest"
	"github.com/havers0n/my-awesome-project-sub004/internal/ledger"
	"github.com/havers0n/my-awesome-project-sub004/internal/repository/postgres"
	"github.com/havers0n/my-awesome-project-sub004/internal/service"
	"github.com/havers0n/my-awesome-project-sub004/internal/storage"
	"github.com/havers0n/my-awesome-project-sub004/pkg/logger"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	// Initialize object storage
	objects, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Ingest.Endpoint,
		AccessKey: cfg.Ingest.AccessKey,
		SecretKey: cfg.Ingest.SecretKey,
		Bucket:    cfg.Ingest.Bucket,
		Region:    cfg.Ingest.Region,
		UseSSL:    cfg.Ingest.UseSSL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Initialize Database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	store := postgres.NewLedgerStore(db)

	analysisCache, err := cache.NewAnalysisCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, analysis caching disabled")
		analysisCache = cache.NewNoopAnalysisCache()
	}

	// Initialize Services
	engine := ledger.NewEngine(store, ledger.Config{
		LowStockThreshold: cfg.Analytics.LowStockThreshold,
		AppendRetries:     cfg.Analytics.AppendRetries,
	})
	ledgerService := service.NewLedgerService(engine, store)
	analyticsService := service.NewAnalyticsService(store, analysisCache, cfg.Analytics)
	ingestService := ingest.NewService(objects, ledgerService, cfg.Ingest.DownloadDir)

	// Start the watcher; a finished batch invalidates cached analyses
	watcher := ingest.NewWatcher(ingestService, cfg.Ingest.Prefix, time.Duration(cfg.Ingest.PollIntervalSec)*time.Second)
	watcher.OnBatchIngested(func(ctx context.Context) {
		if err := analyticsService.InvalidateAnalysisCache(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to invalidate analysis cache")
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	// Register routes
	r := mux.NewRouter()
	ingestHandler := ingest.NewHandler(ingestService, watcher, cfg.Ingest.Prefix)
	ingestHandler.RegisterRoutes(r)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Ingest server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
