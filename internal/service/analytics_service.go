// internal/service/analytics_service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/havers0n/my-awesome-project-sub004/internal/analytics"
	"github.com/havers0n/my-awesome-project-sub004/internal/cache"
	"github.com/havers0n/my-awesome-project-sub004/internal/config"
	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/havers0n/my-awesome-project-sub004/internal/repository"
)

// historyLoadConcurrency bounds how many product histories are loaded in
// parallel for a catalog-wide analysis.
const historyLoadConcurrency = 8

// AnalyticsService runs the ABC, XYZ and forecast computations over ledger
// histories. ABC and XYZ results are cached; forecasts are computed fresh.
type AnalyticsService struct {
	store repository.LedgerStore
	cache cache.AnalysisCache
	cfg   config.AnalyticsConfig
}

func NewAnalyticsService(store repository.LedgerStore, analysisCache cache.AnalysisCache, cfg config.AnalyticsConfig) *AnalyticsService {
	return &AnalyticsService{store: store, cache: analysisCache, cfg: cfg}
}

// RunAbcAnalysis ranks products by sales volume within the window and assigns
// A/B/C classes by cumulative share. An empty productIDs slice means the whole
// catalog.
func (s *AnalyticsService) RunAbcAnalysis(ctx context.Context, productIDs []string, window domain.TimeRange) (*domain.AbcAnalysisResult, error) {
	if cached, ok, err := s.cache.GetAbc(ctx, productIDs, window); err != nil {
		log.Warn().Err(err).Msg("abc cache read failed, computing")
	} else if ok {
		log.Debug().Msg("abc analysis served from cache")
		return cached, nil
	}

	products, histories, err := s.loadHistories(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	result := analytics.AnalyzeABC(products, histories, window, analytics.AbcConfig{
		ClassAThreshold: s.cfg.AbcClassAThreshold,
		ClassBThreshold: s.cfg.AbcClassBThreshold,
	})

	if err := s.cache.SetAbc(ctx, productIDs, window, result); err != nil {
		log.Warn().Err(err).Msg("abc cache write failed")
	}

	log.Info().
		Int("products", len(products)).
		Int("ranked", len(result.Items)).
		Msg("abc analysis computed")

	return result, nil
}

// RunXyzAnalysis classifies demand regularity per product from bucketed sale
// volumes within the window. bucketHours zero falls back to the configured
// bucket size.
func (s *AnalyticsService) RunXyzAnalysis(ctx context.Context, productIDs []string, window domain.TimeRange, bucketHours int) (*domain.XyzAnalysisResult, error) {
	if bucketHours <= 0 {
		bucketHours = s.cfg.XyzBucketHours
	}
	if bucketHours <= 0 {
		bucketHours = int(analytics.DefaultBucketSize / time.Hour)
	}

	if cached, ok, err := s.cache.GetXyz(ctx, productIDs, window, bucketHours); err != nil {
		log.Warn().Err(err).Msg("xyz cache read failed, computing")
	} else if ok {
		log.Debug().Msg("xyz analysis served from cache")
		return cached, nil
	}

	products, histories, err := s.loadHistories(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	result := analytics.AnalyzeXYZ(products, histories, window, time.Duration(bucketHours)*time.Hour, analytics.XyzConfig{
		StableMax:   s.cfg.XyzStableMax,
		VariableMax: s.cfg.XyzVariableMax,
	})

	if err := s.cache.SetXyz(ctx, productIDs, window, bucketHours, result); err != nil {
		log.Warn().Err(err).Msg("xyz cache write failed")
	}

	log.Info().
		Int("products", len(products)).
		Msg("xyz analysis computed")

	return result, nil
}

// Forecast projects demand for a single product over horizonDays, optionally
// under a price override.
func (s *AnalyticsService) Forecast(ctx context.Context, productID string, horizonDays int, priceOverride *float64) (*domain.ForecastResult, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.LoadHistory(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	result := analytics.BuildForecast(*product, entries, horizonDays, priceOverride, analytics.ForecastConfig{
		LookbackDays: s.cfg.ForecastLookbackDays,
	})

	log.Info().
		Str("product_id", productID).
		Int("horizon_days", horizonDays).
		Int("forecast", result.ForecastedQuantity).
		Bool("low_confidence", result.LowConfidence).
		Msg("demand forecast computed")

	return result, nil
}

// InvalidateAnalysisCache drops all cached ABC/XYZ results. The ingest watcher
// calls it after a movement batch lands.
func (s *AnalyticsService) InvalidateAnalysisCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// loadHistories resolves the requested products and loads their ledger
// histories with bounded parallelism. Unknown product IDs fail the whole
// request rather than being silently skipped.
func (s *AnalyticsService) loadHistories(ctx context.Context, productIDs []string) ([]domain.Product, map[string][]domain.LedgerEntry, error) {
	var products []domain.Product

	if len(productIDs) == 0 {
		catalog, err := s.store.LoadProductCatalog(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load product catalog: %w", err)
		}
		products = catalog
	} else {
		products = make([]domain.Product, 0, len(productIDs))
		for _, id := range productIDs {
			p, err := s.store.GetProduct(ctx, id)
			if err != nil {
				return nil, nil, err
			}
			products = append(products, *p)
		}
	}

	histories := make(map[string][]domain.LedgerEntry, len(products))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyLoadConcurrency)

	for _, p := range products {
		productID := p.ID
		g.Go(func() error {
			entries, err := s.store.LoadHistory(gctx, productID)
			if err != nil {
				return fmt.Errorf("load history for %s: %w", productID, err)
			}
			mu.Lock()
			histories[productID] = entries
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return products, histories, nil
}
