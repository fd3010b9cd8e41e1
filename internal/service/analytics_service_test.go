package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/havers0n/my-awesome-project-sub004/internal/cache"
	"github.com/havers0n/my-awesome-project-sub004/internal/config"
	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/havers0n/my-awesome-project-sub004/internal/ledger"
	"github.com/havers0n/my-awesome-project-sub004/internal/repository/memory"
)

func seedLedger(t *testing.T) (*memory.LedgerStore, *LedgerService) {
	t.Helper()
	store := memory.NewLedgerStore()
	ctx := context.Background()

	products := []domain.Product{
		{ID: "p-1", Name: "fast mover", Price: 100},
		{ID: "p-2", Name: "slow mover", Price: 40},
	}
	for i := range products {
		if err := store.SaveProduct(ctx, &products[i]); err != nil {
			t.Fatal(err)
		}
	}

	engine := ledger.NewEngine(store, ledger.Config{})
	svc := NewLedgerService(engine, store)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.AppendEntry(ctx, "p-1", domain.EntryReceipt, 500, base); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AppendEntry(ctx, "p-2", domain.EntryReceipt, 100, base); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		ts := base.AddDate(0, 0, i+1)
		if _, err := svc.AppendEntry(ctx, "p-1", domain.EntrySale, -20, ts); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.AppendEntry(ctx, "p-2", domain.EntrySale, -5, ts); err != nil {
			t.Fatal(err)
		}
	}

	return store, svc
}

func newAnalytics(store *memory.LedgerStore) *AnalyticsService {
	return NewAnalyticsService(store, cache.NewNoopAnalysisCache(), config.AnalyticsConfig{})
}

func TestRunAbcAnalysisOverLedger(t *testing.T) {
	store, _ := seedLedger(t)
	svc := newAnalytics(store)

	result, err := svc.RunAbcAnalysis(context.Background(), nil, domain.TimeRange{})
	if err != nil {
		t.Fatalf("RunAbcAnalysis: %v", err)
	}

	// p-1 sells 200 of 250 units: exactly 80%, the class A boundary.
	if result.TotalVolume != 250 {
		t.Errorf("total volume = %d, want 250", result.TotalVolume)
	}
	if len(result.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(result.Items))
	}
	if result.Items[0].ProductID != "p-1" || result.Items[0].Class != domain.AbcClassA {
		t.Errorf("top item = %+v, want p-1 in class A", result.Items[0])
	}
}

func TestRunAbcAnalysisUnknownProduct(t *testing.T) {
	store, _ := seedLedger(t)
	svc := newAnalytics(store)

	_, err := svc.RunAbcAnalysis(context.Background(), []string{"p-1", "ghost"}, domain.TimeRange{})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestRunXyzAnalysisOverLedger(t *testing.T) {
	store, _ := seedLedger(t)
	svc := newAnalytics(store)

	result, err := svc.RunXyzAnalysis(context.Background(), []string{"p-1"}, domain.TimeRange{}, 0)
	if err != nil {
		t.Fatalf("RunXyzAnalysis: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(result.Items))
	}
	// One sale of 20 every day: perfectly stable demand.
	if result.Items[0].Class != domain.XyzClassX {
		t.Errorf("class = %s (cv %f), want X", result.Items[0].Class, result.Items[0].VariabilityScore)
	}
	if result.BucketHours != 24 {
		t.Errorf("bucket hours = %d, want 24", result.BucketHours)
	}
}

func TestForecastOverLedger(t *testing.T) {
	store, _ := seedLedger(t)
	svc := newAnalytics(store)

	result, err := svc.Forecast(context.Background(), "p-1", 5, nil)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if result.ProductID != "p-1" || result.HorizonDays != 5 {
		t.Errorf("result = %+v, want p-1 over 5 days", result)
	}

	if _, err := svc.Forecast(context.Background(), "ghost", 5, nil); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("unknown product err = %v, want ErrProductNotFound", err)
	}
}

func TestLedgerServiceStateAndReport(t *testing.T) {
	_, svc := seedLedger(t)
	ctx := context.Background()

	st, err := svc.GetCurrentState(ctx, "p-1")
	if err != nil {
		t.Fatalf("GetCurrentState: %v", err)
	}
	if st.Quantity != 300 || st.Status != domain.StatusInStock {
		t.Errorf("state = %+v, want quantity 300 in stock", st)
	}

	history, err := svc.GetHistory(ctx, "p-1", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 11 {
		t.Errorf("history has %d entries, want 11", len(history))
	}

	// Drain the product and confirm the stockout shows up in the report.
	if _, err := svc.AppendEntry(ctx, "p-1", domain.EntrySale, -300, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	intervals, err := svc.GetOutOfStockReport(ctx, "p-1", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetOutOfStockReport: %v", err)
	}
	if len(intervals) != 1 || intervals[0].End != nil {
		t.Fatalf("intervals = %+v, want one open interval", intervals)
	}
}
