package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
)

func saleAt(ts time.Time, change int) domain.LedgerEntry {
	return domain.LedgerEntry{EntryType: domain.EntrySale, Change: change, Timestamp: ts}
}

func receiptAt(ts time.Time, change int) domain.LedgerEntry {
	return domain.LedgerEntry{EntryType: domain.EntryReceipt, Change: change, Timestamp: ts}
}

func TestAnalyzeABCParetoSplit(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeRange{From: base, To: base.AddDate(0, 1, 0)}

	products := []domain.Product{
		{ID: "p-high", Name: "high runner"},
		{ID: "p-mid", Name: "steady seller"},
		{ID: "p-low", Name: "slow mover"},
	}
	histories := map[string][]domain.LedgerEntry{
		"p-high": {saleAt(base.AddDate(0, 0, 1), -100)},
		"p-mid":  {saleAt(base.AddDate(0, 0, 2), -50)},
		"p-low":  {saleAt(base.AddDate(0, 0, 3), -10)},
	}

	result := AnalyzeABC(products, histories, window, AbcConfig{})

	if result.TotalVolume != 160 {
		t.Fatalf("total volume = %d, want 160", result.TotalVolume)
	}
	if len(result.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(result.Items))
	}

	// 100/160 = 62.5% -> A, cumulative 93.75% -> B, cumulative 100% -> C.
	wantClasses := []struct {
		id    string
		class domain.AbcClass
		cum   float64
	}{
		{"p-high", domain.AbcClassA, 62.5},
		{"p-mid", domain.AbcClassB, 93.75},
		{"p-low", domain.AbcClassC, 100},
	}
	for i, want := range wantClasses {
		item := result.Items[i]
		if item.ProductID != want.id {
			t.Errorf("rank %d: product = %s, want %s", i, item.ProductID, want.id)
		}
		if item.Class != want.class {
			t.Errorf("rank %d: class = %s, want %s", i, item.Class, want.class)
		}
		if math.Abs(item.CumulativePercentage-want.cum) > 1e-9 {
			t.Errorf("rank %d: cumulative = %f, want %f", i, item.CumulativePercentage, want.cum)
		}
	}

	if result.ClassCounts[domain.AbcClassA] != 1 || result.ClassCounts[domain.AbcClassB] != 1 || result.ClassCounts[domain.AbcClassC] != 1 {
		t.Errorf("class counts = %v, want one of each", result.ClassCounts)
	}
}

func TestAnalyzeABCPartitionLaw(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeRange{From: base, To: base.AddDate(0, 1, 0)}

	products := make([]domain.Product, 0, 10)
	histories := make(map[string][]domain.LedgerEntry)
	volumes := []int{400, 250, 130, 90, 55, 30, 20, 15, 7, 3}
	for i, v := range volumes {
		id := string(rune('a' + i))
		products = append(products, domain.Product{ID: id})
		histories[id] = []domain.LedgerEntry{saleAt(base.AddDate(0, 0, i), -v)}
	}

	result := AnalyzeABC(products, histories, window, AbcConfig{})

	// Every ranked product lands in exactly one class and the class volumes
	// sum back to the total.
	countSum := result.ClassCounts[domain.AbcClassA] + result.ClassCounts[domain.AbcClassB] + result.ClassCounts[domain.AbcClassC]
	if countSum != len(result.Items) {
		t.Errorf("class counts sum to %d, want %d", countSum, len(result.Items))
	}
	volumeSum := result.ClassVolume[domain.AbcClassA] + result.ClassVolume[domain.AbcClassB] + result.ClassVolume[domain.AbcClassC]
	if volumeSum != result.TotalVolume {
		t.Errorf("class volumes sum to %d, want %d", volumeSum, result.TotalVolume)
	}

	// Cumulative percentage is monotonically non-decreasing and ends at 100.
	prev := 0.0
	for i, item := range result.Items {
		if item.CumulativePercentage < prev {
			t.Errorf("rank %d: cumulative %f < previous %f", i, item.CumulativePercentage, prev)
		}
		prev = item.CumulativePercentage
	}
	if math.Abs(prev-100) > 1e-9 {
		t.Errorf("final cumulative = %f, want 100", prev)
	}
}

func TestAnalyzeABCExcludesNonSales(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeRange{From: base, To: base.AddDate(0, 1, 0)}

	products := []domain.Product{
		{ID: "p-sold"},
		{ID: "p-received-only"},
		{ID: "p-outside-window"},
	}
	histories := map[string][]domain.LedgerEntry{
		"p-sold":           {saleAt(base.AddDate(0, 0, 1), -20)},
		"p-received-only":  {receiptAt(base.AddDate(0, 0, 1), 500)},
		"p-outside-window": {saleAt(base.AddDate(0, -1, 0), -99)},
	}

	result := AnalyzeABC(products, histories, window, AbcConfig{})

	if len(result.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(result.Items))
	}
	if result.Items[0].ProductID != "p-sold" {
		t.Errorf("ranked product = %s, want p-sold", result.Items[0].ProductID)
	}
	if result.TotalVolume != 20 {
		t.Errorf("total volume = %d, want 20", result.TotalVolume)
	}
}

func TestAnalyzeABCDeterministic(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeRange{From: base, To: base.AddDate(0, 1, 0)}

	// Equal volumes: product ID breaks the tie, so order is stable.
	products := []domain.Product{{ID: "p-b"}, {ID: "p-a"}, {ID: "p-c"}}
	histories := map[string][]domain.LedgerEntry{
		"p-a": {saleAt(base.AddDate(0, 0, 1), -10)},
		"p-b": {saleAt(base.AddDate(0, 0, 2), -10)},
		"p-c": {saleAt(base.AddDate(0, 0, 3), -10)},
	}

	clock := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	first := AnalyzeABC(products, histories, window, AbcConfig{Now: clock})
	second := AnalyzeABC(products, histories, window, AbcConfig{Now: clock})

	// With a pinned clock the runs are identical in full, GeneratedAt included.
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs over identical history differ: %+v vs %+v", first, second)
	}
	if !first.GeneratedAt.Equal(clock) {
		t.Errorf("generated at = %v, want %v", first.GeneratedAt, clock)
	}

	wantOrder := []string{"p-a", "p-b", "p-c"}
	gotOrder := []string{first.Items[0].ProductID, first.Items[1].ProductID, first.Items[2].ProductID}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("tie-broken order = %v, want %v", gotOrder, wantOrder)
	}
}

func TestAnalyzeABCEmpty(t *testing.T) {
	result := AnalyzeABC(nil, nil, domain.TimeRange{}, AbcConfig{})
	if len(result.Items) != 0 || result.TotalVolume != 0 {
		t.Errorf("empty analysis = %+v, want no items and zero volume", result)
	}
}
