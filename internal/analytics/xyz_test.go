package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
)

func TestAnalyzeXYZStableDemand(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeRange{From: base, To: base.AddDate(0, 0, 7)}

	// The same 10 units every day: zero variation.
	entries := make([]domain.LedgerEntry, 0, 7)
	for i := 0; i < 7; i++ {
		entries = append(entries, saleAt(base.AddDate(0, 0, i).Add(12*time.Hour), -10))
	}

	result := AnalyzeXYZ(
		[]domain.Product{{ID: "p-1", Name: "steady"}},
		map[string][]domain.LedgerEntry{"p-1": entries},
		window, DefaultBucketSize, XyzConfig{},
	)

	if len(result.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(result.Items))
	}
	item := result.Items[0]
	if item.Class != domain.XyzClassX {
		t.Errorf("class = %s, want X", item.Class)
	}
	if item.VariabilityScore != 0 {
		t.Errorf("variability = %f, want 0", item.VariabilityScore)
	}
	if item.Confidence != domain.ConfidenceNormal {
		t.Errorf("confidence = %s, want normal", item.Confidence)
	}
	if result.BucketHours != 24 {
		t.Errorf("bucket hours = %d, want 24", result.BucketHours)
	}
}

func TestAnalyzeXYZDeterministicWithPinnedClock(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeRange{From: base, To: base.AddDate(0, 0, 7)}

	entries := make([]domain.LedgerEntry, 0, 7)
	for i := 0; i < 7; i++ {
		entries = append(entries, saleAt(base.AddDate(0, 0, i), -10))
	}
	products := []domain.Product{{ID: "p-1"}}
	histories := map[string][]domain.LedgerEntry{"p-1": entries}

	clock := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	first := AnalyzeXYZ(products, histories, window, DefaultBucketSize, XyzConfig{Now: clock})
	second := AnalyzeXYZ(products, histories, window, DefaultBucketSize, XyzConfig{Now: clock})

	// With a pinned clock the runs are identical in full, GeneratedAt included.
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs over identical history differ: %+v vs %+v", first, second)
	}
	if !first.GeneratedAt.Equal(clock) {
		t.Errorf("generated at = %v, want %v", first.GeneratedAt, clock)
	}
}

func TestAnalyzeXYZErraticDemand(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeRange{From: base, To: base.AddDate(0, 0, 6)}

	// Wild swings across six days.
	volumes := []int{1, 40, 2, 55, 1, 30}
	entries := make([]domain.LedgerEntry, 0, len(volumes))
	for i, v := range volumes {
		entries = append(entries, saleAt(base.AddDate(0, 0, i).Add(time.Hour), -v))
	}

	result := AnalyzeXYZ(
		[]domain.Product{{ID: "p-1"}},
		map[string][]domain.LedgerEntry{"p-1": entries},
		window, DefaultBucketSize, XyzConfig{},
	)

	item := result.Items[0]
	if item.Class != domain.XyzClassZ {
		t.Errorf("class = %s (cv %f), want Z", item.Class, item.VariabilityScore)
	}
	if item.VariabilityScore <= DefaultXyzVariableMax {
		t.Errorf("variability = %f, want > %f", item.VariabilityScore, DefaultXyzVariableMax)
	}
}

func TestAnalyzeXYZZeroFilledGaps(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeRange{From: base, To: base.AddDate(0, 0, 10)}

	// Sales on only 3 of 10 days: the empty days count as zero demand and
	// push variation up.
	entries := []domain.LedgerEntry{
		saleAt(base.Add(time.Hour), -10),
		saleAt(base.AddDate(0, 0, 4).Add(time.Hour), -10),
		saleAt(base.AddDate(0, 0, 9).Add(time.Hour), -10),
	}

	result := AnalyzeXYZ(
		[]domain.Product{{ID: "p-1"}},
		map[string][]domain.LedgerEntry{"p-1": entries},
		window, DefaultBucketSize, XyzConfig{},
	)

	item := result.Items[0]
	if item.Class != domain.XyzClassZ {
		t.Errorf("class = %s (cv %f), want Z from zero-filled gaps", item.Class, item.VariabilityScore)
	}
	if item.Confidence != domain.ConfidenceNormal {
		t.Errorf("confidence = %s, want normal with 3 observations", item.Confidence)
	}
}

func TestAnalyzeXYZNoDemand(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeRange{From: base, To: base.AddDate(0, 0, 7)}

	result := AnalyzeXYZ(
		[]domain.Product{{ID: "p-1"}},
		map[string][]domain.LedgerEntry{"p-1": {receiptAt(base, 100)}},
		window, DefaultBucketSize, XyzConfig{},
	)

	item := result.Items[0]
	if item.Class != domain.XyzClassZ {
		t.Errorf("class = %s, want Z for no demand", item.Class)
	}
	if item.Confidence != domain.ConfidenceLow {
		t.Errorf("confidence = %s, want low for no demand", item.Confidence)
	}
}

func TestAnalyzeXYZFewObservationsLowConfidence(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeRange{From: base, To: base.AddDate(0, 0, 4)}

	entries := []domain.LedgerEntry{
		saleAt(base.Add(time.Hour), -10),
		saleAt(base.AddDate(0, 0, 1).Add(time.Hour), -10),
	}

	result := AnalyzeXYZ(
		[]domain.Product{{ID: "p-1"}},
		map[string][]domain.LedgerEntry{"p-1": entries},
		window, DefaultBucketSize, XyzConfig{},
	)

	if result.Items[0].Confidence != domain.ConfidenceLow {
		t.Errorf("confidence = %s, want low with 2 observations", result.Items[0].Confidence)
	}
}

func TestAnalyzeXYZClassCountsPartition(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeRange{From: base, To: base.AddDate(0, 0, 7)}

	steady := make([]domain.LedgerEntry, 0, 7)
	for i := 0; i < 7; i++ {
		steady = append(steady, saleAt(base.AddDate(0, 0, i).Add(time.Hour), -10))
	}

	result := AnalyzeXYZ(
		[]domain.Product{{ID: "p-steady"}, {ID: "p-idle"}},
		map[string][]domain.LedgerEntry{"p-steady": steady},
		window, DefaultBucketSize, XyzConfig{},
	)

	total := result.ClassCounts[domain.XyzClassX] + result.ClassCounts[domain.XyzClassY] + result.ClassCounts[domain.XyzClassZ]
	if total != len(result.Items) {
		t.Errorf("class counts sum to %d, want %d", total, len(result.Items))
	}
}

func TestPopulationStddev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean := meanOf(values)
	if mean != 5 {
		t.Fatalf("mean = %f, want 5", mean)
	}
	if sd := populationStddev(values, mean); math.Abs(sd-2) > 1e-9 {
		t.Errorf("stddev = %f, want 2", sd)
	}
}
