// internal/analytics/xyz.go
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
)

// Default XYZ coefficient-of-variation boundaries (percent).
const (
	DefaultXyzStableMax   = 10.0
	DefaultXyzVariableMax = 25.0
)

// DefaultBucketSize is the demand-bucketing granularity: daily.
const DefaultBucketSize = 24 * time.Hour

// MinXyzObservations is the number of non-empty demand buckets below which a
// classification is flagged low-confidence.
const MinXyzObservations = 3

// XyzConfig tunes the stability classification boundaries.
type XyzConfig struct {
	StableMax   float64
	VariableMax float64

	// Now stamps GeneratedAt; zero means time.Now. With a fixed clock two
	// runs over the same history produce identical results.
	Now time.Time
}

func (c XyzConfig) withDefaults() XyzConfig {
	if c.StableMax <= 0 {
		c.StableMax = DefaultXyzStableMax
	}
	if c.VariableMax <= 0 {
		c.VariableMax = DefaultXyzVariableMax
	}
	if c.Now.IsZero() {
		c.Now = time.Now().UTC()
	}
	return c
}

// AnalyzeXYZ classifies products by demand stability: the coefficient of
// variation of per-bucket sales volume across the window. Unlike ABC, products
// with little or no data are not excluded; they are classified with a low
// confidence flag so callers can see how shaky the number is.
func AnalyzeXYZ(products []domain.Product, histories map[string][]domain.LedgerEntry, window domain.TimeRange, bucketSize time.Duration, cfg XyzConfig) *domain.XyzAnalysisResult {
	cfg = cfg.withDefaults()
	if bucketSize <= 0 {
		bucketSize = DefaultBucketSize
	}

	result := &domain.XyzAnalysisResult{
		Items:       make([]domain.XyzItem, 0, len(products)),
		ClassCounts: map[domain.XyzClass]int{domain.XyzClassX: 0, domain.XyzClassY: 0, domain.XyzClassZ: 0},
		Window:      window,
		BucketHours: int(bucketSize.Hours()),
		GeneratedAt: cfg.Now,
	}

	for _, p := range products {
		item := classifyDemand(p, histories[p.ID], window, bucketSize, cfg)
		result.ClassCounts[item.Class]++
		result.Items = append(result.Items, item)
	}

	return result
}

func classifyDemand(p domain.Product, entries []domain.LedgerEntry, window domain.TimeRange, bucketSize time.Duration, cfg XyzConfig) domain.XyzItem {
	buckets, nonEmpty := demandBuckets(entries, window, bucketSize)

	item := domain.XyzItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Confidence:  domain.ConfidenceNormal,
	}
	if nonEmpty < MinXyzObservations {
		item.Confidence = domain.ConfidenceLow
	}

	mean := meanOf(buckets)
	if mean == 0 {
		// No demand at all: erratic by definition, and never trustworthy.
		item.Class = domain.XyzClassZ
		item.Confidence = domain.ConfidenceLow
		return item
	}

	stddev := populationStddev(buckets, mean)
	item.VariabilityScore = stddev / mean * 100

	switch {
	case item.VariabilityScore < cfg.StableMax:
		item.Class = domain.XyzClassX
	case item.VariabilityScore < cfg.VariableMax:
		item.Class = domain.XyzClassY
	default:
		item.Class = domain.XyzClassZ
	}
	return item
}

// demandBuckets slices the window into fixed-size buckets and sums absolute
// sale deltas per bucket, zero-filling buckets without sales. Entries are
// sorted by timestamp first so bucket boundaries never depend on insertion
// order. Returns the bucket values and the count of non-empty buckets.
func demandBuckets(entries []domain.LedgerEntry, window domain.TimeRange, bucketSize time.Duration) ([]float64, int) {
	sales := make([]domain.LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.EntryType == domain.EntrySale && window.Contains(entry.Timestamp) {
			sales = append(sales, entry)
		}
	}
	sort.Slice(sales, func(i, j int) bool {
		return sales[i].Timestamp.Before(sales[j].Timestamp)
	})

	start, end := window.From, window.To
	if start.IsZero() || end.IsZero() {
		// Unbounded window: derive the bucket span from the data itself.
		if len(sales) == 0 {
			return nil, 0
		}
		if start.IsZero() {
			start = sales[0].Timestamp
		}
		if end.IsZero() {
			end = sales[len(sales)-1].Timestamp.Add(time.Nanosecond)
		}
	}
	if !end.After(start) {
		return nil, 0
	}

	bucketCount := int(math.Ceil(float64(end.Sub(start)) / float64(bucketSize)))
	buckets := make([]float64, bucketCount)
	for _, entry := range sales {
		idx := int(entry.Timestamp.Sub(start) / bucketSize)
		if idx < 0 || idx >= bucketCount {
			continue
		}
		buckets[idx] += math.Abs(float64(entry.Change))
	}

	nonEmpty := 0
	for _, v := range buckets {
		if v > 0 {
			nonEmpty++
		}
	}
	return buckets, nonEmpty
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationStddev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}
