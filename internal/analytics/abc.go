// internal/analytics/abc.go
package analytics

import (
	"sort"
	"time"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
)

// Default ABC cumulative-percentage thresholds.
const (
	DefaultAbcClassAThreshold = 80.0
	DefaultAbcClassBThreshold = 95.0
)

// AbcConfig tunes the Pareto classification boundaries.
type AbcConfig struct {
	ClassAThreshold float64
	ClassBThreshold float64

	// Now stamps GeneratedAt; zero means time.Now. With a fixed clock two
	// runs over the same history produce identical results.
	Now time.Time
}

func (c AbcConfig) withDefaults() AbcConfig {
	if c.ClassAThreshold <= 0 {
		c.ClassAThreshold = DefaultAbcClassAThreshold
	}
	if c.ClassBThreshold <= 0 {
		c.ClassBThreshold = DefaultAbcClassBThreshold
	}
	if c.Now.IsZero() {
		c.Now = time.Now().UTC()
	}
	return c
}

// AnalyzeABC classifies products by their contribution to total sales volume
// within the window. Products without any sales are excluded from the ranked
// set; they have no class. The computation is deterministic: products are
// sorted by volume descending with product ID as tie-break, and percentages
// are accumulated in that fixed order.
func AnalyzeABC(products []domain.Product, histories map[string][]domain.LedgerEntry, window domain.TimeRange, cfg AbcConfig) *domain.AbcAnalysisResult {
	cfg = cfg.withDefaults()

	type ranked struct {
		product domain.Product
		volume  int
	}

	// 1. Sales volume per product: sum of absolute sale changes in the window.
	sales := make([]ranked, 0, len(products))
	totalVolume := 0
	for _, p := range products {
		volume := salesVolume(histories[p.ID], window)
		if volume == 0 {
			continue
		}
		sales = append(sales, ranked{product: p, volume: volume})
		totalVolume += volume
	}

	// 2. Rank descending by volume, product ID ascending on ties.
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].volume == sales[j].volume {
			return sales[i].product.ID < sales[j].product.ID
		}
		return sales[i].volume > sales[j].volume
	})

	result := &domain.AbcAnalysisResult{
		Items:       make([]domain.AbcItem, 0, len(sales)),
		ClassCounts: map[domain.AbcClass]int{domain.AbcClassA: 0, domain.AbcClassB: 0, domain.AbcClassC: 0},
		ClassVolume: map[domain.AbcClass]int{domain.AbcClassA: 0, domain.AbcClassB: 0, domain.AbcClassC: 0},
		TotalVolume: totalVolume,
		Window:      window,
		GeneratedAt: cfg.Now,
	}

	// 3. Cumulative percentage and class per product, in rank order.
	cumulative := 0.0
	for _, s := range sales {
		percentage := float64(s.volume) / float64(totalVolume) * 100
		cumulative += percentage

		var class domain.AbcClass
		switch {
		case cumulative <= cfg.ClassAThreshold:
			class = domain.AbcClassA
		case cumulative <= cfg.ClassBThreshold:
			class = domain.AbcClassB
		default:
			class = domain.AbcClassC
		}

		result.ClassCounts[class]++
		result.ClassVolume[class] += s.volume
		result.Items = append(result.Items, domain.AbcItem{
			ProductID:            s.product.ID,
			ProductName:          s.product.Name,
			SalesVolume:          s.volume,
			PercentageOfTotal:    percentage,
			CumulativePercentage: cumulative,
			Class:                class,
		})
	}

	return result
}

// salesVolume sums absolute sale deltas within the window.
func salesVolume(entries []domain.LedgerEntry, window domain.TimeRange) int {
	volume := 0
	for _, entry := range entries {
		if entry.EntryType != domain.EntrySale {
			continue
		}
		if !window.Contains(entry.Timestamp) {
			continue
		}
		if entry.Change < 0 {
			volume -= entry.Change
		} else {
			volume += entry.Change
		}
	}
	return volume
}
