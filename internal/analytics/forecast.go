// internal/analytics/forecast.go
package analytics

import (
	"math"
	"time"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
)

// DefaultForecastLookbackDays bounds how much sale history feeds the forecast.
const DefaultForecastLookbackDays = 90

// MinForecastSales is the number of sale entries below which a forecast is
// flagged low-confidence.
const MinForecastSales = 3

// ForecastConfig tunes the demand forecaster.
type ForecastConfig struct {
	LookbackDays int

	// Now overrides the reference time; zero means time.Now. Tests use it.
	Now time.Time
}

func (c ForecastConfig) withDefaults() ForecastConfig {
	if c.LookbackDays <= 0 {
		c.LookbackDays = DefaultForecastLookbackDays
	}
	if c.Now.IsZero() {
		c.Now = time.Now().UTC()
	}
	return c
}

// BuildForecast produces a demand forecast over horizonDays using a daily
// moving average with optional price elasticity, plus MAPE/MAE measured
// retrospectively against a held-out window of the same length. Insufficient
// history never fails the call; the result degrades to a low-confidence
// zero or near-zero forecast because callers must always receive a number.
func BuildForecast(product domain.Product, entries []domain.LedgerEntry, horizonDays int, priceOverride *float64, cfg ForecastConfig) *domain.ForecastResult {
	cfg = cfg.withDefaults()
	if horizonDays < 1 {
		horizonDays = 1
	}

	lookback := domain.TimeRange{
		From: cfg.Now.AddDate(0, 0, -cfg.LookbackDays),
		To:   cfg.Now,
	}
	sales := saleEntries(entries, lookback)

	result := &domain.ForecastResult{
		ProductID:   product.ID,
		HorizonDays: horizonDays,
		GeneratedAt: cfg.Now,
	}
	if len(sales) < MinForecastSales {
		result.LowConfidence = true
	}

	// 1. Average daily sales over distinct sale days.
	avgDaily := averageDailySales(sales)

	// 2. Price elasticity: lower price, proportionally higher assumed demand.
	multiplier := 1.0
	if priceOverride != nil && product.Price > 0 && *priceOverride > 0 {
		multiplier = *priceOverride / product.Price
	}

	// 3. Point forecast, floored at zero.
	forecast := math.Round(avgDaily * float64(horizonDays) * multiplier)
	if forecast < 0 {
		forecast = 0
	}
	result.ForecastedQuantity = int(forecast)

	// 4. Retrospective accuracy over the last horizonDays of actuals. The
	// override is not applied here: it describes a hypothetical future price,
	// not the conditions the actuals were sold under.
	mape, mae, ok := holdoutAccuracy(sales, horizonDays)
	if !ok {
		result.LowConfidence = true
		return result
	}
	result.MAPE = mape
	result.MAE = mae

	return result
}

// averageDailySales is total absolute sale volume divided by the number of
// distinct days that saw at least one sale (never less than one day).
func averageDailySales(sales []domain.LedgerEntry) float64 {
	if len(sales) == 0 {
		return 0
	}
	total := 0.0
	days := make(map[string]struct{})
	for _, entry := range sales {
		total += math.Abs(float64(entry.Change))
		days[entry.Timestamp.UTC().Format("2006-01-02")] = struct{}{}
	}
	n := len(days)
	if n < 1 {
		n = 1
	}
	return total / float64(n)
}

// holdoutAccuracy holds out the last horizonDays calendar days of sales,
// predicts them with the training average, and measures MAPE/MAE against
// per-day actuals. Buckets align on UTC calendar days the same way
// averageDailySales counts them, so mid-day sales never straddle two buckets.
// Returns ok=false when the history is shorter than the horizon, in which
// case metrics cannot be computed honestly.
func holdoutAccuracy(sales []domain.LedgerEntry, horizonDays int) (mape, mae float64, ok bool) {
	if len(sales) == 0 {
		return 0, 0, false
	}

	first, last := sales[0].Timestamp, sales[0].Timestamp
	for _, entry := range sales[1:] {
		if entry.Timestamp.Before(first) {
			first = entry.Timestamp
		}
		if entry.Timestamp.After(last) {
			last = entry.Timestamp
		}
	}

	// cut is the last training day; everything on later days is held out.
	cut := dayStart(last).AddDate(0, 0, -horizonDays)
	if dayStart(first).After(cut) {
		return 0, 0, false
	}

	var train []domain.LedgerEntry
	actuals := make([]float64, horizonDays)
	for _, entry := range sales {
		day := dayStart(entry.Timestamp)
		if !day.After(cut) {
			train = append(train, entry)
			continue
		}
		idx := int(day.Sub(cut)/(24*time.Hour)) - 1
		if idx >= horizonDays {
			idx = horizonDays - 1
		}
		actuals[idx] += math.Abs(float64(entry.Change))
	}

	predicted := averageDailySales(train)

	var absErrSum, pctErrSum float64
	pctDays := 0
	for _, actual := range actuals {
		absErr := math.Abs(actual - predicted)
		absErrSum += absErr
		if actual > 0 {
			pctErrSum += absErr / actual * 100
			pctDays++
		}
	}

	mae = absErrSum / float64(horizonDays)
	if pctDays > 0 {
		mape = pctErrSum / float64(pctDays)
	}
	return mape, mae, true
}

func dayStart(ts time.Time) time.Time {
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

func saleEntries(entries []domain.LedgerEntry, window domain.TimeRange) []domain.LedgerEntry {
	sales := make([]domain.LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.EntryType == domain.EntrySale && window.Contains(entry.Timestamp) {
			sales = append(sales, entry)
		}
	}
	return sales
}
