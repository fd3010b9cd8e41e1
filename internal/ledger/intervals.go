// internal/ledger/intervals.go
package ledger

import (
	"sort"
	"time"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
)

// OutOfStockIntervals replays a product's entry stream and returns the closed
// and open periods during which its quantity sat at zero. At most one interval
// is open at a time; an interval left open at the end of history stays open
// (nil End, nil DurationHours).
//
// The implicit pre-history quantity is zero, but an interval only opens on an
// observed transition into zero, so products that were never stocked produce
// no interval until a movement drains them.
func OutOfStockIntervals(productID string, entries []domain.LedgerEntry) []domain.OutOfStockInterval {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]domain.LedgerEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Seq < sorted[j].Seq
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var intervals []domain.OutOfStockInterval
	var open *domain.OutOfStockInterval

	prevQuantity := 0
	for _, entry := range sorted {
		switch {
		case entry.NewQuantity == 0 && prevQuantity > 0:
			iv := domain.OutOfStockInterval{
				ProductID: productID,
				Start:     entry.Timestamp,
			}
			intervals = append(intervals, iv)
			open = &intervals[len(intervals)-1]

		case entry.NewQuantity > 0 && prevQuantity == 0 && open != nil:
			end := entry.Timestamp
			hours := end.Sub(open.Start).Hours()
			open.End = &end
			open.DurationHours = &hours
			open = nil
		}
		prevQuantity = entry.NewQuantity
	}

	return intervals
}

// filterIntervals keeps intervals overlapping [from, to]. Zero bounds are
// open-ended; open intervals overlap any range that starts before "now".
func filterIntervals(intervals []domain.OutOfStockInterval, from, to time.Time) []domain.OutOfStockInterval {
	result := make([]domain.OutOfStockInterval, 0, len(intervals))
	for _, iv := range intervals {
		if !to.IsZero() && iv.Start.After(to) {
			continue
		}
		if !from.IsZero() && iv.End != nil && iv.End.Before(from) {
			continue
		}
		result = append(result, iv)
	}
	return result
}
