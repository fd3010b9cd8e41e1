package ledger

import "github.com/havers0n/my-awesome-project-sub004/internal/domain"

// DefaultLowStockThreshold is the quantity at or below which a product is
// considered to be running out.
const DefaultLowStockThreshold = 10

// Classify maps a quantity to a stock status. This is the only state machine
// in the engine: transitions are driven purely by the quantity crossing zero
// or the low-stock threshold.
func Classify(quantity, lowStockThreshold int) domain.Status {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	switch {
	case quantity == 0:
		return domain.StatusOutOfStock
	case quantity <= lowStockThreshold:
		return domain.StatusLowStock
	default:
		return domain.StatusInStock
	}
}
