// internal/service/ledger_service.go
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/havers0n/my-awesome-project-sub004/internal/ledger"
	"github.com/havers0n/my-awesome-project-sub004/internal/repository"
)

// LedgerService exposes the stock ledger to transports. It owns no state of
// its own: all bookkeeping lives in the engine and its store.
type LedgerService struct {
	engine *ledger.Engine
	store  repository.LedgerStore
}

func NewLedgerService(engine *ledger.Engine, store repository.LedgerStore) *LedgerService {
	return &LedgerService{engine: engine, store: store}
}

// AppendEntry records a quantity movement and returns the resulting entry.
func (s *LedgerService) AppendEntry(ctx context.Context, productID string, entryType domain.EntryType, change int, ts time.Time) (*domain.LedgerEntry, error) {
	entry, err := s.engine.Append(ctx, productID, entryType, change, ts)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("product_id", productID).
		Str("entry_type", string(entryType)).
		Int("change", entry.Change).
		Int("new_quantity", entry.NewQuantity).
		Int64("seq", entry.Seq).
		Msg("ledger entry appended")

	return entry, nil
}

// GetCurrentState returns a product's current quantity and stock status.
func (s *LedgerService) GetCurrentState(ctx context.Context, productID string) (*domain.ProductState, error) {
	return s.engine.CurrentState(ctx, productID)
}

// GetHistory returns a product's ledger entries within the window, oldest
// first. Zero bounds mean open-ended.
func (s *LedgerService) GetHistory(ctx context.Context, productID string, from, to time.Time) ([]domain.LedgerEntry, error) {
	return s.engine.History(ctx, productID, from, to)
}

// GetOutOfStockReport returns the product's out-of-stock intervals that
// overlap the window.
func (s *LedgerService) GetOutOfStockReport(ctx context.Context, productID string, from, to time.Time) ([]domain.OutOfStockInterval, error) {
	return s.engine.OutOfStockReport(ctx, productID, from, to)
}

// GetProduct resolves a single catalog product.
func (s *LedgerService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	return s.store.GetProduct(ctx, productID)
}

// ListProducts returns the catalog with current quantities.
func (s *LedgerService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.LoadProductCatalog(ctx)
}
