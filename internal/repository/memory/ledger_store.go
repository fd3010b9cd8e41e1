// internal/repository/memory/ledger_store.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/havers0n/my-awesome-project-sub004/internal/repository"
)

// LedgerStore is an in-memory LedgerStore used by tests and seeding. It
// enforces the same expected-sequence append semantics as the durable stores.
type LedgerStore struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	entries  map[string][]domain.LedgerEntry
}

// NewLedgerStore creates an empty in-memory store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		products: make(map[string]domain.Product),
		entries:  make(map[string][]domain.LedgerEntry),
	}
}

// Verify interface compliance
var (
	_ repository.LedgerStore   = (*LedgerStore)(nil)
	_ repository.CatalogWriter = (*LedgerStore)(nil)
)

// SaveProduct adds or replaces a catalog product.
func (s *LedgerStore) SaveProduct(ctx context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	product.UpdatedAt = time.Now().UTC()
	s.products[product.ID] = *product
	return nil
}

// GetProduct returns a product or domain.ErrProductNotFound.
func (s *LedgerStore) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

// LoadProductCatalog returns all products sorted by ID.
func (s *LedgerStore) LoadProductCatalog(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// LoadHistory returns a copy of the product's entries ordered by timestamp
// with sequence as tie-break, matching the durable stores. Backdated appends
// therefore sort into chronological position, not append position.
func (s *LedgerStore) LoadHistory(ctx context.Context, productID string) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.entries[productID]
	out := make([]domain.LedgerEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Seq < out[j].Seq
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// SaveEntry appends an entry, rejecting writes whose expected sequence no
// longer matches the tail of the journal.
func (s *LedgerStore) SaveEntry(ctx context.Context, entry *domain.LedgerEntry, expectedSeq int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[entry.ProductID]
	var lastSeq int64
	if len(entries) > 0 {
		lastSeq = entries[len(entries)-1].Seq
	}
	if lastSeq != expectedSeq {
		return domain.ErrAppendConflict
	}

	s.entries[entry.ProductID] = append(entries, *entry)
	return nil
}
