// internal/repository/ledger_repository.go
package repository

import (
	"context"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
)

// LedgerStore is the persistence contract the engine consumes. Any durable
// store with ordered-append semantics satisfies it; the engine never assumes a
// storage format.
type LedgerStore interface {
	// LoadHistory returns all entries for a product ordered by
	// (entry timestamp, sequence number).
	LoadHistory(ctx context.Context, productID string) ([]domain.LedgerEntry, error)

	// SaveEntry persists a new entry. expectedSeq is the sequence number of
	// the last entry the writer observed (0 for an empty history); the store
	// must reject the write with domain.ErrAppendConflict when another entry
	// was appended in between.
	SaveEntry(ctx context.Context, entry *domain.LedgerEntry, expectedSeq int64) error

	// LoadProductCatalog returns all products known to the catalog.
	LoadProductCatalog(ctx context.Context) ([]domain.Product, error)

	// GetProduct returns a single product or domain.ErrProductNotFound.
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

// CatalogWriter is implemented by stores that can also create products. Only
// seeding and tests need it; the engine proper treats the catalog as external.
type CatalogWriter interface {
	SaveProduct(ctx context.Context, product *domain.Product) error
}
