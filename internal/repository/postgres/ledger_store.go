// internal/repository/postgres/ledger_store.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/havers0n/my-awesome-project-sub004/internal/repository"
)

// ledgerStore persists the journal in two tables:
//
//	products(id, name, shelf_location, category, price, created_at, updated_at)
//	ledger_entries(id, product_id, seq, entry_type, change, new_quantity,
//	               entry_ts, created_at, UNIQUE(product_id, seq))
//
// The unique (product_id, seq) constraint is what turns a racing append into
// domain.ErrAppendConflict instead of a silent double-write.
type ledgerStore struct {
	db *DB
}

// NewLedgerStore creates the postgres-backed ledger store.
func NewLedgerStore(db *DB) repository.LedgerStore {
	return &ledgerStore{db: db}
}

// NewCatalogWriter exposes the same store for catalog seeding.
func NewCatalogWriter(db *DB) repository.CatalogWriter {
	return &ledgerStore{db: db}
}

var (
	_ repository.LedgerStore   = (*ledgerStore)(nil)
	_ repository.CatalogWriter = (*ledgerStore)(nil)
)

func (s *ledgerStore) LoadHistory(ctx context.Context, productID string) ([]domain.LedgerEntry, error) {
	query := `
		SELECT id, product_id, seq, entry_type, change, new_quantity, entry_ts, created_at
		FROM ledger_entries
		WHERE product_id = $1
		ORDER BY entry_ts, seq
	`

	var entries []domain.LedgerEntry
	if err := s.db.SelectContext(ctx, &entries, query, productID); err != nil {
		return nil, fmt.Errorf("error loading ledger history: %w", err)
	}
	return entries, nil
}

func (s *ledgerStore) SaveEntry(ctx context.Context, entry *domain.LedgerEntry, expectedSeq int64) error {
	query := `
		INSERT INTO ledger_entries (id, product_id, seq, entry_type, change, new_quantity, entry_ts, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE COALESCE((SELECT MAX(seq) FROM ledger_entries WHERE product_id = $2), 0) = $9
	`

	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query,
			entry.ID, entry.ProductID, entry.Seq, entry.EntryType,
			entry.Change, entry.NewQuantity, entry.Timestamp, entry.CreatedAt,
			expectedSeq,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
				return domain.ErrAppendConflict
			}
			return fmt.Errorf("error saving ledger entry: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("error saving ledger entry: %w", err)
		}
		if affected == 0 {
			return domain.ErrAppendConflict
		}
		return nil
	})
}

func (s *ledgerStore) LoadProductCatalog(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.shelf_location, p.category, p.price,
		       COALESCE(le.new_quantity, 0) AS current_quantity,
		       p.created_at, p.updated_at
		FROM products p
		LEFT JOIN LATERAL (
			SELECT new_quantity
			FROM ledger_entries
			WHERE product_id = p.id
			ORDER BY entry_ts DESC, seq DESC
			LIMIT 1
		) le ON true
		ORDER BY p.id
	`

	var products []domain.Product
	if err := s.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("error loading product catalog: %w", err)
	}
	return products, nil
}

func (s *ledgerStore) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	query := `
		SELECT id, name, shelf_location, category, price, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var product domain.Product
	if err := s.db.GetContext(ctx, &product, query, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("error getting product: %w", err)
	}
	return &product, nil
}

func (s *ledgerStore) SaveProduct(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, shelf_location, category, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			shelf_location = EXCLUDED.shelf_location,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			updated_at = NOW()
	`

	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			product.ID, product.Name, product.ShelfLocation, product.Category, product.Price,
		); err != nil {
			return fmt.Errorf("error saving product: %w", err)
		}
		return nil
	})
}
