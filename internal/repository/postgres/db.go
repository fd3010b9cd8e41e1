// internal/repository/postgres/db.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/havers0n/my-awesome-project-sub004/internal/config"
)

// maxConcurrentWrites bounds how many ledger writes hit the database at once.
// Reads go straight to the pool; only transactional writes pass the gate.
const maxConcurrentWrites = 10

// DB is the shared connection pool plus a write gate for the journal.
type DB struct {
	*sqlx.DB
	writeSem *semaphore.Weighted
}

// NewDB connects to postgres and configures the pool.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sqlx.Connect("postgres", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return Wrap(db), nil
}

// Wrap puts the write gate around an existing pool. The seed CLI opens its
// own pool through the pgx driver and wraps it here.
func Wrap(db *sqlx.DB) *DB {
	return &DB{DB: db, writeSem: semaphore.NewWeighted(maxConcurrentWrites)}
}

func dsn(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// WithTx runs fn inside a transaction, committing on nil and rolling back on
// error. Callers queue on the write gate first.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.writeSem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire write slot: %w", err)
	}
	defer db.writeSem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("transaction rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
