// internal/ledger/engine.go
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/havers0n/my-awesome-project-sub004/internal/repository"
)

// DefaultAppendRetries bounds how often a conflicted append is retried before
// it is surfaced as domain.ErrAppendFailed.
const DefaultAppendRetries = 3

// Config tunes the engine.
type Config struct {
	LowStockThreshold int
	AppendRetries     int
}

// TransitionFunc is invoked after an append changed a product's status. It
// runs inside the append's per-product critical section, so implementations
// must be quick.
type TransitionFunc func(productID string, from, to domain.Status, at time.Time)

// Engine is the stock ledger: an append-only journal of quantity movements
// per product plus a cached, rebuildable view of current state.
type Engine struct {
	store repository.LedgerStore
	cfg   Config

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	stateMu sync.RWMutex
	state   map[string]*domain.ProductState

	onTransition TransitionFunc
}

// NewEngine creates the engine on top of a persistence store.
func NewEngine(store repository.LedgerStore, cfg Config) *Engine {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = DefaultLowStockThreshold
	}
	if cfg.AppendRetries <= 0 {
		cfg.AppendRetries = DefaultAppendRetries
	}
	return &Engine{
		store: store,
		cfg:   cfg,
		locks: make(map[string]*sync.Mutex),
		state: make(map[string]*domain.ProductState),
	}
}

// OnStatusTransition registers a hook for status changes. Must be called
// before the engine starts taking appends.
func (e *Engine) OnStatusTransition(fn TransitionFunc) {
	e.onTransition = fn
}

// Append validates and records a quantity movement for a product, returning
// the persisted entry. The resulting quantity is clamped at zero rather than
// rejected; the entry records the effective change. Appends for the same
// product are strictly serialized, appends for different products proceed in
// parallel.
func (e *Engine) Append(ctx context.Context, productID string, entryType domain.EntryType, change int, ts time.Time) (*domain.LedgerEntry, error) {
	if !domain.ValidEntryType(entryType) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidEntryType, entryType)
	}

	if _, err := e.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	mu := e.productLock(productID)
	mu.Lock()
	defer mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < e.cfg.AppendRetries; attempt++ {
		st, err := e.loadState(ctx, productID)
		if err != nil {
			return nil, err
		}

		newQuantity := st.Quantity + change
		if newQuantity < 0 {
			newQuantity = 0
		}

		entry := &domain.LedgerEntry{
			ID:          uuid.NewString(),
			ProductID:   productID,
			Seq:         st.LastSeq + 1,
			EntryType:   entryType,
			Change:      newQuantity - st.Quantity,
			NewQuantity: newQuantity,
			Timestamp:   ts,
			CreatedAt:   time.Now().UTC(),
		}

		if err := e.store.SaveEntry(ctx, entry, st.LastSeq); err != nil {
			if errors.Is(err, domain.ErrAppendConflict) {
				// Another writer got in first; drop the cached state so the
				// next attempt rebuilds from history.
				e.invalidateState(productID)
				lastErr = err
				log.Warn().
					Str("product_id", productID).
					Int("attempt", attempt+1).
					Msg("ledger: append conflict, retrying")
				continue
			}
			return nil, fmt.Errorf("save ledger entry: %w", err)
		}

		prevStatus := st.Status
		newStatus := Classify(newQuantity, e.cfg.LowStockThreshold)
		e.storeState(&domain.ProductState{
			ProductID:   productID,
			Quantity:    newQuantity,
			Status:      newStatus,
			LastSeq:     entry.Seq,
			LastUpdated: ts,
		})

		if newStatus != prevStatus && e.onTransition != nil {
			e.onTransition(productID, prevStatus, newStatus, ts)
		}

		return entry, nil
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrAppendFailed, lastErr)
}

// History returns the product's entries within [from, to], oldest first.
// Zero bounds are treated as open-ended.
func (e *Engine) History(ctx context.Context, productID string, from, to time.Time) ([]domain.LedgerEntry, error) {
	if _, err := e.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	entries, err := e.store.LoadHistory(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	window := domain.TimeRange{From: from, To: to}
	filtered := make([]domain.LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		if window.Contains(entry.Timestamp) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// CurrentState returns the product's cached quantity and status. It reads the
// in-memory view and only falls back to a history replay when the product has
// not been seen since startup.
func (e *Engine) CurrentState(ctx context.Context, productID string) (*domain.ProductState, error) {
	if _, err := e.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	st, err := e.loadState(ctx, productID)
	if err != nil {
		return nil, err
	}
	copied := *st
	return &copied, nil
}

// OutOfStockReport derives the product's out-of-stock intervals overlapping
// [from, to] by replaying its history. It never mutates the ledger.
func (e *Engine) OutOfStockReport(ctx context.Context, productID string, from, to time.Time) ([]domain.OutOfStockInterval, error) {
	if _, err := e.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	entries, err := e.store.LoadHistory(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	intervals := OutOfStockIntervals(productID, entries)
	return filterIntervals(intervals, from, to), nil
}

func (e *Engine) productLock(productID string) *sync.Mutex {
	e.lockMu.Lock()
	defer e.lockMu.Unlock()
	mu, ok := e.locks[productID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[productID] = mu
	}
	return mu
}

func (e *Engine) loadState(ctx context.Context, productID string) (*domain.ProductState, error) {
	e.stateMu.RLock()
	st, ok := e.state[productID]
	e.stateMu.RUnlock()
	if ok {
		return st, nil
	}

	entries, err := e.store.LoadHistory(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("rebuild state: %w", err)
	}

	st = &domain.ProductState{
		ProductID: productID,
		Status:    Classify(0, e.cfg.LowStockThreshold),
	}
	if len(entries) > 0 {
		// Histories are ordered by entry timestamp, which with backdated
		// entries is not append order; the highest sequence is current.
		last := entries[0]
		for _, entry := range entries[1:] {
			if entry.Seq > last.Seq {
				last = entry
			}
		}
		st.Quantity = last.NewQuantity
		st.Status = Classify(last.NewQuantity, e.cfg.LowStockThreshold)
		st.LastSeq = last.Seq
		st.LastUpdated = last.Timestamp
	}

	return e.storeState(st), nil
}

// storeState publishes st unless the cache already holds a state at the same
// or a higher sequence, and returns whichever won. Without the sequence check
// a cold-cache rebuild racing an append could overwrite the append's state
// with its older history snapshot.
func (e *Engine) storeState(st *domain.ProductState) *domain.ProductState {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if cur, ok := e.state[st.ProductID]; ok && cur.LastSeq >= st.LastSeq {
		return cur
	}
	e.state[st.ProductID] = st
	return st
}

func (e *Engine) invalidateState(productID string) {
	e.stateMu.Lock()
	delete(e.state, productID)
	e.stateMu.Unlock()
}
