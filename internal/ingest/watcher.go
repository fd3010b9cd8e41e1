package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Watcher polls an object storage prefix for new movement files and runs
// them through the ingest service. Keys already ingested in this process are
// remembered and not re-run.
type Watcher struct {
	service  *Service
	prefix   string
	interval time.Duration

	mu        sync.Mutex
	processed map[string]struct{}

	onBatch func(ctx context.Context)
}

func NewWatcher(service *Service, prefix string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{
		service:   service,
		prefix:    prefix,
		interval:  interval,
		processed: make(map[string]struct{}),
	}
}

// OnBatchIngested registers a hook invoked after a poll that ingested at
// least one file. The server uses it to drop stale analysis caches.
func (w *Watcher) OnBatchIngested(fn func(ctx context.Context)) {
	w.onBatch = fn
}

// Run polls until the context is cancelled. One sweep runs immediately.
func (w *Watcher) Run(ctx context.Context) {
	log.Info().
		Str("prefix", w.prefix).
		Dur("interval", w.interval).
		Msg("ingest watcher started")

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("ingest watcher stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Sweep runs a single poll pass and returns how many files were ingested.
func (w *Watcher) Sweep(ctx context.Context) int {
	return w.sweep(ctx)
}

func (w *Watcher) sweep(ctx context.Context) int {
	files, err := w.service.ListFiles(ctx, w.prefix)
	if err != nil {
		log.Error().Err(err).Str("prefix", w.prefix).Msg("ingest watcher: list failed")
		return 0
	}

	ingested := 0
	for _, f := range files {
		if ctx.Err() != nil {
			return ingested
		}
		if w.seen(f.Key) {
			continue
		}

		if _, err := w.service.IngestObject(ctx, f.Key); err != nil {
			log.Error().Err(err).Str("key", f.Key).Msg("ingest watcher: file failed")
			continue
		}

		w.markSeen(f.Key)
		ingested++
	}

	if ingested > 0 && w.onBatch != nil {
		w.onBatch(ctx)
	}
	return ingested
}

func (w *Watcher) seen(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.processed[key]
	return ok
}

func (w *Watcher) markSeen(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.processed[key] = struct{}{}
}
