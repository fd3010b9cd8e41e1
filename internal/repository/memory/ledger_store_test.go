package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
)

func TestCatalog(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()

	if _, err := store.GetProduct(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("GetProduct(missing) err = %v, want ErrProductNotFound", err)
	}

	for _, id := range []string{"p-b", "p-a"} {
		if err := store.SaveProduct(ctx, &domain.Product{ID: id, Name: "product " + id}); err != nil {
			t.Fatalf("SaveProduct(%s): %v", id, err)
		}
	}

	p, err := store.GetProduct(ctx, "p-a")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p.Name != "product p-a" {
		t.Errorf("name = %q, want %q", p.Name, "product p-a")
	}

	catalog, err := store.LoadProductCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadProductCatalog: %v", err)
	}
	if len(catalog) != 2 || catalog[0].ID != "p-a" || catalog[1].ID != "p-b" {
		t.Errorf("catalog = %+v, want p-a then p-b", catalog)
	}
}

func TestSaveEntrySequenceGuard(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	first := &domain.LedgerEntry{ID: "e-1", ProductID: "p-1", Seq: 1, EntryType: domain.EntryReceipt, Change: 10, NewQuantity: 10, Timestamp: ts}
	if err := store.SaveEntry(ctx, first, 0); err != nil {
		t.Fatalf("first append: %v", err)
	}

	// A writer that still believes the journal is empty must be rejected.
	stale := &domain.LedgerEntry{ID: "e-2", ProductID: "p-1", Seq: 1, EntryType: domain.EntrySale, Change: -1, NewQuantity: 9, Timestamp: ts}
	if err := store.SaveEntry(ctx, stale, 0); !errors.Is(err, domain.ErrAppendConflict) {
		t.Errorf("stale append err = %v, want ErrAppendConflict", err)
	}

	second := &domain.LedgerEntry{ID: "e-3", ProductID: "p-1", Seq: 2, EntryType: domain.EntrySale, Change: -1, NewQuantity: 9, Timestamp: ts.Add(time.Hour)}
	if err := store.SaveEntry(ctx, second, 1); err != nil {
		t.Fatalf("second append: %v", err)
	}

	entries, err := store.LoadHistory(ctx, "p-1")
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("journal has %d entries, want 2", len(entries))
	}
}

func TestLoadHistoryChronologicalOrder(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()
	ts := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	first := &domain.LedgerEntry{ID: "e-1", ProductID: "p-1", Seq: 1, EntryType: domain.EntryReceipt, Change: 20, NewQuantity: 20, Timestamp: ts}
	if err := store.SaveEntry(ctx, first, 0); err != nil {
		t.Fatal(err)
	}

	// Backdated correction: appended second, dated earlier.
	backdated := &domain.LedgerEntry{ID: "e-2", ProductID: "p-1", Seq: 2, EntryType: domain.EntryCorrection, Change: -3, NewQuantity: 17, Timestamp: ts.AddDate(0, 0, -5)}
	if err := store.SaveEntry(ctx, backdated, 1); err != nil {
		t.Fatal(err)
	}

	entries, err := store.LoadHistory(ctx, "p-1")
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("journal has %d entries, want 2", len(entries))
	}
	if entries[0].ID != "e-2" || entries[1].ID != "e-1" {
		t.Errorf("history order = [%s, %s], want backdated entry first", entries[0].ID, entries[1].ID)
	}

	// The guard still compares against the highest sequence, not the latest
	// timestamp.
	third := &domain.LedgerEntry{ID: "e-3", ProductID: "p-1", Seq: 3, EntryType: domain.EntrySale, Change: -1, NewQuantity: 16, Timestamp: ts.Add(time.Hour)}
	if err := store.SaveEntry(ctx, third, 2); err != nil {
		t.Errorf("append after backdated entry: %v", err)
	}
}

func TestLoadHistoryReturnsCopy(t *testing.T) {
	store := NewLedgerStore()
	ctx := context.Background()

	entry := &domain.LedgerEntry{ID: "e-1", ProductID: "p-1", Seq: 1, EntryType: domain.EntryReceipt, Change: 5, NewQuantity: 5}
	if err := store.SaveEntry(ctx, entry, 0); err != nil {
		t.Fatal(err)
	}

	first, _ := store.LoadHistory(ctx, "p-1")
	first[0].NewQuantity = 999

	second, _ := store.LoadHistory(ctx, "p-1")
	if second[0].NewQuantity != 5 {
		t.Error("mutating a loaded history leaked into the store")
	}
}
