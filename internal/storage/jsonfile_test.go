package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"submanager/internal/core"
	"submanager/internal/store"
)

func sampleState() store.State {
	return store.State{
		Subscriptions: []core.Subscription{
			{
				ID:              "abc123",
				Name:            "Netflix",
				Price:           core.Money{Cents: 50000},
				Currency:        core.RUB,
				Cycle:           core.Monthly,
				Category:        core.Entertainment,
				NextPaymentDate: core.NewDate(2026, 9, 15),
				IsActive:        true,
			},
			{
				ID:       "def456",
				Name:     "GitHub",
				Price:    core.Money{Cents: 400},
				Currency: core.USD,
				Cycle:    core.Yearly,
				Category: core.Work,
				IsActive: false,
			},
		},
		Preferences: core.Preferences{BaseCurrency: core.EUR, ViewMode: core.ViewYearly},
	}
}

func assertRoundTrip(t *testing.T, repo store.Repository) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := repo.Load(ctx); err != nil || found {
		t.Fatalf("fresh repo: found=%v err=%v", found, err)
	}

	want := sampleState()
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, found, err := repo.Load(ctx)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if len(got.Subscriptions) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(got.Subscriptions))
	}
	// Stored order must survive: the tie-break depends on it.
	if got.Subscriptions[0].ID != "abc123" || got.Subscriptions[1].ID != "def456" {
		t.Fatalf("order lost: %+v", got.Subscriptions)
	}
	first := got.Subscriptions[0]
	if first.Price.Cents != 50000 || first.Currency != core.RUB || !first.IsActive {
		t.Fatalf("first record mangled: %+v", first)
	}
	if !first.NextPaymentDate.Equal(core.NewDate(2026, 9, 15).Time) {
		t.Fatalf("date mangled: %v", first.NextPaymentDate)
	}
	second := got.Subscriptions[1]
	if second.IsActive || second.Cycle != core.Yearly {
		t.Fatalf("second record mangled: %+v", second)
	}
	if got.Preferences != want.Preferences {
		t.Fatalf("preferences mangled: %+v", got.Preferences)
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	assertRoundTrip(t, repo)
}

func TestFileRepositorySaveOverwrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := repo.Save(ctx, sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, store.State{
		Preferences: core.Preferences{BaseCurrency: core.RUB, ViewMode: core.ViewMonthly},
	}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, _, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Subscriptions) != 0 {
		t.Fatalf("save must replace, not merge: %+v", got.Subscriptions)
	}

	// No stray temp file left behind.
	if _, err := os.Stat(filepath.Join(dir, StorageKey+".tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestFileRepositoryCorruptFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, StorageKey), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := repo.Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	assertRoundTrip(t, NewMemoryRepository())
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "submanager.db"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer repo.Close()
	assertRoundTrip(t, repo)
}

func TestSQLiteRepositorySaveReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "submanager.db"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer repo.Close()

	if err := repo.Save(ctx, sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}

	next := sampleState()
	next.Subscriptions = next.Subscriptions[:1]
	next.Subscriptions[0].Name = "Netflix Premium"
	if err := repo.Save(ctx, next); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, found, err := repo.Load(ctx)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if len(got.Subscriptions) != 1 || got.Subscriptions[0].Name != "Netflix Premium" {
		t.Fatalf("save must replace wholesale: %+v", got.Subscriptions)
	}
}
