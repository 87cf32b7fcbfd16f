package store

import (
	"context"
	"errors"
	"testing"

	"submanager/internal/core"
)

// fakeRepo keeps saved state in memory and can be told to fail.
type fakeRepo struct {
	state   State
	found   bool
	saves   int
	failNow bool
}

func (f *fakeRepo) Load(ctx context.Context) (State, bool, error) {
	return f.state, f.found, nil
}

func (f *fakeRepo) Save(ctx context.Context, s State) error {
	if f.failNow {
		return errors.New("disk full")
	}
	f.state = s
	f.found = true
	f.saves++
	return nil
}

func defaultPrefs() core.Preferences {
	return core.Preferences{BaseCurrency: core.RUB, ViewMode: core.ViewMonthly}
}

func newSub(id, name string) core.Subscription {
	return core.Subscription{
		ID:       id,
		Name:     name,
		Price:    core.Money{Cents: 99900},
		Currency: core.RUB,
		Cycle:    core.Monthly,
		Category: core.Work,
		IsActive: true,
	}
}

func TestNewSeedsEmptyRepository(t *testing.T) {
	repo := &fakeRepo{}
	s, err := New(context.Background(), repo, defaultPrefs())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	subs := s.Subscriptions()
	if len(subs) != 2 {
		t.Fatalf("expected 2 seeded subscriptions, got %d", len(subs))
	}
	if subs[0].Name != "Netflix" || subs[1].Name != "Spotify" {
		t.Fatalf("unexpected seed: %+v", subs)
	}
	if repo.saves != 1 {
		t.Fatalf("seed must be persisted once, saves=%d", repo.saves)
	}
}

func TestNewRestoresPersistedState(t *testing.T) {
	repo := &fakeRepo{
		found: true,
		state: State{
			Subscriptions: []core.Subscription{newSub("x", "Figma")},
			Preferences:   core.Preferences{BaseCurrency: core.EUR, ViewMode: core.ViewYearly},
		},
	}
	s, err := New(context.Background(), repo, defaultPrefs())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := s.Subscriptions(); len(got) != 1 || got[0].Name != "Figma" {
		t.Fatalf("unexpected restore: %+v", got)
	}
	if p := s.Preferences(); p.BaseCurrency != core.EUR || p.ViewMode != core.ViewYearly {
		t.Fatalf("preferences not restored: %+v", p)
	}
}

func TestAddDeleteToggle(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{found: true} // empty but present, no seeding
	s, err := New(ctx, repo, defaultPrefs())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := s.Add(ctx, newSub("a", "GitHub")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(ctx, newSub("a", "Other")); err != ErrDuplicateID {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	got, err := s.Toggle(ctx, "a")
	if err != nil || got.IsActive {
		t.Fatalf("toggle: got %+v, err %v", got, err)
	}
	got, err = s.Toggle(ctx, "a")
	if err != nil || !got.IsActive {
		t.Fatalf("toggle back: got %+v, err %v", got, err)
	}
	if _, err := s.Toggle(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	removed, err := s.Delete(ctx, "a")
	if err != nil || removed.ID != "a" {
		t.Fatalf("delete: got %+v, err %v", removed, err)
	}
	if _, err := s.Delete(ctx, "a"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if len(s.Subscriptions()) != 0 {
		t.Fatalf("expected empty collection")
	}
}

func TestMutationsPersistEveryTime(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{found: true}
	s, _ := New(ctx, repo, defaultPrefs())

	s.Add(ctx, newSub("a", "GitHub"))
	s.Toggle(ctx, "a")
	s.SetBaseCurrency(ctx, core.USD)
	s.ToggleViewMode(ctx)
	s.Delete(ctx, "a")

	if repo.saves != 5 {
		t.Fatalf("expected 5 saves, got %d", repo.saves)
	}
	if repo.state.Preferences.BaseCurrency != core.USD {
		t.Fatalf("persisted prefs stale: %+v", repo.state.Preferences)
	}
	if repo.state.Preferences.ViewMode != core.ViewYearly {
		t.Fatalf("persisted view mode stale: %+v", repo.state.Preferences)
	}
}

func TestFailedSaveRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{found: true}
	s, _ := New(ctx, repo, defaultPrefs())
	s.Add(ctx, newSub("a", "GitHub"))

	repo.failNow = true
	if err := s.Add(ctx, newSub("b", "Trello")); err == nil {
		t.Fatalf("expected save error")
	}
	if len(s.Subscriptions()) != 1 {
		t.Fatalf("failed add must not change the collection")
	}
	if _, err := s.Toggle(ctx, "a"); err == nil {
		t.Fatalf("expected save error")
	}
	if !s.Subscriptions()[0].IsActive {
		t.Fatalf("failed toggle must roll back")
	}
	if err := s.SetBaseCurrency(ctx, core.EUR); err == nil {
		t.Fatalf("expected save error")
	}
	if s.Preferences().BaseCurrency != core.RUB {
		t.Fatalf("failed currency change must roll back")
	}
}

func TestSetRatesIsWholesale(t *testing.T) {
	ctx := context.Background()
	s, _ := New(ctx, &fakeRepo{found: true}, defaultPrefs())

	table := core.RateTable{"usd": 1, "rub": 92.5, "eur": 0.92}
	s.SetRates(table)

	// Mutating the caller's map must not leak into the store.
	table["rub"] = 1
	if got := s.Rates().Rate(core.RUB); got != 92.5 {
		t.Fatalf("expected 92.5, got %v", got)
	}
}

func TestSnapshotIsConsistentCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := New(ctx, &fakeRepo{found: true}, defaultPrefs())
	s.Add(ctx, newSub("a", "GitHub"))

	subs, prefs, ratesTable := s.Snapshot()
	if len(subs) != 1 || prefs.BaseCurrency != core.RUB || ratesTable == nil {
		t.Fatalf("unexpected snapshot: %v %v %v", subs, prefs, ratesTable)
	}

	// The snapshot is a copy: later mutations don't show through.
	s.Delete(ctx, "a")
	if len(subs) != 1 {
		t.Fatalf("snapshot mutated by later delete")
	}
}

func TestSetBaseCurrencyRejectsUnknownCode(t *testing.T) {
	ctx := context.Background()
	s, _ := New(ctx, &fakeRepo{found: true}, defaultPrefs())
	if err := s.SetBaseCurrency(ctx, "GBP"); err != core.ErrInvalidCurrency {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}
