// Package store holds the subscription collection and user preferences
// behind a small set of named mutations, with snapshot reads for the
// aggregation engine. Persistence goes through the Repository port on
// every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"submanager/internal/core"
)

var (
	ErrNotFound    = errors.New("subscription not found")
	ErrDuplicateID = errors.New("duplicate subscription id")
)

// State is the durable part of the store: the subscription list and
// preferences round-trip through the repository; the rate table does
// not, it is refetched on startup.
type State struct {
	Subscriptions []core.Subscription
	Preferences   core.Preferences
}

// Repository persists State. Load reports found=false when nothing has
// been persisted yet, letting the store seed its initial data.
type Repository interface {
	Load(ctx context.Context) (State, bool, error)
	Save(ctx context.Context, s State) error
}

// Store is safe for concurrent use: reads see a complete snapshot and
// never observe a torn collection or a partially-replaced rate table.
type Store struct {
	mu    sync.RWMutex
	subs  []core.Subscription
	prefs core.Preferences
	rates core.RateTable
	repo  Repository
}

// New loads persisted state, or seeds a fresh store when the
// repository holds nothing yet.
func New(ctx context.Context, repo Repository, defaults core.Preferences) (*Store, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default preferences: %w", err)
	}

	s := &Store{
		repo:  repo,
		prefs: defaults,
		// Identity rates until the first fetch completes.
		rates: core.RateTable{"usd": 1, "rub": 1, "eur": 1},
	}

	state, found, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if found {
		s.subs = state.Subscriptions
		if state.Preferences.Validate() == nil {
			s.prefs = state.Preferences
		}
		return s, nil
	}

	s.subs = seedSubscriptions(time.Now())
	if err := repo.Save(ctx, s.state()); err != nil {
		return nil, fmt.Errorf("save seed state: %w", err)
	}
	return s, nil
}

// seedSubscriptions is the starter content for a first run.
func seedSubscriptions(now time.Time) []core.Subscription {
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	return []core.Subscription{
		{
			ID:              "1",
			Name:            "Netflix",
			Price:           core.Money{Cents: 50000},
			Currency:        core.RUB,
			Cycle:           core.Monthly,
			Category:        core.Entertainment,
			NextPaymentDate: today,
			IsActive:        true,
		},
		{
			ID:              "2",
			Name:            "Spotify",
			Price:           core.Money{Cents: 240000},
			Currency:        core.RUB,
			Cycle:           core.Yearly,
			Category:        core.Entertainment,
			NextPaymentDate: core.Date{Time: today.AddDate(0, 0, 5)},
			IsActive:        true,
		},
	}
}

// state builds the durable view; callers must hold the lock.
func (s *Store) state() State {
	subs := make([]core.Subscription, len(s.subs))
	copy(subs, s.subs)
	return State{Subscriptions: subs, Preferences: s.prefs}
}

// Add appends a fully-formed subscription. The caller is responsible
// for entry validation; the store only refuses id reuse.
func (s *Store) Add(ctx context.Context, sub core.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.subs {
		if existing.ID == sub.ID {
			return ErrDuplicateID
		}
	}
	s.subs = append(s.subs, sub)
	if err := s.repo.Save(ctx, s.state()); err != nil {
		s.subs = s.subs[:len(s.subs)-1]
		return fmt.Errorf("persist add: %w", err)
	}
	return nil
}

// Delete removes a subscription by id.
func (s *Store) Delete(ctx context.Context, id string) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, sub := range s.subs {
		if sub.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Subscription{}, ErrNotFound
	}
	removed := s.subs[idx]
	rest := make([]core.Subscription, 0, len(s.subs)-1)
	rest = append(rest, s.subs[:idx]...)
	rest = append(rest, s.subs[idx+1:]...)

	prev := s.subs
	s.subs = rest
	if err := s.repo.Save(ctx, s.state()); err != nil {
		s.subs = prev
		return core.Subscription{}, fmt.Errorf("persist delete: %w", err)
	}
	return removed, nil
}

// Toggle flips a subscription's active flag and returns the updated
// record. Inactive subscriptions stay stored and can be reactivated.
func (s *Store) Toggle(ctx context.Context, id string) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, sub := range s.subs {
		if sub.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Subscription{}, ErrNotFound
	}
	s.subs[idx].IsActive = !s.subs[idx].IsActive
	if err := s.repo.Save(ctx, s.state()); err != nil {
		s.subs[idx].IsActive = !s.subs[idx].IsActive
		return core.Subscription{}, fmt.Errorf("persist toggle: %w", err)
	}
	return s.subs[idx], nil
}

// SetBaseCurrency switches the currency totals are displayed in.
func (s *Store) SetBaseCurrency(ctx context.Context, c core.Currency) error {
	if !c.Valid() {
		return core.ErrInvalidCurrency
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.prefs.BaseCurrency
	s.prefs.BaseCurrency = c
	if err := s.repo.Save(ctx, s.state()); err != nil {
		s.prefs.BaseCurrency = prev
		return fmt.Errorf("persist base currency: %w", err)
	}
	return nil
}

// ToggleViewMode flips between the monthly and yearly view and returns
// the new mode.
func (s *Store) ToggleViewMode(ctx context.Context) (core.ViewMode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.prefs.ViewMode
	s.prefs.ViewMode = prev.Toggle()
	if err := s.repo.Save(ctx, s.state()); err != nil {
		s.prefs.ViewMode = prev
		return "", fmt.Errorf("persist view mode: %w", err)
	}
	return s.prefs.ViewMode, nil
}

// SetRates replaces the rate table wholesale. The table is cloned on
// the way in, so no reader ever observes a partially-updated table.
// Rates are deliberately not persisted; they are refetched at startup.
func (s *Store) SetRates(table core.RateTable) {
	cloned := table.Clone()
	s.mu.Lock()
	s.rates = cloned
	s.mu.Unlock()
}

// Rates returns the current rate table. Tables are replaced wholesale
// and never mutated in place, so the reference is safe to share.
func (s *Store) Rates() core.RateTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rates
}

// Subscriptions returns a copy of the collection in stored order.
func (s *Store) Subscriptions() []core.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Subscription, len(s.subs))
	copy(out, s.subs)
	return out
}

func (s *Store) Preferences() core.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Snapshot returns subscriptions, preferences, and rates from one
// consistent point in time, for aggregation over the whole collection.
func (s *Store) Snapshot() ([]core.Subscription, core.Preferences, core.RateTable) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := make([]core.Subscription, len(s.subs))
	copy(subs, s.subs)
	return subs, s.prefs, s.rates
}
