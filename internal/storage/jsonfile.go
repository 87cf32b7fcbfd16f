// Package storage provides repository implementations for the store:
// a JSON file (default), SQLite, and an in-memory variant.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"submanager/internal/core"
	"submanager/internal/store"
)

// StorageKey is the fixed name state is persisted under inside the
// data directory.
const StorageKey = "sub-storage.json"

// FileRepository persists the store state as a single JSON document,
// written atomically via a temp file and rename.
type FileRepository struct {
	path string
}

func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileRepository{path: filepath.Join(dataDir, StorageKey)}, nil
}

type (
	subscriptionDoc struct {
		ID              string    `json:"id"`
		Name            string    `json:"name"`
		PriceCents      int64     `json:"priceCents"`
		Currency        string    `json:"currency"`
		Cycle           string    `json:"cycle"`
		Category        string    `json:"category"`
		NextPaymentDate core.Date `json:"nextPaymentDate"`
		IsActive        bool      `json:"isActive"`
	}

	preferencesDoc struct {
		BaseCurrency string `json:"baseCurrency"`
		ViewMode     string `json:"viewMode"`
	}

	stateDoc struct {
		Subscriptions []subscriptionDoc `json:"subscriptions"`
		Preferences   preferencesDoc    `json:"preferences"`
	}
)

func toDoc(s store.State) stateDoc {
	doc := stateDoc{
		Subscriptions: make([]subscriptionDoc, 0, len(s.Subscriptions)),
		Preferences: preferencesDoc{
			BaseCurrency: string(s.Preferences.BaseCurrency),
			ViewMode:     string(s.Preferences.ViewMode),
		},
	}
	for _, sub := range s.Subscriptions {
		doc.Subscriptions = append(doc.Subscriptions, subscriptionDoc{
			ID:              sub.ID,
			Name:            sub.Name,
			PriceCents:      sub.Price.Cents,
			Currency:        string(sub.Currency),
			Cycle:           string(sub.Cycle),
			Category:        string(sub.Category),
			NextPaymentDate: sub.NextPaymentDate,
			IsActive:        sub.IsActive,
		})
	}
	return doc
}

func fromDoc(doc stateDoc) store.State {
	s := store.State{
		Subscriptions: make([]core.Subscription, 0, len(doc.Subscriptions)),
		Preferences: core.Preferences{
			BaseCurrency: core.Currency(doc.Preferences.BaseCurrency),
			ViewMode:     core.ViewMode(doc.Preferences.ViewMode),
		},
	}
	for _, sub := range doc.Subscriptions {
		s.Subscriptions = append(s.Subscriptions, core.Subscription{
			ID:              sub.ID,
			Name:            sub.Name,
			Price:           core.Money{Cents: sub.PriceCents},
			Currency:        core.Currency(sub.Currency),
			Cycle:           core.Cycle(sub.Cycle),
			Category:        core.Category(sub.Category),
			NextPaymentDate: sub.NextPaymentDate,
			IsActive:        sub.IsActive,
		})
	}
	return s
}

func (r *FileRepository) Load(_ context.Context) (store.State, bool, error) {
	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return store.State{}, false, nil
	}
	if err != nil {
		return store.State{}, false, fmt.Errorf("read %s: %w", r.path, err)
	}

	var doc stateDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return store.State{}, false, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return fromDoc(doc), true, nil
}

func (r *FileRepository) Save(_ context.Context, s store.State) error {
	raw, err := json.MarshalIndent(toDoc(s), "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}
