package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"submanager/internal/core"
	"submanager/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the whole store state in SQLite. Saves
// replace the subscription table wholesale inside one transaction,
// matching the store's copy-on-write semantics; the position column
// preserves stored order, which the extremum tie-break depends on.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context) (store.State, bool, error) {
	var state store.State

	var baseCurrency, viewMode string
	err := r.db.QueryRowContext(ctx,
		`SELECT base_currency, view_mode FROM preferences WHERE id = 1`,
	).Scan(&baseCurrency, &viewMode)
	if err == sql.ErrNoRows {
		return store.State{}, false, nil
	}
	if err != nil {
		return store.State{}, false, fmt.Errorf("load preferences: %w", err)
	}
	state.Preferences = core.Preferences{
		BaseCurrency: core.Currency(baseCurrency),
		ViewMode:     core.ViewMode(viewMode),
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, price_cents, currency, cycle, category, next_payment_date, is_active
		 FROM subscriptions ORDER BY position`,
	)
	if err != nil {
		return store.State{}, false, fmt.Errorf("load subscriptions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sub      core.Subscription
			cents    int64
			currency string
			cycle    string
			category string
			nextDate string
			active   int64
		)
		if err := rows.Scan(&sub.ID, &sub.Name, &cents, &currency, &cycle, &category, &nextDate, &active); err != nil {
			return store.State{}, false, fmt.Errorf("scan subscription: %w", err)
		}
		sub.Price = core.Money{Cents: cents}
		sub.Currency = core.Currency(currency)
		sub.Cycle = core.Cycle(cycle)
		sub.Category = core.Category(category)
		sub.IsActive = active != 0
		if nextDate != "" {
			d, err := core.ParseDate(nextDate)
			if err != nil {
				return store.State{}, false, fmt.Errorf("parse next payment date %q: %w", nextDate, err)
			}
			sub.NextPaymentDate = d
		}
		state.Subscriptions = append(state.Subscriptions, sub)
	}
	if err := rows.Err(); err != nil {
		return store.State{}, false, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return state, true, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s store.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subscriptions`); err != nil {
		return fmt.Errorf("clear subscriptions: %w", err)
	}

	for pos, sub := range s.Subscriptions {
		active := 0
		if sub.IsActive {
			active = 1
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO subscriptions
			 (id, name, price_cents, currency, cycle, category, next_payment_date, is_active, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sub.ID, sub.Name, sub.Price.Cents, string(sub.Currency), string(sub.Cycle),
			string(sub.Category), sub.NextPaymentDate.String(), active, pos,
		)
		if err != nil {
			return fmt.Errorf("insert subscription %s: %w", sub.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO preferences (id, base_currency, view_mode) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET base_currency = excluded.base_currency, view_mode = excluded.view_mode`,
		string(s.Preferences.BaseCurrency), string(s.Preferences.ViewMode),
	)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
