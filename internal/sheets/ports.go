package sheets

import (
	"context"
	"time"

	"submanager/internal/core"
)

// ChangelogEntry is one row of the audit trail: a subscription
// mutation frozen at the moment it happened.
type ChangelogEntry struct {
	When     time.Time
	Op       string // created | deleted | toggled
	ID       string
	Name     string
	Price    core.Money
	Currency core.Currency
	Cycle    core.Cycle
	Category core.Category
	IsActive bool
}

// ChangelogAppender is the outbound port for the audit trail. Rows are
// append-only; nothing is ever read back.
type ChangelogAppender interface {
	Append(ctx context.Context, e ChangelogEntry) (rowRef string, err error)
}
