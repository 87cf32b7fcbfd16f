// Package worker turns subscription events from the bus into
// changelog rows.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"submanager/internal/amqp"
	"submanager/internal/core"
	"submanager/internal/sheets"
)

type ChangelogWorker struct {
	appender sheets.ChangelogAppender
}

func NewChangelogWorker(appender sheets.ChangelogAppender) *ChangelogWorker {
	return &ChangelogWorker{appender: appender}
}

// HandleEvent appends one row per event. Returning an error makes the
// consumer requeue the delivery.
func (w *ChangelogWorker) HandleEvent(ctx context.Context, event *amqp.SubscriptionEvent) error {
	entry := sheets.ChangelogEntry{
		When:     event.Timestamp,
		Op:       event.Op,
		ID:       event.ID,
		Name:     event.Name,
		Price:    core.Money{Cents: event.PriceCents},
		Currency: event.Currency,
		Cycle:    event.Cycle,
		Category: event.Category,
		IsActive: event.IsActive,
	}

	ref, err := w.appender.Append(ctx, entry)
	if err != nil {
		return fmt.Errorf("append changelog row: %w", err)
	}

	slog.InfoContext(ctx, "Changelog row written",
		"op", event.Op, "id", event.ID, "ref", ref)
	return nil
}
