// Package service orchestrates store mutations with event publishing.
// Persistence is authoritative; the event bus is best-effort.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"submanager/internal/amqp"
	"submanager/internal/core"
	"submanager/internal/store"
)

// EventPublisher is the outbound port to the event bus. A nil
// publisher disables events entirely.
type EventPublisher interface {
	PublishSubscriptionEvent(ctx context.Context, event *amqp.SubscriptionEvent) error
}

type SubscriptionService struct {
	store     *store.Store
	publisher EventPublisher
}

func NewSubscriptionService(st *store.Store, publisher EventPublisher) *SubscriptionService {
	return &SubscriptionService{store: st, publisher: publisher}
}

// NewID returns an opaque unique identifier for a new subscription.
func NewID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("sub_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// Create stores a fully-formed subscription and publishes a created
// event. The record is validated once more here so no caller can slip
// an out-of-contract record into the store.
func (s *SubscriptionService) Create(ctx context.Context, sub core.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := s.store.Add(ctx, sub); err != nil {
		return fmt.Errorf("add subscription: %w", err)
	}
	s.publish(ctx, amqp.NewSubscriptionEvent(amqp.OpCreated, sub))
	return nil
}

// Delete removes a subscription and publishes a deleted event.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, amqp.NewSubscriptionEvent(amqp.OpDeleted, removed))
	return nil
}

// Toggle flips the active flag and publishes a toggled event carrying
// the record's new state.
func (s *SubscriptionService) Toggle(ctx context.Context, id string) (core.Subscription, error) {
	updated, err := s.store.Toggle(ctx, id)
	if err != nil {
		return core.Subscription{}, err
	}
	s.publish(ctx, amqp.NewSubscriptionEvent(amqp.OpToggled, updated))
	return updated, nil
}

// publish is best-effort: the mutation already persisted, so a bus
// failure is logged and swallowed rather than failing the request.
func (s *SubscriptionService) publish(ctx context.Context, event *amqp.SubscriptionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSubscriptionEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish subscription event",
			"op", event.Op, "id", event.ID, "error", err)
	}
}
