package service

import (
	"context"
	"errors"
	"testing"

	"submanager/internal/amqp"
	"submanager/internal/core"
	"submanager/internal/storage"
	"submanager/internal/store"
)

type fakePublisher struct {
	events []*amqp.SubscriptionEvent
	fail   bool
}

func (f *fakePublisher) PublishSubscriptionEvent(ctx context.Context, e *amqp.SubscriptionEvent) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.events = append(f.events, e)
	return nil
}

func newService(t *testing.T, pub EventPublisher) *SubscriptionService {
	t.Helper()
	st, err := store.New(context.Background(), storage.NewMemoryRepository(),
		core.Preferences{BaseCurrency: core.RUB, ViewMode: core.ViewMonthly})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return NewSubscriptionService(st, pub)
}

func validSub() core.Subscription {
	return core.Subscription{
		ID:       NewID(),
		Name:     "Figma",
		Price:    core.Money{Cents: 1500},
		Currency: core.USD,
		Cycle:    core.Monthly,
		Category: core.Work,
		IsActive: true,
	}
}

func TestCreatePublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, pub)

	sub := validSub()
	if err := svc.Create(context.Background(), sub); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].Op != amqp.OpCreated || pub.events[0].ID != sub.ID {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestCreateRejectsInvalidRecord(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(t, pub)

	sub := validSub()
	sub.Price = core.Money{}
	if err := svc.Create(context.Background(), sub); err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no event should be published for a rejected record")
	}
}

func TestDeleteAndToggleEvents(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newService(t, pub)

	sub := validSub()
	svc.Create(ctx, sub)

	updated, err := svc.Toggle(ctx, sub.ID)
	if err != nil || updated.IsActive {
		t.Fatalf("toggle: %+v err=%v", updated, err)
	}
	if err := svc.Delete(ctx, sub.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, sub.ID); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ops := []string{}
	for _, e := range pub.events {
		ops = append(ops, e.Op)
	}
	want := []string{amqp.OpCreated, amqp.OpToggled, amqp.OpDeleted}
	if len(ops) != len(want) {
		t.Fatalf("expected %v, got %v", want, ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ops)
		}
	}
	// The toggled event carries the new state.
	if pub.events[1].IsActive {
		t.Fatalf("toggled event should carry the deactivated state")
	}
}

func TestPublisherFailureDoesNotFailMutation(t *testing.T) {
	svc := newService(t, &fakePublisher{fail: true})
	if err := svc.Create(context.Background(), validSub()); err != nil {
		t.Fatalf("bus failure must not fail the request: %v", err)
	}
}

func TestNilPublisherIsFine(t *testing.T) {
	svc := newService(t, nil)
	if err := svc.Create(context.Background(), validSub()); err != nil {
		t.Fatalf("create without publisher: %v", err)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty id %q", id)
		}
		seen[id] = true
	}
}
