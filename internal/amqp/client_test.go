package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"submanager/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped
		{10, 30 * time.Second}, // capped
		{63, 30 * time.Second}, // shift overflow stays capped
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection closed", errors.New("Exception (504) Reason: \"channel/connection is not open\": connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"auth failure", errors.New("ACCESS_REFUSED - Login was refused"), false},
		{"plain error", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestSubscriptionEventRoundTrip(t *testing.T) {
	sub := core.Subscription{
		ID:       "abc",
		Name:     "Netflix",
		Price:    core.Money{Cents: 50000},
		Currency: core.RUB,
		Cycle:    core.Monthly,
		Category: core.Entertainment,
		IsActive: true,
	}
	event := NewSubscriptionEvent(OpCreated, sub)
	if event.Op != OpCreated || event.Timestamp.IsZero() {
		t.Fatalf("unexpected event: %+v", event)
	}

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	back, err := SubscriptionEventFromJSON(body)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if back.ID != "abc" || back.PriceCents != 50000 || back.Currency != core.RUB || !back.IsActive {
		t.Fatalf("round trip mangled: %+v", back)
	}
}

func TestSubscriptionEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := SubscriptionEventFromJSON([]byte("{broken")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
