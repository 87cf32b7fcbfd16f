package amqp

import (
	"encoding/json"
	"time"

	"submanager/internal/core"
)

const (
	OpCreated = "created"
	OpDeleted = "deleted"
	OpToggled = "toggled"
)

// SubscriptionEvent describes one mutation of the subscription
// collection. It carries a full snapshot of the record so consumers
// never have to read the store back.
type SubscriptionEvent struct {
	Op         string        `json:"op"`
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	PriceCents int64         `json:"priceCents"`
	Currency   core.Currency `json:"currency"`
	Cycle      core.Cycle    `json:"cycle"`
	Category   core.Category `json:"category"`
	IsActive   bool          `json:"isActive"`
	Timestamp  time.Time     `json:"timestamp"`
}

// NewSubscriptionEvent snapshots a record into an event.
func NewSubscriptionEvent(op string, sub core.Subscription) *SubscriptionEvent {
	return &SubscriptionEvent{
		Op:         op,
		ID:         sub.ID,
		Name:       sub.Name,
		PriceCents: sub.Price.Cents,
		Currency:   sub.Currency,
		Cycle:      sub.Cycle,
		Category:   sub.Category,
		IsActive:   sub.IsActive,
		Timestamp:  time.Now().UTC(),
	}
}

func (e *SubscriptionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func SubscriptionEventFromJSON(data []byte) (*SubscriptionEvent, error) {
	var e SubscriptionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
