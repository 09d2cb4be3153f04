package models

import "time"

// Lifecycle event names. They double as routing keys on the orders topic
// exchange.
const (
	EventOrderPending = "order.pending"
	EventOrderCooked  = "order.cooked"
	EventOrderUpdated = "order.updated"
)

// OrderEvent is the envelope published after a committed order state change.
// OwnerID is set only on order.pending so owner-side subscribers can filter
// without re-reading the restaurant.
type OrderEvent struct {
	Event      string    `json:"event"`
	Order      Order     `json:"order"`
	OwnerID    int64     `json:"owner_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
