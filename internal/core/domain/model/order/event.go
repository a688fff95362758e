package order

import "time"

// EventType names a push event delivered to tenant terminals.
type EventType string

const (
	EventNewOrder     EventType = "new-order"
	EventStatusUpdate EventType = "order-status-update"
)

// Event is the envelope pushed to every live connection of a tenant.
type Event struct {
	Type      EventType `json:"type"`
	Order     *Order    `json:"order"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(eventType EventType, o *Order, at time.Time) Event {
	return Event{Type: eventType, Order: o, Timestamp: at}
}
