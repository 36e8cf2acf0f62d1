package models

const EventOrderCreated = "order_created"

// LogEvent is the wire format published to the log topic.
type LogEvent struct {
	Event   string `json:"event"`
	OrderID int64  `json:"order_id"`
}

func NewOrderCreatedEvent(orderID int64) LogEvent {
	return LogEvent{Event: EventOrderCreated, OrderID: orderID}
}
