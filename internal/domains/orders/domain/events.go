package domain

import "time"

// EventType names a lifecycle event published after a transition commits.
type EventType string

const (
	EventOrderCreated   EventType = "order.created"
	EventOrderPaid      EventType = "order.paid"
	EventOrderShipped   EventType = "order.shipped"
	EventOrderCompleted EventType = "order.completed"
	EventOrderCancelled EventType = "order.cancelled"
)

// Event describes a committed order state change.
type Event struct {
	Type       EventType `json:"type"`
	OrderID    int64     `json:"orderId"`
	OrderNo    string    `json:"orderNo"`
	ProductID  int64     `json:"productId"`
	BuyerID    int64     `json:"buyerId"`
	SellerID   int64     `json:"sellerId"`
	Status     Status    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventForAction maps a lifecycle action to the event it emits.
func EventForAction(action Action) EventType {
	switch action {
	case ActionPay:
		return EventOrderPaid
	case ActionShip:
		return EventOrderShipped
	case ActionComplete:
		return EventOrderCompleted
	case ActionCancel:
		return EventOrderCancelled
	default:
		return ""
	}
}

// NewEvent snapshots the order identity and status into an event.
func NewEvent(eventType EventType, order *Order, at time.Time) Event {
	return Event{
		Type:       eventType,
		OrderID:    order.ID,
		OrderNo:    order.Number,
		ProductID:  order.ProductID,
		BuyerID:    order.BuyerID,
		SellerID:   order.SellerID,
		Status:     order.Status,
		OccurredAt: at.UTC(),
	}
}
