package order

import "time"

// OrderCreatedEvent is emitted after an order and its stock decrements
// commit together.
type OrderCreatedEvent struct {
	OrderID    string
	OwnerID    string
	Total      string
	OccurredAt time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:    o.ID,
		OwnerID:    o.OwnerID,
		Total:      o.Total.String(),
		OccurredAt: time.Now().UTC(),
	}
}

// OrderPaidEvent is emitted after the created→paid transition commits.
type OrderPaidEvent struct {
	OrderID    string
	OwnerID    string
	Total      string
	OccurredAt time.Time
}

func (OrderPaidEvent) EventName() string { return "order.paid" }

func NewOrderPaidEvent(o *Order) OrderPaidEvent {
	return OrderPaidEvent{
		OrderID:    o.ID,
		OwnerID:    o.OwnerID,
		Total:      o.Total.String(),
		OccurredAt: time.Now().UTC(),
	}
}

// OrderCancelledEvent is emitted after a cancellation and its stock
// restores commit together.
type OrderCancelledEvent struct {
	OrderID        string
	OwnerID        string
	PreviousStatus Status
	OccurredAt     time.Time
}

func (OrderCancelledEvent) EventName() string { return "order.cancelled" }

func NewOrderCancelledEvent(o *Order, previous Status) OrderCancelledEvent {
	return OrderCancelledEvent{
		OrderID:        o.ID,
		OwnerID:        o.OwnerID,
		PreviousStatus: previous,
		OccurredAt:     time.Now().UTC(),
	}
}

// PaidOrderCancelledEvent is the audit signal for cancelling an order
// that was already paid. The cancellation itself is permitted (no
// refund mechanics are modelled) but operators need to see it happen.
type PaidOrderCancelledEvent struct {
	OrderID    string
	OwnerID    string
	Total      string
	OccurredAt time.Time
}

func (PaidOrderCancelledEvent) EventName() string { return "order.paid_cancelled" }

func NewPaidOrderCancelledEvent(o *Order) PaidOrderCancelledEvent {
	return PaidOrderCancelledEvent{
		OrderID:    o.ID,
		OwnerID:    o.OwnerID,
		Total:      o.Total.String(),
		OccurredAt: time.Now().UTC(),
	}
}
