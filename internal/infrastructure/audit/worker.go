// Package audit surfaces notable lifecycle events to operators. Its
// one real job today is the paid-order-cancellation signal: the
// cancellation is permitted, but someone should be looking at it.
package audit

import (
	"context"

	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

type Worker struct {
	subscriber domoutbox.Subscriber
	log        observability.Logger
}

func New(subscriber domoutbox.Subscriber, logger observability.Logger) *Worker {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Worker{
		subscriber: subscriber,
		log:        logger.With(observability.F("component", "audit_worker")),
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(domorder.PaidOrderCancelledEvent{}.EventName(), w.handlePaidOrderCancelled)
	w.subscriber.Subscribe(domorder.OrderCancelledEvent{}.EventName(), w.handleOrderCancelled)
}

func (w *Worker) handlePaidOrderCancelled(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.PaidOrderCancelledEvent)
	if !ok {
		return nil
	}
	logctx.FromOr(ctx, w.log).Warn("audit_paid_order_cancelled",
		observability.F("order_id", evt.OrderID),
		observability.F("owner_id", evt.OwnerID),
		observability.F("total", evt.Total),
		observability.F("occurred_at", evt.OccurredAt),
	)
	return nil
}

func (w *Worker) handleOrderCancelled(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.OrderCancelledEvent)
	if !ok {
		return nil
	}
	logctx.FromOr(ctx, w.log).Info("audit_order_cancelled",
		observability.F("order_id", evt.OrderID),
		observability.F("previous_status", string(evt.PreviousStatus)),
	)
	return nil
}
