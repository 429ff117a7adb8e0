// Package order implements the order lifecycle: the state machine that
// creates, pays, and cancels orders while keeping stock mutation and
// order mutation inside one atomic scope.
package order

import (
	"context"
	"sort"
	"time"

	domactor "github.com/Zhima-Mochi/minishop-orders/internal/domain/actor"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/errs"
	dominv "github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/tx"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName        = "order-service"
	useCaseOrderCreate = "order.create"
	useCaseOrderPay    = "order.pay"
	useCaseOrderCancel = "order.cancel"
	useCaseOrderGet    = "order.get"
	spanPrefix         = "UC."
	publishTimeout     = 300 * time.Millisecond
)

// Outcome tells the caller how a lifecycle call resolved. The
// "already_*" variants are idempotent successes: nothing was mutated.
type Outcome string

const (
	OutcomeCreated          Outcome = "created"
	OutcomePaid             Outcome = "paid"
	OutcomeAlreadyPaid      Outcome = "already_paid"
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeAlreadyCancelled Outcome = "already_cancelled"
	OutcomeFetched          Outcome = "fetched"
)

// Result pairs the persisted order with the outcome of the call.
type Result struct {
	Order   *domain.Order
	Outcome Outcome
}

// Item is one requested order line: a catalog identity and a quantity.
type Item struct {
	ProductID string
	Quantity  int
}

// Service orchestrates the order lifecycle over injected collaborators.
// It owns what changes; the stores own how changes are applied; the tx
// manager owns atomicity of the combination.
type Service struct {
	orders    domain.Repository
	stock     dominv.Repository
	catalog   domcatalog.Repository
	txm       tx.Manager
	idGen     IDGenerator
	publisher domoutbox.Publisher
	tel       observability.Observability

	log           observability.Logger
	reqCounter    observability.Counter
	durHistogram  observability.Histogram
	publishFails  observability.Counter
	paidCancelled observability.Counter
}

func NewService(
	orders domain.Repository,
	stock dominv.Repository,
	catalog domcatalog.Repository,
	txm tx.Manager,
	idGen IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	log := tel.Logger().With(observability.F("service", serviceName))
	metrics := tel.Metrics()

	return &Service{
		orders:        orders,
		stock:         stock,
		catalog:       catalog,
		txm:           txm,
		idGen:         idGen,
		publisher:     publisher,
		tel:           tel,
		log:           log,
		reqCounter:    metrics.Counter(observability.MUsecaseRequests),
		durHistogram:  metrics.Histogram(observability.MUsecaseDuration),
		publishFails:  metrics.Counter(observability.MEventPublishFailures),
		paidCancelled: metrics.Counter(observability.MPaidOrderCancelled),
	}
}

// Create validates the request, snapshots unit prices, and persists the
// order together with its stock decrements in one atomic scope. All
// stock checks run before any mutation begins; a failing line means no
// order row and no partial reservation.
func (s *Service) Create(ctx context.Context, act domactor.Actor, items []Item) (_ *Result, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseOrderCreate))
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"CreateOrder",
		attribute.String("use_case", useCaseOrderCreate),
		attribute.String("order.owner_id", act.ID),
	)
	start := time.Now()
	defer func() { s.finish(ctx, span, logger, useCaseOrderCreate, start, err) }()

	if act.ID == "" {
		return nil, errs.NewValidation("actor id is required")
	}
	if len(items) == 0 {
		return nil, errs.NewValidation("order must contain at least one item")
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, errs.NewValidation("quantity must be greater than zero")
		}
	}

	products, missing, err := s.resolveItems(ctx, items)
	if err != nil {
		return nil, errs.NewInternal(err)
	}
	if len(missing) > 0 {
		return nil, errs.NewUnknownItems(missing)
	}

	// Sufficiency pre-check over the aggregate quantity per product.
	// This is the early exit that yields a precise error; the store's
	// conditional decrement below remains the actual floor.
	requested := make(map[string]int, len(items))
	for _, it := range items {
		requested[it.ProductID] += it.Quantity
	}
	for _, it := range items {
		p := products[it.ProductID]
		if want := requested[it.ProductID]; want > p.Available {
			return nil, errs.NewInsufficientStock(it.ProductID, p.Available, want)
		}
	}

	lines := make([]domain.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.LineItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: products[it.ProductID].Price,
		})
	}

	entity, err := domain.New(s.idGen.NewID(), act.ID, lines)
	if err != nil {
		return nil, err
	}

	err = s.txm.RunAtomic(ctx, func(ctx context.Context, scope tx.Scope) error {
		if err := s.orders.Create(ctx, scope, entity); err != nil {
			return err
		}
		for _, line := range entity.Items {
			if err := s.stock.Decrement(ctx, scope, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewInternal(err)
	}

	span.SetAttributes(attribute.String("order.id", entity.ID))
	span.AddEvent("order.created", trace.WithAttributes(attribute.String("order.id", entity.ID)))
	s.publish(ctx, logger, domain.NewOrderCreatedEvent(entity))

	return &Result{Order: entity, Outcome: OutcomeCreated}, nil
}

// Pay transitions a created order to paid. No stock moves on payment.
// Paying an already-paid order is an idempotent no-op; paying a
// cancelled order fails with a ConflictError.
func (s *Service) Pay(ctx context.Context, act domactor.Actor, orderID string) (_ *Result, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseOrderPay),
		observability.F("order_id", orderID),
	)
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"PayOrder",
		attribute.String("use_case", useCaseOrderPay),
		attribute.String("order.id", orderID),
	)
	start := time.Now()
	defer func() { s.finish(ctx, span, logger, useCaseOrderPay, start, err) }()

	if _, err := s.authorized(ctx, act, orderID); err != nil {
		return nil, err
	}

	// The transition is decided on a copy re-read inside the scope, so
	// a transition committed between the authorization read and this
	// point is observed rather than overwritten.
	var (
		entity  *domain.Order
		outcome domain.Outcome
	)
	err = s.txm.RunAtomic(ctx, func(ctx context.Context, scope tx.Scope) error {
		var txErr error
		entity, txErr = s.orders.FindByIDForUpdate(ctx, scope, orderID)
		if txErr != nil {
			return txErr
		}
		outcome, txErr = entity.Pay()
		if txErr != nil {
			return txErr
		}
		if outcome == domain.OutcomeAlreadyPaid {
			return nil
		}
		return s.orders.UpdateStatus(ctx, scope, entity.ID, domain.StatusPaid)
	})
	if err != nil {
		return nil, errs.NewInternal(err)
	}

	if outcome == domain.OutcomeAlreadyPaid {
		span.AddEvent("order.already_paid")
		return &Result{Order: entity, Outcome: OutcomeAlreadyPaid}, nil
	}

	span.AddEvent("order.paid")
	s.publish(ctx, logger, domain.NewOrderPaidEvent(entity))

	return &Result{Order: entity, Outcome: OutcomePaid}, nil
}

// Cancel transitions a created or paid order to cancelled, restoring
// every deducted quantity atomically with the status change. Cancelling
// a paid order is permitted (no refund mechanics are modelled) and is
// surfaced as an explicit audit event rather than a buried log line.
func (s *Service) Cancel(ctx context.Context, act domactor.Actor, orderID string) (_ *Result, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseOrderCancel),
		observability.F("order_id", orderID),
	)
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"CancelOrder",
		attribute.String("use_case", useCaseOrderCancel),
		attribute.String("order.id", orderID),
	)
	start := time.Now()
	defer func() { s.finish(ctx, span, logger, useCaseOrderCancel, start, err) }()

	if _, err := s.authorized(ctx, act, orderID); err != nil {
		return nil, err
	}

	// Re-read and decide inside the scope, mirroring Pay: the stock
	// restore must pair with the transition that actually happened, not
	// the one observed before the lock was taken.
	var (
		entity   *domain.Order
		previous domain.Status
		outcome  domain.Outcome
	)
	err = s.txm.RunAtomic(ctx, func(ctx context.Context, scope tx.Scope) error {
		var txErr error
		entity, txErr = s.orders.FindByIDForUpdate(ctx, scope, orderID)
		if txErr != nil {
			return txErr
		}
		previous = entity.Status
		outcome, txErr = entity.Cancel()
		if txErr != nil {
			return txErr
		}
		if outcome == domain.OutcomeAlreadyCancelled {
			return nil
		}
		for _, line := range entity.Items {
			if err := s.stock.Increment(ctx, scope, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return s.orders.UpdateStatus(ctx, scope, entity.ID, domain.StatusCancelled)
	})
	if err != nil {
		return nil, errs.NewInternal(err)
	}

	if outcome == domain.OutcomeAlreadyCancelled {
		span.AddEvent("order.already_cancelled")
		return &Result{Order: entity, Outcome: OutcomeAlreadyCancelled}, nil
	}

	span.AddEvent("order.cancelled", trace.WithAttributes(
		attribute.String("order.previous_status", string(previous)),
	))
	s.publish(ctx, logger, domain.NewOrderCancelledEvent(entity, previous))

	if previous == domain.StatusPaid {
		logger.Warn("paid_order_cancelled",
			observability.F("order_id", entity.ID),
			observability.F("owner_id", entity.OwnerID),
			observability.F("total", entity.Total.String()),
		)
		s.paidCancelled.Add(1)
		s.publish(ctx, logger, domain.NewPaidOrderCancelledEvent(entity))
	}

	return &Result{Order: entity, Outcome: OutcomeCancelled}, nil
}

// Get returns an order to its owner or to an elevated actor.
func (s *Service) Get(ctx context.Context, act domactor.Actor, orderID string) (_ *Result, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseOrderGet))
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"GetOrder",
		attribute.String("use_case", useCaseOrderGet),
		attribute.String("order.id", orderID),
	)
	start := time.Now()
	defer func() { s.finish(ctx, span, logger, useCaseOrderGet, start, err) }()

	entity, err := s.authorized(ctx, act, orderID)
	if err != nil {
		return nil, err
	}
	return &Result{Order: entity, Outcome: OutcomeFetched}, nil
}

// authorized loads the order and enforces the owner-or-elevated rule
// shared by pay, cancel, and get.
func (s *Service) authorized(ctx context.Context, act domactor.Actor, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, errs.NewValidation("order id is required")
	}
	entity, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errs.NewInternal(err)
	}
	if !act.CanAccess(entity.OwnerID) {
		return nil, &errs.AuthorizationError{ActorID: act.ID, OrderID: orderID}
	}
	return entity, nil
}

// resolveItems batch-resolves the distinct product identities. Missing
// identities come back as a sorted list, not an error, so the caller
// can name all of them at once.
func (s *Service) resolveItems(ctx context.Context, items []Item) (map[string]domcatalog.Product, []string, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	var missing []string
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return products, missing, nil
}

// publish sends a domain event on the bus after the transaction has
// committed. A publish failure never fails the use case.
func (s *Service) publish(ctx context.Context, logger observability.Logger, e domoutbox.Event) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, e); err != nil {
		s.publishFails.Add(1, observability.L("event", e.EventName()))
		logger.Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err.Error()),
		)
	}
}

// finish closes the span and emits the RED metrics and the terminal
// use-case log line, mirroring every lifecycle entry point.
func (s *Service) finish(ctx context.Context, span trace.Span, logger observability.Logger, useCase string, start time.Time, err error) {
	lat := time.Since(start).Seconds()
	outcome := "success"

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
	if err != nil {
		outcome = "error"
	}

	s.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
	s.durHistogram.Observe(lat, observability.L("use_case", useCase))

	fields := []observability.Field{
		observability.F("outcome", outcome),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	logger.Info("use_case_done", fields...)
}
