package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/errs"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/tx"
)

type OrderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Create(ctx context.Context, scope tx.Scope, o *domain.Order) error {
	_ = ctx
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	s, err := scopeFor(r.store, scope)
	if err != nil {
		return err
	}

	if _, exists := r.store.orders[o.ID]; exists {
		return fmt.Errorf("order repository: duplicate id %q", o.ID)
	}

	r.store.orders[o.ID] = o.Clone()
	id := o.ID
	s.record(func() { delete(r.store.orders, id) })
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, errs.NewOrderNotFound(id)
	}
	return o.Clone(), nil
}

// FindByIDForUpdate reads the order inside an active scope. The store
// lock is already held by the transaction manager, so the returned copy
// cannot go stale before a subsequent UpdateStatus in the same scope.
func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, scope tx.Scope, id string) (*domain.Order, error) {
	_ = ctx

	if _, err := scopeFor(r.store, scope); err != nil {
		return nil, err
	}

	o, ok := r.store.orders[id]
	if !ok {
		return nil, errs.NewOrderNotFound(id)
	}
	return o.Clone(), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, scope tx.Scope, id string, status domain.Status) error {
	_ = ctx

	s, err := scopeFor(r.store, scope)
	if err != nil {
		return err
	}

	o, ok := r.store.orders[id]
	if !ok {
		return errs.NewOrderNotFound(id)
	}

	prevStatus, prevUpdated := o.Status, o.UpdatedAt
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	s.record(func() {
		o.Status = prevStatus
		o.UpdatedAt = prevUpdated
	})
	return nil
}
