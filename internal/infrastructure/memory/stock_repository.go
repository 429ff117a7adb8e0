package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/errs"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/tx"
)

type StockRepository struct {
	store *Store
}

func NewStockRepository(store *Store) *StockRepository {
	return &StockRepository{store: store}
}

func (r *StockRepository) Get(ctx context.Context, productID string) (*domain.StockItem, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.stock[productID]
	if !ok {
		return nil, errs.NewItemNotFound(productID)
	}
	clone := *item
	return &clone, nil
}

// Decrement is conditional: the quantity floor is enforced here, not by
// the caller's pre-check, so two racing creates can never oversell.
func (r *StockRepository) Decrement(ctx context.Context, scope tx.Scope, productID string, quantity int) error {
	_ = ctx
	if quantity <= 0 {
		return fmt.Errorf("stock repository: quantity must be greater than zero")
	}

	s, err := scopeFor(r.store, scope)
	if err != nil {
		return err
	}

	item, ok := r.store.stock[productID]
	if !ok {
		return errs.NewItemNotFound(productID)
	}
	if item.Quantity < quantity {
		return errs.NewInsufficientStock(productID, item.Quantity, quantity)
	}

	r.apply(s, item, -quantity)
	return nil
}

func (r *StockRepository) Increment(ctx context.Context, scope tx.Scope, productID string, quantity int) error {
	_ = ctx
	if quantity <= 0 {
		return fmt.Errorf("stock repository: quantity must be greater than zero")
	}

	s, err := scopeFor(r.store, scope)
	if err != nil {
		return err
	}

	item, ok := r.store.stock[productID]
	if !ok {
		return errs.NewItemNotFound(productID)
	}

	r.apply(s, item, quantity)
	return nil
}

func (r *StockRepository) apply(s *txScope, item *domain.StockItem, delta int) {
	prevQty, prevUpdated := item.Quantity, item.UpdatedAt
	item.Quantity += delta
	item.UpdatedAt = time.Now().UTC()
	s.record(func() {
		item.Quantity = prevQty
		item.UpdatedAt = prevUpdated
	})
}
