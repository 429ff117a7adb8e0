package inventory

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/tx"
)

// Repository mutates stock inside an active transaction scope. Both
// mutations fail with a NotFoundError when the item does not exist.
// Decrement is conditional: it refuses to drive quantity below zero
// and fails with an insufficient-stock ValidationError instead, so the
// lifecycle's pre-check is an early exit rather than the sole guard
// against overselling.
type Repository interface {
	Get(ctx context.Context, productID string) (*StockItem, error)
	Decrement(ctx context.Context, scope tx.Scope, productID string, quantity int) error
	Increment(ctx context.Context, scope tx.Scope, productID string, quantity int) error
}
