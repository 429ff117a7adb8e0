package order

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/tx"
)

// Repository persists orders. Write operations are scoped to an active
// transaction; FindByID returns the order with its line items
// materialized so callers can re-derive owner and status without a
// second round trip. Status transitions must be decided on the copy
// returned by FindByIDForUpdate so the decision and the write sit
// inside the same scope.
type Repository interface {
	Create(ctx context.Context, scope tx.Scope, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByIDForUpdate(ctx context.Context, scope tx.Scope, id string) (*Order, error)
	UpdateStatus(ctx context.Context, scope tx.Scope, id string, status Status) error
}
