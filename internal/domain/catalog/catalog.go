// Package catalog exposes the read-side product lookup the order core
// resolves line items against.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry joined with its current availability.
// Price is the live catalog price; orders snapshot it at creation time.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Available int
}

// Repository resolves a set of item identities in one batch call.
// Identities that do not exist are simply absent from the result; the
// caller treats the shortfall as "item not found".
type Repository interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]Product, error)
}
