package inventory

import "time"

// StockItem is the available-to-sell quantity of a catalog item.
// Quantity is never negative; it is mutated only through the
// repository's transaction-scoped increment/decrement.
type StockItem struct {
	ProductID string
	Quantity  int
	UpdatedAt time.Time
}
