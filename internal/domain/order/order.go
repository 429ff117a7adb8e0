package order

import (
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/errs"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusCreated   Status = "created"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// LineItem is a single line of an order. UnitPrice is the catalog price
// snapshotted at creation time; later catalog changes never touch it.
type LineItem struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID        string
	OwnerID   string
	Items     []LineItem
	Total     decimal.Decimal
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New builds an order in status created. The total is computed here,
// once, and never recomputed.
func New(id, ownerID string, items []LineItem) (*Order, error) {
	if len(items) == 0 {
		return nil, errs.NewValidation("order must contain at least one item")
	}

	total := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, errs.NewValidation("quantity must be greater than zero")
		}
		if it.UnitPrice.IsNegative() {
			return nil, errs.NewValidation("unit price must be zero or greater")
		}
		total = total.Add(it.Subtotal())
	}

	now := time.Now().UTC()
	return &Order{
		ID:        id,
		OwnerID:   ownerID,
		Items:     append([]LineItem(nil), items...),
		Total:     total,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Pay applies the created→paid transition. Paying an already-paid order
// is an idempotent no-op; paying a cancelled order is a conflict.
func (o *Order) Pay() (Outcome, error) {
	next, outcome, err := stateFor(o.Status).pay(o)
	if err != nil {
		return outcome, err
	}
	if outcome == OutcomeApplied {
		o.Status = next.status()
		o.touch()
	}
	return outcome, nil
}

// Cancel applies the transition to cancelled from either created or
// paid. Cancelling an already-cancelled order is an idempotent no-op.
func (o *Order) Cancel() (Outcome, error) {
	next, outcome, err := stateFor(o.Status).cancel(o)
	if err != nil {
		return outcome, err
	}
	if outcome == OutcomeApplied {
		o.Status = next.status()
		o.touch()
	}
	return outcome, nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
