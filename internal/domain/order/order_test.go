package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/errs"
)

func testItems() []LineItem {
	return []LineItem{
		{ProductID: "item-a", Quantity: 3, UnitPrice: decimal.NewFromInt(500)},
		{ProductID: "item-b", Quantity: 2, UnitPrice: decimal.NewFromFloat(12.50)},
	}
}

func TestNew_ComputesTotalOnce(t *testing.T) {
	o, err := New("order-1", "user-1", testItems())
	require.NoError(t, err)

	assert.Equal(t, StatusCreated, o.Status)
	assert.True(t, decimal.NewFromInt(1525).Equal(o.Total), "total = 3*500 + 2*12.50, got %s", o.Total)
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
	assert.Len(t, o.Items, 2)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
	}{
		{name: "empty items", items: nil},
		{name: "zero quantity", items: []LineItem{{ProductID: "item-a", Quantity: 0, UnitPrice: decimal.NewFromInt(1)}}},
		{name: "negative quantity", items: []LineItem{{ProductID: "item-a", Quantity: -1, UnitPrice: decimal.NewFromInt(1)}}},
		{name: "negative price", items: []LineItem{{ProductID: "item-a", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o, err := New("order-1", "user-1", tc.items)
			assert.Nil(t, o)
			var ve *errs.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestPay_FromCreated(t *testing.T) {
	o, err := New("order-1", "user-1", testItems())
	require.NoError(t, err)

	outcome, err := o.Pay()
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, StatusPaid, o.Status)
}

func TestPay_AlreadyPaidIsIdempotent(t *testing.T) {
	o, err := New("order-1", "user-1", testItems())
	require.NoError(t, err)
	_, err = o.Pay()
	require.NoError(t, err)
	updated := o.UpdatedAt

	outcome, err := o.Pay()
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyPaid, outcome)
	assert.Equal(t, StatusPaid, o.Status)
	assert.Equal(t, updated, o.UpdatedAt, "idempotent pay must not touch the order")
}

func TestPay_CancelledIsConflict(t *testing.T) {
	o, err := New("order-1", "user-1", testItems())
	require.NoError(t, err)
	_, err = o.Cancel()
	require.NoError(t, err)

	// Conflicts stay conflicts no matter how often they are retried.
	for i := 0; i < 3; i++ {
		_, err = o.Pay()
		var ce *errs.ConflictError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "order-1", ce.OrderID)
		assert.Equal(t, string(StatusCancelled), ce.Status)
		assert.Equal(t, StatusCancelled, o.Status)
	}
}

func TestCancel_FromCreatedAndPaid(t *testing.T) {
	for _, pay := range []bool{false, true} {
		o, err := New("order-1", "user-1", testItems())
		require.NoError(t, err)
		if pay {
			_, err = o.Pay()
			require.NoError(t, err)
		}

		outcome, err := o.Cancel()
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
		assert.Equal(t, StatusCancelled, o.Status)
	}
}

func TestCancel_AlreadyCancelledIsIdempotent(t *testing.T) {
	o, err := New("order-1", "user-1", testItems())
	require.NoError(t, err)
	_, err = o.Cancel()
	require.NoError(t, err)
	updated := o.UpdatedAt

	outcome, err := o.Cancel()
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCancelled, outcome)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, updated, o.UpdatedAt)
}

func TestClone_IsIndependent(t *testing.T) {
	o, err := New("order-1", "user-1", testItems())
	require.NoError(t, err)

	clone := o.Clone()
	clone.Items[0].Quantity = 99
	_, err = clone.Pay()
	require.NoError(t, err)

	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, StatusCreated, o.Status)
}
