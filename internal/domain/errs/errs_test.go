package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Messages(t *testing.T) {
	assert.Equal(t, "validation: order must contain at least one item",
		NewValidation("order must contain at least one item").Error())

	err := NewUnknownItems([]string{"item-y", "item-z"})
	assert.Equal(t, "validation: unknown items: item-y, item-z", err.Error())

	short := NewInsufficientStock("item-b", 2, 5)
	assert.Contains(t, short.Error(), "item-b")
	assert.Contains(t, short.Error(), "available 2")
	assert.Contains(t, short.Error(), "requested 5")
}

func TestNewInternal_PassesClassifiedThrough(t *testing.T) {
	nf := NewOrderNotFound("order-1")
	assert.Same(t, nf, NewInternal(nf))

	wrapped := fmt.Errorf("load: %w", nf)
	assert.Equal(t, wrapped, NewInternal(wrapped))

	plain := errors.New("disk full")
	var ie *InternalError
	require.ErrorAs(t, NewInternal(plain), &ie)
	assert.ErrorIs(t, ie, plain)
}

func TestNewInternal_Nil(t *testing.T) {
	assert.NoError(t, NewInternal(nil))
}
