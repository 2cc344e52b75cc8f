package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("submit cart: %w", InsufficientStock("Oat Milk", 2))

	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.True(t, Is(err, KindInsufficientStock))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, "Insufficient stock for Oat Milk. Available: 2", DisplayMessage(err, "Failed"))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	err := errors.New("disk on fire")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "Failed to submit order", DisplayMessage(err, "Failed to submit order"))
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal("Failed to update stock", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "generic", DisplayMessage(err, "generic"))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestTimeout_IsDistinctKind(t *testing.T) {
	err := Timeout("Request timed out", errors.New("context deadline exceeded"))

	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "Request timed out", DisplayMessage(err, "x"))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 404, HTTPStatus(NotFound("Item not found")))
	assert.Equal(t, 400, HTTPStatus(InsufficientStock("Beans", 0)))
	assert.Equal(t, 400, HTTPStatus(Validation("Name is required")))
	assert.Equal(t, 409, HTTPStatus(Conflict("SKU already exists")))
	assert.Equal(t, 504, HTTPStatus(Timeout("Request timed out", nil)))
	assert.Equal(t, 500, HTTPStatus(errors.New("boom")))
}
