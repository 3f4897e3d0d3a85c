package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockErrorUnwrapsToSentinel(t *testing.T) {
	err := &StockError{Shortfalls: []Shortfall{
		{ProductID: "p1", Requested: 3, Available: 2},
	}}

	assert.ErrorIs(t, err, ErrInsufficientStock)

	var se *StockError
	assert.True(t, errors.As(error(err), &se))
	assert.Equal(t, "p1", se.Shortfalls[0].ProductID)
}

func TestStockErrorMessageListsEveryShortfall(t *testing.T) {
	err := &StockError{Shortfalls: []Shortfall{
		{ProductID: "p1", Requested: 3, Available: 2},
		{ProductID: "p2", Requested: 1, Available: 0},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "p1 (requested 3, available 2)")
	assert.Contains(t, msg, "p2 (requested 1, available 0)")
}
