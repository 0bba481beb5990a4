package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/database/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{models.OrderStatusReceived, models.OrderStatusPreparing, true},
		{models.OrderStatusPreparing, models.OrderStatusOutForDelivery, true},
		{models.OrderStatusOutForDelivery, models.OrderStatusDelivered, true},
		{models.OrderStatusReceived, models.OrderStatusDelivered, true},
		{models.OrderStatusReceived, models.OrderStatusCancelled, true},

		{models.OrderStatusPreparing, models.OrderStatusReceived, false},
		{models.OrderStatusPreparing, models.OrderStatusPreparing, false},
		{models.OrderStatusPreparing, models.OrderStatusCancelled, false},
		{models.OrderStatusOutForDelivery, models.OrderStatusCancelled, false},
		{models.OrderStatusCancelled, models.OrderStatusPreparing, false},
		{models.OrderStatusCancelled, models.OrderStatusDelivered, false},
		{models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{models.OrderStatusDelivered, models.OrderStatusReceived, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(models.OrderStatusReceived))
	assert.False(t, CanCancel(models.OrderStatusPreparing))
	assert.False(t, CanCancel(models.OrderStatusOutForDelivery))
	assert.False(t, CanCancel(models.OrderStatusDelivered))
	assert.False(t, CanCancel(models.OrderStatusCancelled))
}

func TestStepIndex(t *testing.T) {
	assert.Equal(t, 0, StepIndex(models.OrderStatusReceived))
	assert.Equal(t, 2, StepIndex(models.OrderStatusOutForDelivery))
	assert.Equal(t, 3, StepIndex(models.OrderStatusDelivered))
	assert.Equal(t, -1, StepIndex(models.OrderStatusCancelled))
}

func TestPredecessors(t *testing.T) {
	assert.Equal(t, []models.OrderStatus{models.OrderStatusReceived}, Predecessors(models.OrderStatusCancelled))
	assert.Equal(t, []models.OrderStatus{models.OrderStatusReceived}, Predecessors(models.OrderStatusPreparing))
	assert.Equal(t, []models.OrderStatus{
		models.OrderStatusReceived,
		models.OrderStatusPreparing,
		models.OrderStatusOutForDelivery,
	}, Predecessors(models.OrderStatusDelivered))
	assert.Empty(t, Predecessors(models.OrderStatusReceived))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("out_for_delivery")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, s)

	_, err = ParseStatus("cancelled")
	require.NoError(t, err)

	_, err = ParseStatus("cooking")
	require.Error(t, err)
}
