package orders

import (
	"fmt"

	"orderflow/internal/database/models"
)

// progression is the fixed display order of the non-cancelled path.
var progression = []models.OrderStatus{
	models.OrderStatusReceived,
	models.OrderStatusPreparing,
	models.OrderStatusOutForDelivery,
	models.OrderStatusDelivered,
}

func ParseStatus(s string) (models.OrderStatus, error) {
	status := models.OrderStatus(s)
	if status == models.OrderStatusCancelled || StepIndex(status) >= 0 {
		return status, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// StepIndex locates status in the progression, -1 when it is not on it.
func StepIndex(status models.OrderStatus) int {
	for i, s := range progression {
		if s == status {
			return i
		}
	}
	return -1
}

func IsTerminal(status models.OrderStatus) bool {
	return status == models.OrderStatusDelivered || status == models.OrderStatusCancelled
}

func CanCancel(status models.OrderStatus) bool {
	return status == models.OrderStatusReceived
}

// CanTransition reports whether an order may move from one status to
// another. Moves along the progression only go forward; cancellation is
// only possible before preparation starts.
func CanTransition(from, to models.OrderStatus) bool {
	if IsTerminal(from) || from == to {
		return false
	}
	if to == models.OrderStatusCancelled {
		return CanCancel(from)
	}

	fromIdx, toIdx := StepIndex(from), StepIndex(to)
	return fromIdx >= 0 && toIdx > fromIdx
}

// Predecessors lists every status from which to is reachable. Used to
// guard status writes in the database.
func Predecessors(to models.OrderStatus) []models.OrderStatus {
	var from []models.OrderStatus
	for _, s := range progression {
		if CanTransition(s, to) {
			from = append(from, s)
		}
	}
	return from
}
