package services

import (
	"strings"

	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
)

// statusTransitions is the order lifecycle.
// Cancellation is allowed from every non-terminal state.
var statusTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing: {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped:    {models.StatusDelivered, models.StatusCancelled},
}

// NextStatuses returns the statuses reachable from status
func NextStatuses(status models.OrderStatus) []models.OrderStatus {
	return statusTransitions[status]
}

// CanTransition reports an ErrValidation when the order may not move from one status to the other
func CanTransition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return validationError("unknown order status %q", to)
	}
	if from.Terminal() {
		return validationError("order is %s, no further transitions allowed", from)
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return nil
		}
	}
	return validationError("invalid transition %s -> %s, valid transitions from %s: %s",
		from, to, from, describeNext(from))
}

func describeNext(status models.OrderStatus) string {
	if status.Terminal() {
		return "none (terminal state)"
	}
	next := NextStatuses(status)
	names := make([]string, len(next))
	for i, s := range next {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
