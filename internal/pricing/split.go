package pricing

import (
	"math"
	"strings"

	"dokanpos/backend/internal/domain"
)

// balanceTolerance absorbs float drift when comparing an allocated sum to the
// order total; half a poysha is far below anything a tender row can express.
const balanceTolerance = 0.005

// ReconcileSplit derives allocation state over caller-owned tender rows.
// Validation is advisory: per-entry problems are surfaced as entry errors and
// the caller decides whether an unbalanced or partially-invalid split blocks
// the sale. RemainingIfCleared supports the one-tap "fill remainder" action:
// it is what this row would need to cover if its amount were zero.
func ReconcileSplit(total float64, entries []domain.SplitPaymentEntry, options map[string]domain.PaymentOption) domain.SplitReview {
	amounts := make([]float64, len(entries))
	allocated := 0.0
	for i, entry := range entries {
		amounts[i] = ParsePositiveNumber(entry.Amount)
		allocated += amounts[i]
	}

	valid := len(entries) > 0
	statuses := make([]domain.SplitEntryStatus, 0, len(entries))
	for i, entry := range entries {
		status := domain.SplitEntryStatus{
			ID:                 entry.ID,
			PaymentKey:         entry.PaymentKey,
			Amount:             amounts[i],
			RemainingIfCleared: math.Max(0, total-(allocated-amounts[i])),
		}

		option, known := options[entry.PaymentKey]
		switch {
		case !known || !option.Active:
			status.Error = "unknown payment method"
		case amounts[i] <= 0:
			status.Error = "amount is required"
		case option.NeedsReference && strings.TrimSpace(entry.Reference) == "":
			status.Error = option.Label + " reference is required"
		}
		if status.Error != "" {
			valid = false
		}
		statuses = append(statuses, status)
	}

	return domain.SplitReview{
		Total:     total,
		Allocated: allocated,
		Remaining: math.Max(0, total-allocated),
		Balanced:  math.Abs(total-allocated) < balanceTolerance,
		Valid:     valid,
		Entries:   statuses,
	}
}
