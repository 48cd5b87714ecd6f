package pricing

import (
	"math"
	"strconv"
	"strings"
)

// ParsePositiveNumber parses a raw text-field value as a decimal amount.
// Garbage, infinities, and non-positive values all collapse to 0. This is a
// UI-input helper, not a financial validator; upstream form validation owns
// rejecting bad text.
func ParsePositiveNumber(raw string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed <= 0 {
		return 0
	}
	return parsed
}

// Change is the cash to hand back for a cash tender.
func Change(cashReceived float64, total float64) float64 {
	return math.Max(0, cashReceived-total)
}

// AmountDue is what the customer still owes for a cash tender.
func AmountDue(cashReceived float64, total float64) float64 {
	return math.Max(0, total-cashReceived)
}
