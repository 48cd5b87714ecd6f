// Package pricing implements the order pricing and loyalty-redemption engine
// used at POS checkout. Everything here is pure: no I/O, no clocks, no hidden
// state. Discount sources stack in a fixed order (manual, then tier, then
// points redemption) and every intermediate value is returned so the UI can
// render the full breakdown.
package pricing

import (
	"math"

	"dokanpos/backend/internal/domain"
)

// QuoteInput is one engine invocation. Config must already be resolved;
// Customer may be nil for guest checkout.
type QuoteInput struct {
	Items               []domain.CartLine
	ManualDiscountInput string
	PointsToRedeemInput string
	Config              ResolvedConfig
	Customer            *domain.Customer
}

// CalculateOrderTotals runs the checkout pipeline:
//
//	subtotal -> manual discount -> tier discount -> points redemption -> total -> accrual
//
// The manual discount comes off the raw subtotal; tier and redemption each
// discount what remains. The result is a fresh value object on every call and
// the function is idempotent for identical inputs.
func CalculateOrderTotals(in QuoteInput) domain.OrderTotals {
	subtotal := 0.0
	for _, line := range in.Items {
		if line.LineTotal > 0 {
			subtotal += line.LineTotal
		}
	}

	manualDiscount := math.Min(ParsePositiveNumber(in.ManualDiscountInput), subtotal)

	tierName := ""
	customerPoints := 0
	if in.Customer != nil && in.Customer.Membership != nil {
		tierName = in.Customer.Membership.Tier
		customerPoints = in.Customer.Membership.Points.Current
	}

	tierDiscount := TierDiscount(subtotal, in.Config, tierName)
	preliminaryTotal := math.Max(0, subtotal-manualDiscount-tierDiscount)

	result := domain.OrderTotals{
		Subtotal:         subtotal,
		ManualDiscount:   manualDiscount,
		TierDiscount:     tierDiscount,
		TierName:         tierName,
		RedemptionStatus: domain.RedemptionNone,
		MaxAllowedPoints: MaxRedeemablePoints(preliminaryTotal, in.Config),
	}

	requestedPoints := int(math.Floor(ParsePositiveNumber(in.PointsToRedeemInput)))
	if requestedPoints > 0 {
		outcome := ValidateRedemption(requestedPoints, customerPoints, preliminaryTotal, in.Config)
		result.RedemptionStatus = outcome.Status
		result.MaxAllowedPoints = outcome.MaxAllowedPoints
		if outcome.Status == domain.RedemptionRejected {
			result.RedemptionError = outcome.Reason
		} else {
			result.RedemptionDiscount = outcome.Discount
			result.PointsRedeemed = outcome.PointsRedeemed
		}
	}

	result.Total = math.Max(0, preliminaryTotal-result.RedemptionDiscount)
	result.TotalDiscount = result.ManualDiscount + result.TierDiscount + result.RedemptionDiscount
	result.PointsToEarn = PointsToEarn(result.Total, in.Config, tierName)

	return result
}
