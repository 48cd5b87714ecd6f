package pricing

import (
	"fmt"
	"math"

	"dokanpos/backend/internal/domain"
)

// RedemptionOutcome is the tagged result of validating a points-redemption
// request. Status distinguishes a request applied as-is, one silently clamped
// to the program cap, and one rejected outright; Reason is set only for
// rejections. Rejections are data, never Go errors: the POS UI renders them
// inline.
type RedemptionOutcome struct {
	Status           string
	Reason           string
	Discount         float64
	PointsRedeemed   int
	MaxAllowedPoints int
}

// MaxRedeemablePoints reports the largest redemption the program permits for
// the given order total, for cap display even when the cashier's request is
// invalid or zero.
func MaxRedeemablePoints(orderTotal float64, cfg ResolvedConfig) int {
	if !cfg.Enabled || !cfg.Redemption.Enabled || orderTotal <= 0 {
		return 0
	}
	maxDiscount := math.Floor(orderTotal * cfg.Redemption.MaxRedeemPercent / 100)
	if maxDiscount <= 0 {
		return 0
	}
	return int(maxDiscount * cfg.Redemption.PointsPerBdt)
}

// ValidateRedemption checks a requested redemption against program rules.
// Checks run in a fixed order and the first failure wins. An over-cap request
// is the one rule that does not fail: it clamps to the cap so an easily
// corrected overshoot never blocks checkout.
func ValidateRedemption(pointsToRedeem int, customerPoints int, orderTotal float64, cfg ResolvedConfig) RedemptionOutcome {
	maxAllowed := MaxRedeemablePoints(orderTotal, cfg)

	reject := func(reason string) RedemptionOutcome {
		return RedemptionOutcome{
			Status:           domain.RedemptionRejected,
			Reason:           reason,
			MaxAllowedPoints: maxAllowed,
		}
	}

	if !cfg.Enabled {
		return reject("membership program disabled")
	}
	rules := cfg.Redemption
	if !rules.Enabled {
		return reject("points redemption not enabled")
	}
	if pointsToRedeem < rules.MinRedeemPoints {
		return reject(fmt.Sprintf("minimum %d points required to redeem", rules.MinRedeemPoints))
	}
	if pointsToRedeem > customerPoints {
		return reject(fmt.Sprintf("insufficient points: %d available", customerPoints))
	}
	if orderTotal < rules.MinOrderAmount {
		return reject(fmt.Sprintf("minimum order amount %.0f required to redeem points", rules.MinOrderAmount))
	}

	maxDiscount := math.Floor(orderTotal * rules.MaxRedeemPercent / 100)
	requestedDiscount := math.Floor(float64(pointsToRedeem) / rules.PointsPerBdt)
	if requestedDiscount > maxDiscount {
		return RedemptionOutcome{
			Status:           domain.RedemptionClamped,
			Discount:         maxDiscount,
			PointsRedeemed:   int(maxDiscount * rules.PointsPerBdt),
			MaxAllowedPoints: maxAllowed,
		}
	}
	return RedemptionOutcome{
		Status:           domain.RedemptionApplied,
		Discount:         requestedDiscount,
		PointsRedeemed:   pointsToRedeem,
		MaxAllowedPoints: maxAllowed,
	}
}
