package pricing

import "math"

// PointsToEarn computes loyalty points accrued on a finalized order total.
// The total passed in is post-discount and post-redemption, so redeemed value
// never earns points on itself. The configured rounding mode is applied once,
// after the tier multiplier.
func PointsToEarn(finalTotal float64, cfg ResolvedConfig, tierName string) int {
	if !cfg.Enabled || finalTotal <= 0 {
		return 0
	}

	basePoints := finalTotal / cfg.AmountPerPoint * cfg.PointsPerAmount
	multiplier := 1.0
	if tier, ok := cfg.findTier(tierName); ok {
		multiplier = tier.PointsMultiplier
	}

	raw := basePoints * multiplier
	var points float64
	switch cfg.Rounding {
	case RoundCeil:
		points = math.Ceil(raw)
	case RoundHalf:
		points = math.Round(raw)
	default:
		points = math.Floor(raw)
	}
	if points < 0 {
		return 0
	}
	return int(points)
}
