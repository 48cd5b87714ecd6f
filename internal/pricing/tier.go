package pricing

import "math"

// TierDiscount resolves the customer's tier against the membership program
// and multiplies its percentage against the pre-discount subtotal. The result
// is rounded to the nearest whole taka; this domain has no fractional minor
// units.
func TierDiscount(subtotal float64, cfg ResolvedConfig, tierName string) float64 {
	if !cfg.Enabled || len(cfg.Tiers) == 0 || subtotal <= 0 {
		return 0
	}
	tier, ok := cfg.findTier(tierName)
	if !ok || tier.DiscountPercent <= 0 {
		return 0
	}
	return math.Round(subtotal * tier.DiscountPercent / 100)
}
