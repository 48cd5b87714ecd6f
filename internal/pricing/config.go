package pricing

import (
	"strings"

	"dokanpos/backend/internal/domain"
)

// RoundingMode selects how fractional accrued points collapse to whole points.
type RoundingMode string

const (
	RoundFloor RoundingMode = "floor"
	RoundCeil  RoundingMode = "ceil"
	RoundHalf  RoundingMode = "round"
)

const (
	defaultPointsPerAmount  = 1.0
	defaultAmountPerPoint   = 100.0
	defaultPointsPerBdt     = 1.0
	defaultMaxRedeemPercent = 100.0
)

type ResolvedTier struct {
	Name             string
	DiscountPercent  float64
	PointsMultiplier float64
}

type ResolvedRedemption struct {
	Enabled          bool
	MinRedeemPoints  int
	MinOrderAmount   float64
	MaxRedeemPercent float64
	PointsPerBdt     float64
}

// ResolvedConfig is the fully-defaulted, non-nullable membership program
// configuration the pipeline runs against. Resolve is the only place defaults
// are applied; the calculation stages never null-check.
type ResolvedConfig struct {
	Enabled         bool
	Tiers           []ResolvedTier
	Redemption      ResolvedRedemption
	PointsPerAmount float64
	AmountPerPoint  float64
	Rounding        RoundingMode
}

// Resolve normalizes a raw platform configuration snapshot. A nil config
// resolves to a disabled program, so every stage degrades to "no discount,
// no points" without branching on presence.
func Resolve(cfg *domain.MembershipConfig) ResolvedConfig {
	resolved := ResolvedConfig{
		PointsPerAmount: defaultPointsPerAmount,
		AmountPerPoint:  defaultAmountPerPoint,
		Rounding:        RoundFloor,
		Redemption: ResolvedRedemption{
			MaxRedeemPercent: defaultMaxRedeemPercent,
			PointsPerBdt:     defaultPointsPerBdt,
		},
	}
	if cfg == nil {
		return resolved
	}

	resolved.Enabled = cfg.Enabled
	if cfg.PointsPerAmount != nil && *cfg.PointsPerAmount > 0 {
		resolved.PointsPerAmount = *cfg.PointsPerAmount
	}
	if cfg.AmountPerPoint != nil && *cfg.AmountPerPoint > 0 {
		resolved.AmountPerPoint = *cfg.AmountPerPoint
	}
	switch RoundingMode(strings.ToLower(strings.TrimSpace(cfg.RoundingMode))) {
	case RoundCeil:
		resolved.Rounding = RoundCeil
	case RoundHalf:
		resolved.Rounding = RoundHalf
	}

	resolved.Tiers = make([]ResolvedTier, 0, len(cfg.Tiers))
	for _, tier := range cfg.Tiers {
		name := strings.TrimSpace(tier.Name)
		if name == "" {
			continue
		}
		rt := ResolvedTier{Name: name, PointsMultiplier: 1}
		if tier.DiscountPercent != nil && *tier.DiscountPercent > 0 {
			rt.DiscountPercent = *tier.DiscountPercent
		}
		if tier.PointsMultiplier != nil && *tier.PointsMultiplier > 0 {
			rt.PointsMultiplier = *tier.PointsMultiplier
		}
		resolved.Tiers = append(resolved.Tiers, rt)
	}

	if cfg.Redemption != nil {
		resolved.Redemption.Enabled = cfg.Redemption.Enabled
		if cfg.Redemption.MinRedeemPoints != nil && *cfg.Redemption.MinRedeemPoints > 0 {
			resolved.Redemption.MinRedeemPoints = *cfg.Redemption.MinRedeemPoints
		}
		if cfg.Redemption.MinOrderAmount != nil && *cfg.Redemption.MinOrderAmount > 0 {
			resolved.Redemption.MinOrderAmount = *cfg.Redemption.MinOrderAmount
		}
		if cfg.Redemption.MaxRedeemPercent != nil && *cfg.Redemption.MaxRedeemPercent >= 0 {
			resolved.Redemption.MaxRedeemPercent = *cfg.Redemption.MaxRedeemPercent
		}
		if cfg.Redemption.PointsPerBdt != nil && *cfg.Redemption.PointsPerBdt > 0 {
			resolved.Redemption.PointsPerBdt = *cfg.Redemption.PointsPerBdt
		}
	}

	return resolved
}

// findTier looks a tier up by case-insensitive name. When the configuration
// carries duplicate names the first match wins; config integrity is not this
// package's concern.
func (c ResolvedConfig) findTier(name string) (ResolvedTier, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ResolvedTier{}, false
	}
	for _, tier := range c.Tiers {
		if strings.EqualFold(tier.Name, trimmed) {
			return tier, true
		}
	}
	return ResolvedTier{}, false
}
