package pricing

import (
	"testing"

	"dokanpos/backend/internal/domain"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

// enabledConfig builds a representative resolved program used across the
// package tests: Gold tier at 10% with a 2x multiplier, redemption on with a
// 100-point minimum, 500 order minimum and 50% cap.
func enabledConfig() ResolvedConfig {
	return Resolve(&domain.MembershipConfig{
		Enabled: true,
		Tiers: []domain.MembershipTierConfig{
			{Name: "Silver", DiscountPercent: fp(5)},
			{Name: "Gold", DiscountPercent: fp(10), PointsMultiplier: fp(2)},
		},
		Redemption: &domain.RedemptionConfig{
			Enabled:          true,
			MinRedeemPoints:  ip(100),
			MinOrderAmount:   fp(500),
			MaxRedeemPercent: fp(50),
			PointsPerBdt:     fp(1),
		},
		PointsPerAmount: fp(1),
		AmountPerPoint:  fp(100),
		RoundingMode:    "floor",
	})
}

func TestResolveNilConfigDisablesProgram(t *testing.T) {
	cfg := Resolve(nil)
	if cfg.Enabled {
		t.Fatalf("nil config must resolve to a disabled program")
	}
	if cfg.PointsPerAmount != 1 || cfg.AmountPerPoint != 100 {
		t.Fatalf("expected accrual defaults 1/100, got %v/%v", cfg.PointsPerAmount, cfg.AmountPerPoint)
	}
	if cfg.Rounding != RoundFloor {
		t.Fatalf("expected default rounding floor, got %q", cfg.Rounding)
	}
	if cfg.Redemption.PointsPerBdt != 1 || cfg.Redemption.MaxRedeemPercent != 100 {
		t.Fatalf("expected redemption defaults 1/100, got %+v", cfg.Redemption)
	}
}

func TestResolveAppliesDefaultsForOmittedFields(t *testing.T) {
	cfg := Resolve(&domain.MembershipConfig{Enabled: true})
	if !cfg.Enabled {
		t.Fatalf("expected enabled program")
	}
	if cfg.Redemption.Enabled {
		t.Fatalf("redemption must default to disabled when the block is absent")
	}
	if cfg.Redemption.MinRedeemPoints != 0 || cfg.Redemption.MinOrderAmount != 0 {
		t.Fatalf("expected zero minimums, got %+v", cfg.Redemption)
	}
}

func TestResolveNormalizesRoundingMode(t *testing.T) {
	for raw, want := range map[string]RoundingMode{
		"ceil":    RoundCeil,
		" ROUND ": RoundHalf,
		"floor":   RoundFloor,
		"bogus":   RoundFloor,
		"":        RoundFloor,
	} {
		cfg := Resolve(&domain.MembershipConfig{RoundingMode: raw})
		if cfg.Rounding != want {
			t.Fatalf("rounding %q resolved to %q, want %q", raw, cfg.Rounding, want)
		}
	}
}

func TestResolveDropsBlankTiersAndDefaultsMultiplier(t *testing.T) {
	cfg := Resolve(&domain.MembershipConfig{
		Enabled: true,
		Tiers: []domain.MembershipTierConfig{
			{Name: "  "},
			{Name: "Bronze"},
		},
	})
	if len(cfg.Tiers) != 1 {
		t.Fatalf("expected blank tier dropped, got %d tiers", len(cfg.Tiers))
	}
	if cfg.Tiers[0].PointsMultiplier != 1 {
		t.Fatalf("expected default multiplier 1, got %v", cfg.Tiers[0].PointsMultiplier)
	}
	if cfg.Tiers[0].DiscountPercent != 0 {
		t.Fatalf("tier without discount percent must resolve to 0, got %v", cfg.Tiers[0].DiscountPercent)
	}
}
