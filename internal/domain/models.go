package domain

import "time"

// CartLine is one row of the POS cart. Only the extended line total matters
// to the pricing engine; item identity stays with the cart owner.
type CartLine struct {
	LineTotal float64 `json:"line_total"`
}

type MembershipTierConfig struct {
	Name             string   `json:"name"`
	DiscountPercent  *float64 `json:"discount_percent,omitempty"`
	PointsMultiplier *float64 `json:"points_multiplier,omitempty"`
}

type RedemptionConfig struct {
	Enabled          bool     `json:"enabled"`
	MinRedeemPoints  *int     `json:"min_redeem_points,omitempty"`
	MinOrderAmount   *float64 `json:"min_order_amount,omitempty"`
	MaxRedeemPercent *float64 `json:"max_redeem_percent,omitempty"`
	PointsPerBdt     *float64 `json:"points_per_bdt,omitempty"`
}

type MembershipConfig struct {
	Enabled         bool                   `json:"enabled"`
	Tiers           []MembershipTierConfig `json:"tiers,omitempty"`
	Redemption      *RedemptionConfig      `json:"redemption,omitempty"`
	PointsPerAmount *float64               `json:"points_per_amount,omitempty"`
	AmountPerPoint  *float64               `json:"amount_per_point,omitempty"`
	RoundingMode    string                 `json:"rounding_mode,omitempty"`
}

type CustomerPoints struct {
	Current int `json:"current"`
}

type CustomerMembership struct {
	Tier   string         `json:"tier,omitempty"`
	Points CustomerPoints `json:"points"`
}

type Customer struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Phone      string              `json:"phone"`
	Membership *CustomerMembership `json:"membership,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

type CustomerCreateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Tier  string `json:"tier,omitempty"`
}

type PointsAdjustRequest struct {
	DeltaPoints int    `json:"delta_points"`
	Reason      string `json:"reason"`
	ManagerPIN  string `json:"manager_pin"`
}

type PaymentOption struct {
	Key            string `json:"key"`
	Label          string `json:"label"`
	NeedsReference bool   `json:"needs_reference"`
	Active         bool   `json:"active"`
}

// SplitPaymentEntry mirrors one tender row as the POS UI holds it. Amount is
// the raw text-field value; Error is written back by the reconciler.
type SplitPaymentEntry struct {
	ID         string `json:"id"`
	PaymentKey string `json:"payment_key"`
	Amount     string `json:"amount"`
	Reference  string `json:"reference,omitempty"`
	Error      string `json:"error,omitempty"`
}

type QuoteRequest struct {
	StoreID        string     `json:"store_id,omitempty"`
	TerminalID     string     `json:"terminal_id,omitempty"`
	Items          []CartLine `json:"items"`
	ManualDiscount string     `json:"manual_discount,omitempty"`
	PointsToRedeem string     `json:"points_to_redeem,omitempty"`
	CustomerID     string     `json:"customer_id,omitempty"`
}

// Redemption status values carried on OrderTotals.
const (
	RedemptionNone     = "none"
	RedemptionApplied  = "applied"
	RedemptionClamped  = "clamped"
	RedemptionRejected = "rejected"
)

// OrderTotals is the full checkout breakdown. It is a value object: freshly
// built per quote and never mutated after return.
type OrderTotals struct {
	Subtotal           float64 `json:"subtotal"`
	ManualDiscount     float64 `json:"manual_discount"`
	TierDiscount       float64 `json:"tier_discount"`
	RedemptionDiscount float64 `json:"redemption_discount"`
	TotalDiscount      float64 `json:"total_discount"`
	Total              float64 `json:"total"`
	PointsToEarn       int     `json:"points_to_earn"`
	PointsRedeemed     int     `json:"points_redeemed"`
	RedemptionStatus   string  `json:"redemption_status"`
	RedemptionError    string  `json:"redemption_error,omitempty"`
	MaxAllowedPoints   int     `json:"max_allowed_points"`
	TierName           string  `json:"tier_name,omitempty"`
}

type QuoteResponse struct {
	Totals     OrderTotals `json:"totals"`
	CustomerID string      `json:"customer_id,omitempty"`
	QuotedAt   string      `json:"quoted_at"`
}

type SplitReviewRequest struct {
	Total   float64             `json:"total"`
	Entries []SplitPaymentEntry `json:"entries"`
}

type SplitEntryStatus struct {
	ID                 string  `json:"id"`
	PaymentKey         string  `json:"payment_key"`
	Amount             float64 `json:"amount"`
	RemainingIfCleared float64 `json:"remaining_if_cleared"`
	Error              string  `json:"error,omitempty"`
}

type SplitReview struct {
	Total     float64            `json:"total"`
	Allocated float64            `json:"allocated"`
	Remaining float64            `json:"remaining"`
	Balanced  bool               `json:"balanced"`
	Valid     bool               `json:"valid"`
	Entries   []SplitEntryStatus `json:"entries"`
}

type MembershipConfigResponse struct {
	Config    MembershipConfig `json:"config"`
	UpdatedBy string           `json:"updated_by,omitempty"`
	UpdatedAt string           `json:"updated_at,omitempty"`
}

// QuoteEvent is the persisted trace of one engine invocation, kept for the
// daily report. Quotes are not orders; nothing here is authoritative for
// settlement.
type QuoteEvent struct {
	ID                 string    `json:"id"`
	StoreID            string    `json:"store_id"`
	TerminalID         string    `json:"terminal_id"`
	CustomerID         string    `json:"customer_id,omitempty"`
	TierName           string    `json:"tier_name,omitempty"`
	Subtotal           float64   `json:"subtotal"`
	ManualDiscount     float64   `json:"manual_discount"`
	TierDiscount       float64   `json:"tier_discount"`
	RedemptionDiscount float64   `json:"redemption_discount"`
	Total              float64   `json:"total"`
	PointsRedeemed     int       `json:"points_redeemed"`
	PointsToEarn       int       `json:"points_to_earn"`
	RedemptionStatus   string    `json:"redemption_status"`
	CreatedAt          time.Time `json:"created_at"`
}

type DailyQuoteTier struct {
	TierName           string  `json:"tier_name"`
	Quotes             int64   `json:"quotes"`
	TierDiscount       float64 `json:"tier_discount"`
	RedemptionDiscount float64 `json:"redemption_discount"`
	PointsRedeemed     int64   `json:"points_redeemed"`
}

type DailyQuoteReport struct {
	StoreID            string           `json:"store_id"`
	Date               string           `json:"date"`
	Quotes             int64            `json:"quotes"`
	QuotedSubtotal     float64          `json:"quoted_subtotal"`
	ManualDiscount     float64          `json:"manual_discount"`
	TierDiscount       float64          `json:"tier_discount"`
	RedemptionDiscount float64          `json:"redemption_discount"`
	QuotedTotal        float64          `json:"quoted_total"`
	PointsRedeemed     int64            `json:"points_redeemed"`
	PointsToEarn       int64            `json:"points_to_earn"`
	RejectedRedemption int64            `json:"rejected_redemptions"`
	ClampedRedemption  int64            `json:"clamped_redemptions"`
	ByTier             []DailyQuoteTier `json:"by_tier"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	StoreID       string    `json:"store_id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}
