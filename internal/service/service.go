package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"dokanpos/backend/internal/cache"
	"dokanpos/backend/internal/domain"
	"dokanpos/backend/internal/pricing"
	"dokanpos/backend/internal/store"
	"dokanpos/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo           store.Repository
	configCache    cache.MembershipConfigCache
	cacheTTL       time.Duration
	defaultStoreID string
}

func New(repo store.Repository, configCache cache.MembershipConfigCache, cacheTTL time.Duration, defaultStoreID string) *Service {
	if configCache == nil {
		configCache = cache.NoopMembershipConfigCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	if defaultStoreID == "" {
		defaultStoreID = "main-store"
	}

	return &Service{
		repo:           repo,
		configCache:    configCache,
		cacheTTL:       cacheTTL,
		defaultStoreID: defaultStoreID,
	}
}

const membershipConfigCacheKey = "membership-config"

// loadMembershipConfig returns the stored config, consulting the cache first.
// A missing config row is not an error: the pricing engine treats a nil config
// as membership-disabled, so quoting keeps working on a fresh database.
func (s *Service) loadMembershipConfig(ctx context.Context) *domain.MembershipConfig {
	cached, ok, err := s.configCache.Get(ctx, membershipConfigCacheKey)
	if err != nil {
		log.Printf("[service] WARN: membership config cache read failed: %v", err)
	} else if ok {
		return cached
	}

	cfg, _, _, err := s.repo.GetMembershipConfig(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[service] WARN: failed to load membership config: %v", err)
		}
		return nil
	}

	if err := s.configCache.Set(ctx, membershipConfigCacheKey, cfg, s.cacheTTL); err != nil {
		log.Printf("[service] WARN: failed to cache membership config: %v", err)
	}
	return cfg
}

func (s *Service) QuoteOrder(ctx context.Context, req domain.QuoteRequest) (domain.QuoteResponse, error) {
	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}

	var customer *domain.Customer
	if req.CustomerID != "" {
		found, err := s.repo.GetCustomerByID(ctx, req.CustomerID)
		if err != nil {
			return domain.QuoteResponse{}, err
		}
		customer = found
	}

	resolved := pricing.Resolve(s.loadMembershipConfig(ctx))
	totals := pricing.CalculateOrderTotals(pricing.QuoteInput{
		Items:               req.Items,
		ManualDiscountInput: req.ManualDiscount,
		PointsToRedeemInput: req.PointsToRedeem,
		Config:              resolved,
		Customer:            customer,
	})

	now := time.Now().UTC()
	event := domain.QuoteEvent{
		ID:                 xid.New("quote"),
		StoreID:            req.StoreID,
		TerminalID:         req.TerminalID,
		CustomerID:         req.CustomerID,
		TierName:           totals.TierName,
		Subtotal:           totals.Subtotal,
		ManualDiscount:     totals.ManualDiscount,
		TierDiscount:       totals.TierDiscount,
		RedemptionDiscount: totals.RedemptionDiscount,
		Total:              totals.Total,
		PointsRedeemed:     totals.PointsRedeemed,
		PointsToEarn:       totals.PointsToEarn,
		RedemptionStatus:   totals.RedemptionStatus,
		CreatedAt:          now,
	}
	if err := s.repo.CreateQuoteEvent(ctx, event); err != nil {
		// the quote itself is still good; the trace is best effort
		log.Printf("[service] WARN: failed to record quote event store=%s: %v", req.StoreID, err)
	}

	return domain.QuoteResponse{
		Totals:     totals,
		CustomerID: req.CustomerID,
		QuotedAt:   now.Format(time.RFC3339),
	}, nil
}

func (s *Service) ReviewSplitPayments(ctx context.Context, req domain.SplitReviewRequest) (domain.SplitReview, error) {
	options, err := s.repo.ListPaymentOptions(ctx, false)
	if err != nil {
		return domain.SplitReview{}, err
	}

	byKey := make(map[string]domain.PaymentOption, len(options))
	for _, option := range options {
		byKey[option.Key] = option
	}

	return pricing.ReconcileSplit(req.Total, req.Entries, byKey), nil
}

func (s *Service) GetMembershipConfig(ctx context.Context) (domain.MembershipConfigResponse, error) {
	cfg, updatedBy, updatedAt, err := s.repo.GetMembershipConfig(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.MembershipConfigResponse{Config: domain.MembershipConfig{}}, nil
		}
		return domain.MembershipConfigResponse{}, err
	}

	resp := domain.MembershipConfigResponse{
		Config:    *cfg,
		UpdatedBy: updatedBy,
	}
	if !updatedAt.IsZero() {
		resp.UpdatedAt = updatedAt.Format(time.RFC3339)
	}
	return resp, nil
}

func (s *Service) UpdateMembershipConfig(ctx context.Context, cfg domain.MembershipConfig) (domain.MembershipConfigResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.MembershipConfigResponse{}, fmt.Errorf("admin role required")
	}

	if err := validateMembershipConfig(cfg); err != nil {
		return domain.MembershipConfigResponse{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.SaveMembershipConfig(ctx, cfg, actor.Username, now); err != nil {
		return domain.MembershipConfigResponse{}, err
	}

	if err := s.configCache.Invalidate(ctx, membershipConfigCacheKey); err != nil {
		log.Printf("[service] WARN: failed to invalidate membership config cache: %v", err)
	}
	if err := s.configCache.Set(ctx, membershipConfigCacheKey, &cfg, s.cacheTTL); err != nil {
		log.Printf("[service] WARN: failed to re-prime membership config cache: %v", err)
	}

	s.logAudit(ctx, s.defaultStoreID, "membership_config_update", "membership_config", "1",
		fmt.Sprintf("enabled=%t,tiers=%d", cfg.Enabled, len(cfg.Tiers)))

	return domain.MembershipConfigResponse{
		Config:    cfg,
		UpdatedBy: actor.Username,
		UpdatedAt: now.Format(time.RFC3339),
	}, nil
}

func validateMembershipConfig(cfg domain.MembershipConfig) error {
	for _, tier := range cfg.Tiers {
		if strings.TrimSpace(tier.Name) == "" {
			return fmt.Errorf("tier name is required: %w", store.ErrInvalidInput)
		}
		if tier.DiscountPercent != nil && (*tier.DiscountPercent < 0 || *tier.DiscountPercent > 100) {
			return fmt.Errorf("tier %s discount percent out of range: %w", tier.Name, store.ErrInvalidInput)
		}
		if tier.PointsMultiplier != nil && *tier.PointsMultiplier <= 0 {
			return fmt.Errorf("tier %s points multiplier must be positive: %w", tier.Name, store.ErrInvalidInput)
		}
	}

	if r := cfg.Redemption; r != nil {
		if r.MinRedeemPoints != nil && *r.MinRedeemPoints < 0 {
			return fmt.Errorf("min redeem points must not be negative: %w", store.ErrInvalidInput)
		}
		if r.MinOrderAmount != nil && *r.MinOrderAmount < 0 {
			return fmt.Errorf("min order amount must not be negative: %w", store.ErrInvalidInput)
		}
		if r.MaxRedeemPercent != nil && (*r.MaxRedeemPercent < 0 || *r.MaxRedeemPercent > 100) {
			return fmt.Errorf("max redeem percent out of range: %w", store.ErrInvalidInput)
		}
		if r.PointsPerBdt != nil && *r.PointsPerBdt <= 0 {
			return fmt.Errorf("points per bdt must be positive: %w", store.ErrInvalidInput)
		}
	}

	if cfg.PointsPerAmount != nil && *cfg.PointsPerAmount <= 0 {
		return fmt.Errorf("points per amount must be positive: %w", store.ErrInvalidInput)
	}
	if cfg.AmountPerPoint != nil && *cfg.AmountPerPoint <= 0 {
		return fmt.Errorf("amount per point must be positive: %w", store.ErrInvalidInput)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.RoundingMode)) {
	case "", "floor", "ceil", "round":
	default:
		return fmt.Errorf("unknown rounding mode %q: %w", cfg.RoundingMode, store.ErrInvalidInput)
	}
	return nil
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Tier = strings.TrimSpace(req.Tier)
	if req.Name == "" {
		return domain.Customer{}, fmt.Errorf("customer name is required: %w", store.ErrInvalidInput)
	}

	customer := domain.Customer{
		ID:        xid.New("cust"),
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: time.Now().UTC(),
	}
	if req.Tier != "" {
		customer.Membership = &domain.CustomerMembership{Tier: req.Tier}
	}

	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, s.defaultStoreID, "customer_create", "customer", created.ID,
		fmt.Sprintf("name=%s,tier=%s", created.Name, req.Tier))
	return *created, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) ListCustomers(ctx context.Context, query string, limit int) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx, query, limit)
}

// AdjustCustomerPoints applies a manual points correction. The manager PIN
// gate lives at the HTTP layer; here we only require an authenticated actor
// and a stated reason so the audit trail stays meaningful.
func (s *Service) AdjustCustomerPoints(ctx context.Context, id string, deltaPoints int, reason string) (domain.Customer, error) {
	if _, ok := ActorFromContext(ctx); !ok {
		return domain.Customer{}, fmt.Errorf("authenticated actor required")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Customer{}, fmt.Errorf("adjustment reason is required: %w", store.ErrInvalidInput)
	}
	if deltaPoints == 0 {
		return domain.Customer{}, fmt.Errorf("delta points must not be zero: %w", store.ErrInvalidInput)
	}

	updated, err := s.repo.AdjustCustomerPoints(ctx, id, deltaPoints)
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, s.defaultStoreID, "customer_points_adjust", "customer", id,
		fmt.Sprintf("delta=%d,reason=%s", deltaPoints, reason))
	return *updated, nil
}

func (s *Service) ListPaymentOptions(ctx context.Context, includeInactive bool) ([]domain.PaymentOption, error) {
	return s.repo.ListPaymentOptions(ctx, includeInactive)
}

func (s *Service) UpsertPaymentOption(ctx context.Context, option domain.PaymentOption) (domain.PaymentOption, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.PaymentOption{}, fmt.Errorf("admin role required")
	}

	saved, err := s.repo.UpsertPaymentOption(ctx, option)
	if err != nil {
		return domain.PaymentOption{}, err
	}

	s.logAudit(ctx, s.defaultStoreID, "payment_option_upsert", "payment_option", saved.Key,
		fmt.Sprintf("label=%s,needs_reference=%t,active=%t", saved.Label, saved.NeedsReference, saved.Active))
	return *saved, nil
}

func (s *Service) DailyQuoteReport(ctx context.Context, storeID string, date string) (domain.DailyQuoteReport, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}

	var day time.Time
	if strings.TrimSpace(date) == "" {
		now := time.Now().UTC()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return domain.DailyQuoteReport{}, store.ErrInvalidInput
		}
		day = parsed.UTC()
	}
	from := day
	to := from.Add(24 * time.Hour)

	report, err := s.repo.GetDailyQuoteReport(ctx, storeID, from, to)
	if err != nil {
		return domain.DailyQuoteReport{}, err
	}
	report.StoreID = storeID
	report.Date = from.Format("2006-01-02")
	return report, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, storeID string, date string, limit int) ([]domain.AuditLog, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = time.Now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrInvalidInput
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, storeID, from, to, limit)
}

func (s *Service) logAudit(ctx context.Context, storeID string, action string, entityType string, entityID string, detail string) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}

	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		StoreID:       storeID,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[service] WARN: failed to write audit log action=%s: %v", action, err)
	}
}
