package memory

import (
	"context"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dokanpos/backend/internal/domain"
	"dokanpos/backend/internal/store"
	"dokanpos/backend/internal/xid"
)

type Store struct {
	mu               sync.RWMutex
	membershipConfig *domain.MembershipConfig
	configUpdatedBy  string
	configUpdatedAt  time.Time
	customersByID    map[string]domain.Customer
	paymentOptions   map[string]domain.PaymentOption
	quoteEvents      []domain.QuoteEvent
	auditLogs        []domain.AuditLog
	usersByUsername  map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

// NewSeeded builds a memory store preloaded with a demo membership program,
// the standard Bangladeshi tender methods, and a handful of customers so a
// fresh checkout terminal has something to quote against.
func NewSeeded() *Store {
	now := time.Now().UTC()

	membershipConfig := &domain.MembershipConfig{
		Enabled: true,
		Tiers: []domain.MembershipTierConfig{
			{Name: "Silver", DiscountPercent: fptr(5), PointsMultiplier: fptr(1.25)},
			{Name: "Gold", DiscountPercent: fptr(10), PointsMultiplier: fptr(1.5)},
			{Name: "Platinum", DiscountPercent: fptr(15), PointsMultiplier: fptr(2)},
		},
		Redemption: &domain.RedemptionConfig{
			Enabled:          true,
			MinRedeemPoints:  iptr(100),
			MinOrderAmount:   fptr(500),
			MaxRedeemPercent: fptr(50),
			PointsPerBdt:     fptr(1),
		},
		PointsPerAmount: fptr(1),
		AmountPerPoint:  fptr(100),
		RoundingMode:    "floor",
	}

	paymentOptions := map[string]domain.PaymentOption{
		"cash":  {Key: "cash", Label: "Cash", NeedsReference: false, Active: true},
		"card":  {Key: "card", Label: "Card", NeedsReference: true, Active: true},
		"bkash": {Key: "bkash", Label: "bKash", NeedsReference: true, Active: true},
		"nagad": {Key: "nagad", Label: "Nagad", NeedsReference: true, Active: true},
	}

	customers := map[string]domain.Customer{
		"cust-demo-001": {
			ID:    "cust-demo-001",
			Name:  "Rahim Uddin",
			Phone: "+8801711000001",
			Membership: &domain.CustomerMembership{
				Tier:   "Gold",
				Points: domain.CustomerPoints{Current: 850},
			},
			CreatedAt: now,
		},
		"cust-demo-002": {
			ID:    "cust-demo-002",
			Name:  "Salma Khatun",
			Phone: "+8801711000002",
			Membership: &domain.CustomerMembership{
				Tier:   "Silver",
				Points: domain.CustomerPoints{Current: 120},
			},
			CreatedAt: now,
		},
		"cust-demo-003": {
			ID:        "cust-demo-003",
			Name:      "Arif Hossain",
			Phone:     "+8801711000003",
			CreatedAt: now,
		},
	}

	return &Store{
		membershipConfig: membershipConfig,
		configUpdatedBy:  "seed",
		configUpdatedAt:  now,
		customersByID:    customers,
		paymentOptions:   paymentOptions,
		quoteEvents:      make([]domain.QuoteEvent, 0, 128),
		auditLogs:        make([]domain.AuditLog, 0, 128),
		usersByUsername:  seedUsers(),
	}
}

// NewEmpty builds a memory store without seed data, for tests that need to
// exercise absent-config degradation.
func NewEmpty() *Store {
	return &Store{
		customersByID:   make(map[string]domain.Customer),
		paymentOptions:  make(map[string]domain.PaymentOption),
		quoteEvents:     make([]domain.QuoteEvent, 0, 16),
		auditLogs:       make([]domain.AuditLog, 0, 16),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) GetMembershipConfig(_ context.Context) (*domain.MembershipConfig, string, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.membershipConfig == nil {
		return nil, "", time.Time{}, store.ErrNotFound
	}
	cfg := cloneConfig(*s.membershipConfig)
	return &cfg, s.configUpdatedBy, s.configUpdatedAt, nil
}

func (s *Store) SaveMembershipConfig(_ context.Context, cfg domain.MembershipConfig, updatedBy string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cloned := cloneConfig(cfg)
	s.membershipConfig = &cloned
	s.configUpdatedBy = updatedBy
	s.configUpdatedAt = updatedAt
	return nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if customer.ID == "" {
		customer.ID = xid.New("cust")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.customersByID[customer.ID]; exists {
		return nil, store.ErrInvalidInput
	}
	s.customersByID[customer.ID] = customer
	created := customer
	return &created, nil
}

func (s *Store) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.customersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := customer
	return &found, nil
}

func (s *Store) ListCustomers(_ context.Context, query string, limit int) ([]domain.Customer, error) {
	if limit < 1 {
		limit = 50
	}
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]domain.Customer, 0, limit)
	for _, customer := range s.customersByID {
		if query != "" &&
			!strings.Contains(strings.ToLower(customer.Name), query) &&
			!strings.Contains(customer.Phone, query) &&
			!strings.Contains(strings.ToLower(customer.ID), query) {
			continue
		}
		matches = append(matches, customer)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Name < matches[j].Name
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *Store) AdjustCustomerPoints(_ context.Context, id string, deltaPoints int) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if customer.Membership == nil {
		customer.Membership = &domain.CustomerMembership{}
	} else {
		membership := *customer.Membership
		customer.Membership = &membership
	}

	next := customer.Membership.Points.Current + deltaPoints
	if next < 0 {
		return nil, store.ErrInsufficientPoints
	}
	customer.Membership.Points.Current = next
	s.customersByID[id] = customer

	updated := customer
	return &updated, nil
}

func (s *Store) ListPaymentOptions(_ context.Context, includeInactive bool) ([]domain.PaymentOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	options := make([]domain.PaymentOption, 0, len(s.paymentOptions))
	for _, option := range s.paymentOptions {
		if !option.Active && !includeInactive {
			continue
		}
		options = append(options, option)
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].Key < options[j].Key
	})
	return options, nil
}

func (s *Store) UpsertPaymentOption(_ context.Context, option domain.PaymentOption) (*domain.PaymentOption, error) {
	if option.Key == "" || option.Label == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentOptions[option.Key] = option
	saved := option
	return &saved, nil
}

func (s *Store) CreateQuoteEvent(_ context.Context, event domain.QuoteEvent) error {
	if event.ID == "" {
		return store.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quoteEvents = append(s.quoteEvents, event)
	return nil
}

func (s *Store) GetDailyQuoteReport(_ context.Context, storeID string, from time.Time, to time.Time) (domain.DailyQuoteReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := domain.DailyQuoteReport{StoreID: storeID}
	tierAgg := map[string]*domain.DailyQuoteTier{}

	for _, event := range s.quoteEvents {
		if event.StoreID != storeID || event.CreatedAt.Before(from) || !event.CreatedAt.Before(to) {
			continue
		}
		report.Quotes++
		report.QuotedSubtotal += event.Subtotal
		report.ManualDiscount += event.ManualDiscount
		report.TierDiscount += event.TierDiscount
		report.RedemptionDiscount += event.RedemptionDiscount
		report.QuotedTotal += event.Total
		report.PointsRedeemed += int64(event.PointsRedeemed)
		report.PointsToEarn += int64(event.PointsToEarn)
		switch event.RedemptionStatus {
		case domain.RedemptionRejected:
			report.RejectedRedemption++
		case domain.RedemptionClamped:
			report.ClampedRedemption++
		}

		if event.TierName != "" {
			agg, ok := tierAgg[event.TierName]
			if !ok {
				agg = &domain.DailyQuoteTier{TierName: event.TierName}
				tierAgg[event.TierName] = agg
			}
			agg.Quotes++
			agg.TierDiscount += event.TierDiscount
			agg.RedemptionDiscount += event.RedemptionDiscount
			agg.PointsRedeemed += int64(event.PointsRedeemed)
		}
	}

	byTier := make([]domain.DailyQuoteTier, 0, len(tierAgg))
	for _, agg := range tierAgg {
		byTier = append(byTier, *agg)
	}
	sort.Slice(byTier, func(i, j int) bool {
		return byTier[i].TierName < byTier[j].TierName
	})
	report.ByTier = byTier
	return report, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]domain.AuditLog, 0, limit)
	for _, entry := range s.auditLogs {
		if entry.StoreID != storeID || entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		logs = append(logs, entry)
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrInvalidInput
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cloneConfig(cfg domain.MembershipConfig) domain.MembershipConfig {
	cloned := cfg
	if cfg.Tiers != nil {
		cloned.Tiers = make([]domain.MembershipTierConfig, len(cfg.Tiers))
		copy(cloned.Tiers, cfg.Tiers)
	}
	if cfg.Redemption != nil {
		redemption := *cfg.Redemption
		cloned.Redemption = &redemption
	}
	return cloned
}
