package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"dokanpos/backend/internal/domain"
	"dokanpos/backend/internal/store"
	"dokanpos/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Membership config is a single versioned jsonb row keyed by id = 1. Config
// reads dominate writes by orders of magnitude, so the shape stays flexible
// without migrations every time a tier field is added.
func (s *Store) GetMembershipConfig(ctx context.Context) (*domain.MembershipConfig, string, time.Time, error) {
	var (
		payload   []byte
		updatedBy string
		updatedAt time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT config, updated_by, updated_at
		FROM membership_config
		WHERE id = 1
	`).Scan(&payload, &updatedBy, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", time.Time{}, store.ErrNotFound
		}
		return nil, "", time.Time{}, err
	}

	var cfg domain.MembershipConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, "", time.Time{}, err
	}
	return &cfg, updatedBy, updatedAt.UTC(), nil
}

func (s *Store) SaveMembershipConfig(ctx context.Context, cfg domain.MembershipConfig, updatedBy string, updatedAt time.Time) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO membership_config (id, config, updated_by, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET config = EXCLUDED.config,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`, payload, updatedBy, updatedAt)
	return err
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if customer.ID == "" {
		customer.ID = xid.New("cust")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}

	tier := ""
	points := 0
	if customer.Membership != nil {
		tier = customer.Membership.Tier
		points = customer.Membership.Points.Current
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, phone, tier, points, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
	`, customer.ID, customer.Name, customer.Phone, tier, points, customer.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := customer
	return &created, nil
}

func (s *Store) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	var (
		customer domain.Customer
		tier     string
		points   int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, tier, points, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.Phone, &tier, &points, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	customer.CreatedAt = customer.CreatedAt.UTC()
	if tier != "" || points != 0 {
		customer.Membership = &domain.CustomerMembership{
			Tier:   tier,
			Points: domain.CustomerPoints{Current: points},
		}
	}
	return &customer, nil
}

func (s *Store) ListCustomers(ctx context.Context, query string, limit int) ([]domain.Customer, error) {
	if limit < 1 {
		limit = 50
	}
	query = strings.TrimSpace(query)
	pattern := "%" + strings.ToLower(query) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, tier, points, created_at
		FROM customers
		WHERE $1 = '' OR lower(name) LIKE $2 OR phone LIKE $2 OR lower(id) LIKE $2
		ORDER BY name ASC
		LIMIT $3
	`, query, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, limit)
	for rows.Next() {
		var (
			customer domain.Customer
			tier     string
			points   int
		)
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Phone, &tier, &points, &customer.CreatedAt); err != nil {
			return nil, err
		}
		customer.CreatedAt = customer.CreatedAt.UTC()
		if tier != "" || points != 0 {
			customer.Membership = &domain.CustomerMembership{
				Tier:   tier,
				Points: domain.CustomerPoints{Current: points},
			}
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

// AdjustCustomerPoints applies the delta atomically; the WHERE guard keeps the
// balance from ever going negative under concurrent adjustments.
func (s *Store) AdjustCustomerPoints(ctx context.Context, id string, deltaPoints int) (*domain.Customer, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET points = points + $2, updated_at = now()
		WHERE id = $1 AND points + $2 >= 0
	`, id, deltaPoints)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, getErr := s.GetCustomerByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, store.ErrInsufficientPoints
	}
	return s.GetCustomerByID(ctx, id)
}

func (s *Store) ListPaymentOptions(ctx context.Context, includeInactive bool) ([]domain.PaymentOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, label, needs_reference, active
		FROM payment_options
		WHERE active = true OR $1
		ORDER BY key ASC
	`, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := make([]domain.PaymentOption, 0, 8)
	for rows.Next() {
		var option domain.PaymentOption
		if err := rows.Scan(&option.Key, &option.Label, &option.NeedsReference, &option.Active); err != nil {
			return nil, err
		}
		options = append(options, option)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return options, nil
}

func (s *Store) UpsertPaymentOption(ctx context.Context, option domain.PaymentOption) (*domain.PaymentOption, error) {
	option.Key = strings.ToLower(strings.TrimSpace(option.Key))
	if option.Key == "" || strings.TrimSpace(option.Label) == "" {
		return nil, store.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_options (key, label, needs_reference, active, updated_at)
		VALUES ($1,$2,$3,$4,now())
		ON CONFLICT (key) DO UPDATE
		SET label = EXCLUDED.label,
			needs_reference = EXCLUDED.needs_reference,
			active = EXCLUDED.active,
			updated_at = now()
	`, option.Key, option.Label, option.NeedsReference, option.Active)
	if err != nil {
		return nil, err
	}

	saved := option
	return &saved, nil
}

func (s *Store) CreateQuoteEvent(ctx context.Context, event domain.QuoteEvent) error {
	if event.ID == "" {
		return store.ErrInvalidInput
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quote_events (
			id, store_id, terminal_id, customer_id, tier_name,
			subtotal, manual_discount, tier_discount, redemption_discount, total,
			points_redeemed, points_to_earn, redemption_status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, event.ID, event.StoreID, event.TerminalID, event.CustomerID, event.TierName,
		event.Subtotal, event.ManualDiscount, event.TierDiscount, event.RedemptionDiscount, event.Total,
		event.PointsRedeemed, event.PointsToEarn, event.RedemptionStatus, event.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (s *Store) GetDailyQuoteReport(ctx context.Context, storeID string, from time.Time, to time.Time) (domain.DailyQuoteReport, error) {
	report := domain.DailyQuoteReport{StoreID: storeID}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			count(*),
			coalesce(sum(subtotal), 0),
			coalesce(sum(manual_discount), 0),
			coalesce(sum(tier_discount), 0),
			coalesce(sum(redemption_discount), 0),
			coalesce(sum(total), 0),
			coalesce(sum(points_redeemed), 0),
			coalesce(sum(points_to_earn), 0),
			count(*) FILTER (WHERE redemption_status = 'rejected'),
			count(*) FILTER (WHERE redemption_status = 'clamped')
		FROM quote_events
		WHERE store_id = $1 AND created_at >= $2 AND created_at < $3
	`, storeID, from, to).Scan(
		&report.Quotes, &report.QuotedSubtotal, &report.ManualDiscount,
		&report.TierDiscount, &report.RedemptionDiscount, &report.QuotedTotal,
		&report.PointsRedeemed, &report.PointsToEarn,
		&report.RejectedRedemption, &report.ClampedRedemption,
	)
	if err != nil {
		return domain.DailyQuoteReport{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tier_name, count(*),
			coalesce(sum(tier_discount), 0),
			coalesce(sum(redemption_discount), 0),
			coalesce(sum(points_redeemed), 0)
		FROM quote_events
		WHERE store_id = $1 AND created_at >= $2 AND created_at < $3 AND tier_name <> ''
		GROUP BY tier_name
	`, storeID, from, to)
	if err != nil {
		return domain.DailyQuoteReport{}, err
	}
	defer rows.Close()

	byTier := make([]domain.DailyQuoteTier, 0, 4)
	for rows.Next() {
		var tier domain.DailyQuoteTier
		if err := rows.Scan(&tier.TierName, &tier.Quotes, &tier.TierDiscount, &tier.RedemptionDiscount, &tier.PointsRedeemed); err != nil {
			return domain.DailyQuoteReport{}, err
		}
		byTier = append(byTier, tier)
	}
	if err := rows.Err(); err != nil {
		return domain.DailyQuoteReport{}, err
	}
	sort.Slice(byTier, func(i, j int) bool {
		return byTier[i].TierName < byTier[j].TierName
	})
	report.ByTier = byTier
	return report, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, store_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.StoreID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE store_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
		LIMIT $4
	`, storeID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.StoreID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if user.Role == "" {
		user.Role = "cashier"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
