package store

import (
	"context"
	"errors"
	"time"

	"dokanpos/backend/internal/domain"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInsufficientPoints = errors.New("insufficient points")
)

type Repository interface {
	GetMembershipConfig(ctx context.Context) (*domain.MembershipConfig, string, time.Time, error)
	SaveMembershipConfig(ctx context.Context, cfg domain.MembershipConfig, updatedBy string, updatedAt time.Time) error

	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, query string, limit int) ([]domain.Customer, error)
	AdjustCustomerPoints(ctx context.Context, id string, deltaPoints int) (*domain.Customer, error)

	ListPaymentOptions(ctx context.Context, includeInactive bool) ([]domain.PaymentOption, error)
	UpsertPaymentOption(ctx context.Context, option domain.PaymentOption) (*domain.PaymentOption, error)

	CreateQuoteEvent(ctx context.Context, event domain.QuoteEvent) error
	GetDailyQuoteReport(ctx context.Context, storeID string, from time.Time, to time.Time) (domain.DailyQuoteReport, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
