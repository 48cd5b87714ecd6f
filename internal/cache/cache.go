package cache

import (
	"context"
	"time"

	"dokanpos/backend/internal/domain"
)

// MembershipConfigCache keeps the platform membership configuration close to
// the quote path so every keystroke-driven recompute does not hit the
// database. Implementations must tolerate being skipped entirely: the store
// remains the source of truth.
type MembershipConfigCache interface {
	Get(ctx context.Context, key string) (*domain.MembershipConfig, bool, error)
	Set(ctx context.Context, key string, value *domain.MembershipConfig, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopMembershipConfigCache struct{}

func (NoopMembershipConfigCache) Get(_ context.Context, _ string) (*domain.MembershipConfig, bool, error) {
	return nil, false, nil
}

func (NoopMembershipConfigCache) Set(_ context.Context, _ string, _ *domain.MembershipConfig, _ time.Duration) error {
	return nil
}

func (NoopMembershipConfigCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
