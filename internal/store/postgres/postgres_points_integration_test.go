package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"dokanpos/backend/internal/domain"
	"dokanpos/backend/internal/store"
)

func TestAdjustCustomerPointsNeverGoesNegative(t *testing.T) {
	databaseURL := os.Getenv("DOKANPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set DOKANPOS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	customerID := fmt.Sprintf("cust-points-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	})

	created, err := s.CreateCustomer(ctx, domain.Customer{
		ID:    customerID,
		Name:  "Points IT Customer",
		Phone: "+8801700000000",
		Membership: &domain.CustomerMembership{
			Tier:   "Gold",
			Points: domain.CustomerPoints{Current: 50},
		},
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if created.Membership == nil || created.Membership.Points.Current != 50 {
		t.Fatalf("unexpected created customer: %+v", created)
	}

	updated, err := s.AdjustCustomerPoints(ctx, customerID, 30)
	if err != nil {
		t.Fatalf("adjust +30: %v", err)
	}
	if updated.Membership.Points.Current != 80 {
		t.Fatalf("points = %d, want 80", updated.Membership.Points.Current)
	}

	if _, err := s.AdjustCustomerPoints(ctx, customerID, -200); !errors.Is(err, store.ErrInsufficientPoints) {
		t.Fatalf("adjust -200 err = %v, want ErrInsufficientPoints", err)
	}

	final, err := s.GetCustomerByID(ctx, customerID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if final.Membership.Points.Current != 80 {
		t.Fatalf("points after failed adjust = %d, want 80", final.Membership.Points.Current)
	}

	if _, err := s.AdjustCustomerPoints(ctx, "no-such-customer", -1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing customer err = %v, want ErrNotFound", err)
	}
}
