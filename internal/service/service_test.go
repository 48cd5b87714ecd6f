package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dokanpos/backend/internal/cache"
	"dokanpos/backend/internal/domain"
	"dokanpos/backend/internal/store"
	"dokanpos/backend/internal/store/memory"
)

func newTestService() *Service {
	repo := memory.NewSeeded()
	return New(repo, cache.NoopMembershipConfigCache{}, 5*time.Second, "main-store")
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
}

func TestQuoteOrderAppliesSeededGoldTier(t *testing.T) {
	svc := newTestService()

	resp, err := svc.QuoteOrder(context.Background(), domain.QuoteRequest{
		StoreID:    "main-store",
		TerminalID: "terminal-a1",
		CustomerID: "cust-demo-001",
		Items: []domain.CartLine{
			{LineTotal: 600},
			{LineTotal: 400},
		},
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	totals := resp.Totals
	if totals.Subtotal != 1000 {
		t.Fatalf("subtotal = %v, want 1000", totals.Subtotal)
	}
	if totals.TierName != "Gold" {
		t.Fatalf("tier name = %q, want Gold", totals.TierName)
	}
	if totals.TierDiscount != 100 {
		t.Fatalf("tier discount = %v, want 100 (Gold 10%%)", totals.TierDiscount)
	}
	if totals.Total != 900 {
		t.Fatalf("total = %v, want 900", totals.Total)
	}
	// seeded accrual: 1 point per 100 BDT, Gold multiplier 1.5, floor
	if totals.PointsToEarn != 13 {
		t.Fatalf("points to earn = %d, want 13", totals.PointsToEarn)
	}
}

func TestQuoteOrderRedeemsPointsForSeededCustomer(t *testing.T) {
	svc := newTestService()

	resp, err := svc.QuoteOrder(context.Background(), domain.QuoteRequest{
		CustomerID:     "cust-demo-001",
		Items:          []domain.CartLine{{LineTotal: 1000}},
		PointsToRedeem: "200",
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	totals := resp.Totals
	if totals.RedemptionStatus != domain.RedemptionApplied {
		t.Fatalf("redemption status = %q (error %q), want applied", totals.RedemptionStatus, totals.RedemptionError)
	}
	if totals.RedemptionDiscount != 200 {
		t.Fatalf("redemption discount = %v, want 200", totals.RedemptionDiscount)
	}
	if totals.Total != 700 {
		t.Fatalf("total = %v, want 700", totals.Total)
	}
}

func TestQuoteOrderRejectsBelowMinimumPoints(t *testing.T) {
	svc := newTestService()

	// seeded config requires at least 100 points per redemption
	resp, err := svc.QuoteOrder(context.Background(), domain.QuoteRequest{
		CustomerID:     "cust-demo-002",
		Items:          []domain.CartLine{{LineTotal: 1000}},
		PointsToRedeem: "50",
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	totals := resp.Totals
	if totals.RedemptionStatus != domain.RedemptionRejected {
		t.Fatalf("redemption status = %q, want rejected", totals.RedemptionStatus)
	}
	if totals.RedemptionError == "" {
		t.Fatalf("expected a redemption error message")
	}
	if totals.RedemptionDiscount != 0 {
		t.Fatalf("rejected redemption must not discount, got %v", totals.RedemptionDiscount)
	}
}

func TestQuoteOrderUnknownCustomer(t *testing.T) {
	svc := newTestService()

	_, err := svc.QuoteOrder(context.Background(), domain.QuoteRequest{
		CustomerID: "no-such-customer",
		Items:      []domain.CartLine{{LineTotal: 100}},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestQuoteOrderWithoutConfigStillQuotes(t *testing.T) {
	repo := memory.NewEmpty()
	svc := New(repo, cache.NoopMembershipConfigCache{}, 5*time.Second, "main-store")

	resp, err := svc.QuoteOrder(context.Background(), domain.QuoteRequest{
		Items:          []domain.CartLine{{LineTotal: 500}},
		PointsToRedeem: "100",
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	totals := resp.Totals
	if totals.Total != 500 {
		t.Fatalf("total = %v, want 500", totals.Total)
	}
	if totals.RedemptionStatus != domain.RedemptionRejected {
		t.Fatalf("redemption status = %q, want rejected without config", totals.RedemptionStatus)
	}
	if totals.PointsToEarn != 0 {
		t.Fatalf("points to earn = %d, want 0 without config", totals.PointsToEarn)
	}
}

func TestQuoteOrderRecordsQuoteEvent(t *testing.T) {
	svc := newTestService()

	if _, err := svc.QuoteOrder(context.Background(), domain.QuoteRequest{
		StoreID: "main-store",
		Items:   []domain.CartLine{{LineTotal: 250}},
	}); err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	report, err := svc.DailyQuoteReport(context.Background(), "main-store", "")
	if err != nil {
		t.Fatalf("daily report failed: %v", err)
	}
	if report.Quotes != 1 {
		t.Fatalf("report quotes = %d, want 1", report.Quotes)
	}
	if report.QuotedSubtotal != 250 {
		t.Fatalf("report subtotal = %v, want 250", report.QuotedSubtotal)
	}
}

func TestReviewSplitPaymentsUsesStoredOptions(t *testing.T) {
	svc := newTestService()

	review, err := svc.ReviewSplitPayments(context.Background(), domain.SplitReviewRequest{
		Total: 700,
		Entries: []domain.SplitPaymentEntry{
			{ID: "e1", PaymentKey: "cash", Amount: "500"},
			{ID: "e2", PaymentKey: "bkash", Amount: "200", Reference: "TRX-999"},
		},
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if !review.Valid || !review.Balanced {
		t.Fatalf("expected valid balanced review, got %+v", review)
	}

	review, err = svc.ReviewSplitPayments(context.Background(), domain.SplitReviewRequest{
		Total: 700,
		Entries: []domain.SplitPaymentEntry{
			{ID: "e1", PaymentKey: "bkash", Amount: "700"},
		},
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if review.Valid {
		t.Fatalf("bkash without reference must not validate")
	}
	if review.Entries[0].Error != "bKash reference is required" {
		t.Fatalf("entry error = %q", review.Entries[0].Error)
	}
}

func TestUpdateMembershipConfigRequiresAdmin(t *testing.T) {
	svc := newTestService()

	cashierCtx := WithActor(context.Background(), domain.Actor{Username: "cashier", Role: "cashier"})
	if _, err := svc.UpdateMembershipConfig(cashierCtx, domain.MembershipConfig{Enabled: true}); err == nil {
		t.Fatalf("expected cashier config update to fail")
	}

	if _, err := svc.UpdateMembershipConfig(context.Background(), domain.MembershipConfig{Enabled: true}); err == nil {
		t.Fatalf("expected anonymous config update to fail")
	}
}

func TestUpdateMembershipConfigValidatesAndPersists(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	percent := 150.0
	bad := domain.MembershipConfig{
		Enabled: true,
		Tiers:   []domain.MembershipTierConfig{{Name: "Gold", DiscountPercent: &percent}},
	}
	if _, err := svc.UpdateMembershipConfig(ctx, bad); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for percent > 100", err)
	}

	badRounding := domain.MembershipConfig{Enabled: true, RoundingMode: "bankers"}
	if _, err := svc.UpdateMembershipConfig(ctx, badRounding); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for unknown rounding", err)
	}

	good := domain.MembershipConfig{Enabled: false}
	resp, err := svc.UpdateMembershipConfig(ctx, good)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if resp.UpdatedBy != "admin" {
		t.Fatalf("updated by = %q, want admin", resp.UpdatedBy)
	}

	// quoting now sees an explicitly disabled program
	quote, err := svc.QuoteOrder(context.Background(), domain.QuoteRequest{
		CustomerID: "cust-demo-001",
		Items:      []domain.CartLine{{LineTotal: 1000}},
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.Totals.TierDiscount != 0 {
		t.Fatalf("tier discount = %v after disabling program, want 0", quote.Totals.TierDiscount)
	}
}

func TestAdjustCustomerPoints(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	updated, err := svc.AdjustCustomerPoints(ctx, "cust-demo-002", 80, "goodwill correction")
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if updated.Membership.Points.Current != 200 {
		t.Fatalf("points = %d, want 200", updated.Membership.Points.Current)
	}

	if _, err := svc.AdjustCustomerPoints(ctx, "cust-demo-002", -5000, "drain"); !errors.Is(err, store.ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}
	if _, err := svc.AdjustCustomerPoints(ctx, "cust-demo-002", 10, ""); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for missing reason", err)
	}
	if _, err := svc.AdjustCustomerPoints(context.Background(), "cust-demo-002", 10, "x"); err == nil {
		t.Fatalf("expected anonymous adjustment to fail")
	}

	logs, err := svc.ListAuditLogs(ctx, "main-store", "", 10)
	if err != nil {
		t.Fatalf("list audit logs failed: %v", err)
	}
	found := false
	for _, entry := range logs {
		if entry.Action == "customer_points_adjust" && entry.EntityID == "cust-demo-002" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an audit entry for the points adjustment")
	}
}

func TestCreateCustomerAssignsIDAndTier(t *testing.T) {
	svc := newTestService()

	created, err := svc.CreateCustomer(adminCtx(), domain.CustomerCreateRequest{
		Name:  "Nasrin Akter",
		Phone: "+8801712345678",
		Tier:  "Silver",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated customer id")
	}
	if created.Membership == nil || created.Membership.Tier != "Silver" {
		t.Fatalf("membership = %+v, want Silver tier", created.Membership)
	}

	if _, err := svc.CreateCustomer(adminCtx(), domain.CustomerCreateRequest{Name: "  "}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for blank name", err)
	}
}

func TestUpsertPaymentOptionRequiresAdmin(t *testing.T) {
	svc := newTestService()

	option := domain.PaymentOption{Key: "rocket", Label: "Rocket", NeedsReference: true, Active: true}
	if _, err := svc.UpsertPaymentOption(context.Background(), option); err == nil {
		t.Fatalf("expected anonymous upsert to fail")
	}

	saved, err := svc.UpsertPaymentOption(adminCtx(), option)
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if saved.Key != "rocket" {
		t.Fatalf("saved key = %q", saved.Key)
	}

	options, err := svc.ListPaymentOptions(context.Background(), false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	found := false
	for _, o := range options {
		if o.Key == "rocket" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected rocket in active payment options")
	}
}

func TestDailyQuoteReportRejectsBadDate(t *testing.T) {
	svc := newTestService()
	if _, err := svc.DailyQuoteReport(context.Background(), "main-store", "31-12-2026"); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
