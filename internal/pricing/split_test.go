package pricing

import (
	"testing"

	"dokanpos/backend/internal/domain"
)

func testPaymentOptions() map[string]domain.PaymentOption {
	return map[string]domain.PaymentOption{
		"cash":  {Key: "cash", Label: "Cash", Active: true},
		"card":  {Key: "card", Label: "Card", NeedsReference: true, Active: true},
		"bkash": {Key: "bkash", Label: "bKash", NeedsReference: true, Active: true},
		"nagad": {Key: "nagad", Label: "Nagad", NeedsReference: true, Active: false},
	}
}

func TestReconcileSplitBalanced(t *testing.T) {
	review := ReconcileSplit(700, []domain.SplitPaymentEntry{
		{ID: "e1", PaymentKey: "cash", Amount: "500"},
		{ID: "e2", PaymentKey: "card", Amount: "200", Reference: "CARD-REF-001"},
	}, testPaymentOptions())

	if review.Allocated != 700 || review.Remaining != 0 {
		t.Fatalf("expected allocated 700 remaining 0, got %v/%v", review.Allocated, review.Remaining)
	}
	if !review.Balanced || !review.Valid {
		t.Fatalf("expected balanced valid split, got %+v", review)
	}
	for _, entry := range review.Entries {
		if entry.Error != "" {
			t.Fatalf("expected no entry errors, got %q on %s", entry.Error, entry.ID)
		}
	}
}

func TestReconcileSplitMissingReference(t *testing.T) {
	review := ReconcileSplit(700, []domain.SplitPaymentEntry{
		{ID: "e1", PaymentKey: "cash", Amount: "500"},
		{ID: "e2", PaymentKey: "card", Amount: "200"},
	}, testPaymentOptions())

	if review.Valid {
		t.Fatalf("expected invalid review when reference is missing")
	}
	if review.Entries[1].Error != "Card reference is required" {
		t.Fatalf("unexpected entry error %q", review.Entries[1].Error)
	}
	if !review.Balanced {
		t.Fatalf("balance is independent of entry validity")
	}
}

func TestReconcileSplitEmptyAmount(t *testing.T) {
	review := ReconcileSplit(700, []domain.SplitPaymentEntry{
		{ID: "e1", PaymentKey: "cash", Amount: ""},
		{ID: "e2", PaymentKey: "cash", Amount: "abc"},
	}, testPaymentOptions())

	for _, entry := range review.Entries {
		if entry.Error != "amount is required" {
			t.Fatalf("expected amount error, got %q", entry.Error)
		}
	}
	if review.Allocated != 0 || review.Remaining != 700 {
		t.Fatalf("expected 0 allocated, 700 remaining, got %v/%v", review.Allocated, review.Remaining)
	}
}

func TestReconcileSplitUnknownAndInactiveMethods(t *testing.T) {
	review := ReconcileSplit(100, []domain.SplitPaymentEntry{
		{ID: "e1", PaymentKey: "cheque", Amount: "100"},
		{ID: "e2", PaymentKey: "nagad", Amount: "100", Reference: "NG-1"},
	}, testPaymentOptions())

	if review.Entries[0].Error != "unknown payment method" {
		t.Fatalf("expected unknown method error, got %q", review.Entries[0].Error)
	}
	if review.Entries[1].Error != "unknown payment method" {
		t.Fatalf("inactive method must be treated as unknown, got %q", review.Entries[1].Error)
	}
}

func TestReconcileSplitRemainingIfCleared(t *testing.T) {
	review := ReconcileSplit(700, []domain.SplitPaymentEntry{
		{ID: "e1", PaymentKey: "cash", Amount: "500"},
		{ID: "e2", PaymentKey: "cash", Amount: "100"},
	}, testPaymentOptions())

	// If e2 were zero, 500 is allocated and 200 remains for it to fill.
	if review.Entries[1].RemainingIfCleared != 200 {
		t.Fatalf("expected remaining-if-cleared 200, got %v", review.Entries[1].RemainingIfCleared)
	}
	if review.Entries[0].RemainingIfCleared != 600 {
		t.Fatalf("expected remaining-if-cleared 600, got %v", review.Entries[0].RemainingIfCleared)
	}
	if review.Remaining != 100 {
		t.Fatalf("expected remaining 100, got %v", review.Remaining)
	}
}

func TestReconcileSplitOverAllocation(t *testing.T) {
	review := ReconcileSplit(700, []domain.SplitPaymentEntry{
		{ID: "e1", PaymentKey: "cash", Amount: "800"},
	}, testPaymentOptions())

	if review.Remaining != 0 {
		t.Fatalf("remaining clamps at zero, got %v", review.Remaining)
	}
	if review.Balanced {
		t.Fatalf("over-allocated split must not report balanced")
	}
}

func TestReconcileSplitNoEntries(t *testing.T) {
	review := ReconcileSplit(700, nil, testPaymentOptions())
	if review.Valid {
		t.Fatalf("empty split cannot be valid")
	}
	if review.Remaining != 700 {
		t.Fatalf("expected full total remaining, got %v", review.Remaining)
	}
}
