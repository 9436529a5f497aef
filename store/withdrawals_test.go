package store

import (
	"errors"
	"testing"

	"nexusbet/models"
)

func verifiedUser(t *testing.T, f *fixture, username string, balance int64) {
	t.Helper()
	f.fundedUser(t, username, balance)
	if err := f.accounts.SetKycStatus(username, models.KycVerified); err != nil {
		t.Fatalf("verify kyc: %v", err)
	}
}

func TestRequestRequiresVerifiedKyc(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 50_000)

	_, err := f.withdrawals.Request("ravi", 10_000, "ravi@upi")
	if !errors.Is(err, ErrKycRequired) {
		t.Fatalf("want ErrKycRequired, got %v", err)
	}
	if got := f.balance(t, "ravi"); got != 50_000 {
		t.Fatalf("balance moved on gated request: %d", got)
	}
}

func TestRequestDebitsImmediately(t *testing.T) {
	f := newFixture(t)
	verifiedUser(t, f, "ravi", 50_000)

	req, err := f.withdrawals.Request("ravi", 20_000, "ravi@upi")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Status != models.WithdrawalPending {
		t.Fatalf("want Pending, got %q", req.Status)
	}
	if got := f.balance(t, "ravi"); got != 30_000 {
		t.Fatalf("want 30000 after debit, got %d", got)
	}

	entries, _ := f.ledger.ListForUser("ravi", 10, 0)
	var entry *models.Transaction
	for i := range entries {
		if entries[i].Type == models.TxWithdrawal {
			entry = &entries[i]
		}
	}
	if entry == nil {
		t.Fatal("no withdrawal ledger entry written")
	}
	if entry.Status != models.TxStatusPending || entry.TxID != req.TxID {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestRequestRejectsOverdraw(t *testing.T) {
	f := newFixture(t)
	verifiedUser(t, f, "ravi", 10_000)

	if _, err := f.withdrawals.Request("ravi", 10_001, "ravi@upi"); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if _, err := f.withdrawals.Request("ravi", 0, "ravi@upi"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
}

func TestRejectRefundsWithoutSecondEntry(t *testing.T) {
	f := newFixture(t)
	verifiedUser(t, f, "ravi", 50_000)

	req, err := f.withdrawals.Request("ravi", 20_000, "ravi@upi")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	resolved, err := f.withdrawals.Resolve(req.RequestID, false)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if resolved.Status != models.WithdrawalRejected {
		t.Fatalf("want Rejected, got %q", resolved.Status)
	}
	if got := f.balance(t, "ravi"); got != 50_000 {
		t.Fatalf("refund missing: %d", got)
	}

	// The entry's status flip is the audit record; no refund entry appears.
	entries, _ := f.ledger.ListForUser("ravi", 10, 0)
	withdrawalEntries := 0
	for i := range entries {
		if entries[i].Type == models.TxWithdrawal {
			withdrawalEntries++
			if entries[i].Status != models.TxStatusRejected {
				t.Fatalf("entry status not flipped: %q", entries[i].Status)
			}
		}
	}
	if withdrawalEntries != 1 {
		t.Fatalf("want exactly 1 withdrawal entry, got %d", withdrawalEntries)
	}

	// The ledger still reconstructs the balance after the round trip.
	delta, err := f.ledger.UserDelta("ravi")
	if err != nil {
		t.Fatalf("user delta: %v", err)
	}
	if delta != 50_000 {
		t.Fatalf("ledger delta %d after rejected withdrawal", delta)
	}
}

func TestApproveIsFinal(t *testing.T) {
	f := newFixture(t)
	verifiedUser(t, f, "ravi", 50_000)

	req, err := f.withdrawals.Request("ravi", 20_000, "ravi@upi")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	resolved, err := f.withdrawals.Resolve(req.RequestID, true)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if resolved.Status != models.WithdrawalApproved {
		t.Fatalf("want Approved, got %q", resolved.Status)
	}
	if got := f.balance(t, "ravi"); got != 30_000 {
		t.Fatalf("approved withdrawal refunded: %d", got)
	}
}

func TestResolveExactlyOnce(t *testing.T) {
	f := newFixture(t)
	verifiedUser(t, f, "ravi", 50_000)

	req, err := f.withdrawals.Request("ravi", 20_000, "ravi@upi")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.withdrawals.Resolve(req.RequestID, false); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	// A second resolve must not double-refund.
	if _, err := f.withdrawals.Resolve(req.RequestID, false); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("want ErrAlreadyResolved, got %v", err)
	}
	if got := f.balance(t, "ravi"); got != 50_000 {
		t.Fatalf("double refund: %d", got)
	}

	if _, err := f.withdrawals.Resolve("missing-id", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
