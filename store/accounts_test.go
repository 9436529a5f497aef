package store

import (
	"encoding/json"
	"errors"
	"testing"

	"nexusbet/models"
)

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	f := newFixture(t)

	if _, err := f.accounts.Create("ravi", "hash", "ravi@example.com"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.accounts.Create("Ravi", "hash", "other@example.com")
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("want ErrDuplicateIdentity, got %v", err)
	}
}

func TestCreateStartsAtZeroBalance(t *testing.T) {
	f := newFixture(t)

	user, err := f.accounts.Create("ravi", "hash", "ravi@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Balance != 0 {
		t.Fatalf("want zero starting balance, got %d", user.Balance)
	}
	if user.Role != models.RoleStandard {
		t.Fatalf("want standard role, got %q", user.Role)
	}
}

func TestReservedAdminUsernameIsPromoted(t *testing.T) {
	f := newFixture(t)

	user, err := f.accounts.Create("admin", "hash", "admin@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !user.IsAdmin() {
		t.Fatalf("want admin role, got %q", user.Role)
	}
}

func TestDepositCreditsAndLogs(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 0)

	user, err := f.accounts.Deposit("ravi", 50_000, "UPI")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if user.Balance != 50_000 {
		t.Fatalf("want 50000, got %d", user.Balance)
	}

	entries, err := f.ledger.ListForUser("ravi", 10, 0)
	if err != nil {
		t.Fatalf("list ledger: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Type != models.TxDeposit || e.Direction != models.DirectionCredit || e.Amount != 50_000 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.BalanceBefore != 0 || e.BalanceAfter != 50_000 {
		t.Fatalf("unexpected balance snapshot: before=%d after=%d", e.BalanceBefore, e.BalanceAfter)
	}
}

func TestDebitNeverOverdraws(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 10_000)

	_, err := f.accounts.AdjustBalance("ravi", -10_001, "test clawback")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if got := f.balance(t, "ravi"); got != 10_000 {
		t.Fatalf("balance moved on failed debit: %d", got)
	}

	// Failed debit leaves no ledger entry behind.
	entries, _ := f.ledger.ListForUser("ravi", 10, 0)
	if len(entries) != 1 {
		t.Fatalf("want only the deposit entry, got %d entries", len(entries))
	}
}

func TestAdjustBalanceBothDirections(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 10_000)

	if _, err := f.accounts.AdjustBalance("ravi", 5_000, "goodwill"); err != nil {
		t.Fatalf("credit adjust: %v", err)
	}
	if _, err := f.accounts.AdjustBalance("ravi", -3_000, "correction"); err != nil {
		t.Fatalf("debit adjust: %v", err)
	}
	if got := f.balance(t, "ravi"); got != 12_000 {
		t.Fatalf("want 12000, got %d", got)
	}
}

func TestSetBalanceRejectsNegativeTarget(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 10_000)

	if _, err := f.accounts.SetBalance("ravi", -1, "nope"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}

	user, err := f.accounts.SetBalance("ravi", 2_500, "reset")
	if err != nil {
		t.Fatalf("set balance: %v", err)
	}
	if user.Balance != 2_500 {
		t.Fatalf("want 2500, got %d", user.Balance)
	}
}

func TestLedgerReconstructsBalance(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 100_000)

	if _, err := f.accounts.AdjustBalance("ravi", 20_000, "bonus"); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if _, err := f.bets.Place("ravi", []Selection{
		{MatchID: "m1", Pick: models.PickHome, Odds: 2.0},
	}, 30_000); err != nil {
		t.Fatalf("place: %v", err)
	}

	delta, err := f.ledger.UserDelta("ravi")
	if err != nil {
		t.Fatalf("user delta: %v", err)
	}
	if got := f.balance(t, "ravi"); delta != got {
		t.Fatalf("ledger delta %d != balance %d", delta, got)
	}
}

func TestSetRoleAndKycValidation(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 0)

	if err := f.accounts.SetRole("ravi", "superuser"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument for role, got %v", err)
	}
	if err := f.accounts.SetRole("ravi", models.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if err := f.accounts.SetKycStatus("ravi", "Maybe"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument for kyc, got %v", err)
	}
	if err := f.accounts.SetKycStatus("ghost", models.KycVerified); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSetNotifications(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 0)

	prefs := models.NotificationPrefs{BetSettled: true, Promotions: true}
	if err := f.accounts.SetNotifications("ravi", prefs); err != nil {
		t.Fatalf("set notifications: %v", err)
	}

	user, err := f.accounts.Get("ravi")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var stored models.NotificationPrefs
	if err := json.Unmarshal(user.Notifications, &stored); err != nil {
		t.Fatalf("unmarshal prefs: %v", err)
	}
	if stored != prefs {
		t.Fatalf("want %+v, got %+v", prefs, stored)
	}

	if err := f.accounts.SetNotifications("ghost", prefs); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPurgeRefusesOpenActivity(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 100_000)

	if _, err := f.bets.Place("ravi", []Selection{
		{MatchID: "m1", Pick: models.PickHome, Odds: 2.0},
	}, 10_000); err != nil {
		t.Fatalf("place: %v", err)
	}

	if err := f.accounts.Purge("ravi"); !errors.Is(err, ErrAccountInUse) {
		t.Fatalf("want ErrAccountInUse, got %v", err)
	}
}

func TestPurgeKeepsLedger(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 100_000)

	if err := f.accounts.Purge("ravi"); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if _, err := f.accounts.Get("ravi"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound after purge, got %v", err)
	}

	entries, err := f.ledger.ListForUser("ravi", 10, 0)
	if err != nil {
		t.Fatalf("list ledger: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("audit trail lost on purge: %d entries", len(entries))
	}
}
