package settlement

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nexusbet/database"
	"nexusbet/models"
	"nexusbet/store"
)

type fixture struct {
	db       *gorm.DB
	accounts *store.AccountStore
	bets     *store.BetStore
	engine   *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	ledger := store.NewLedger(db)
	accounts := store.NewAccountStore(db, ledger)
	treasury := store.NewTreasury(db, accounts, log)
	bets := store.NewBetStore(db, ledger, accounts, treasury)
	if err := treasury.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	return &fixture{
		db:       db,
		accounts: accounts,
		bets:     bets,
		engine:   NewEngine(db, bets, log),
	}
}

func (f *fixture) fundedUser(t *testing.T, username string, balance int64) {
	t.Helper()
	if _, err := f.accounts.Create(username, "hash", username+"@example.com"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.accounts.Deposit(username, balance, "UPI"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
}

func (f *fixture) balance(t *testing.T, username string) int64 {
	t.Helper()
	user, err := f.accounts.Get(username)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return user.Balance
}

func result(matchID string, home, away int) *models.MatchResult {
	return &models.MatchResult{MatchID: matchID, HomeScore: home, AwayScore: away}
}

func TestSingleLegWinEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 100_000)

	bet, err := f.bets.Place("ravi", []store.Selection{
		{MatchID: "m1", Pick: models.PickHome, Odds: 2.5},
	}, 20_000)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if err := f.engine.HandleMatchFinished(result("m1", 2, 1)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	settled, err := f.bets.Get(bet.BetID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if settled.Status != models.BetWon || settled.Winnings != 50_000 {
		t.Fatalf("status=%q winnings=%d", settled.Status, settled.Winnings)
	}
	if settled.SettledAt == nil {
		t.Fatal("settled_at not stamped")
	}
	if got := f.balance(t, "ravi"); got != 130_000 {
		t.Fatalf("want 130000, got %d", got)
	}
}

func TestAccumulatorPaysOnlyWhenAllLegsWin(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 100_000)

	bet, err := f.bets.Place("ravi", []store.Selection{
		{MatchID: "m1", Pick: models.PickHome, Odds: 2.0},
		{MatchID: "m2", Pick: models.PickAway, Odds: 3.0},
	}, 10_000)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	// First leg wins; the slip stays open.
	if err := f.engine.HandleMatchFinished(result("m1", 1, 0)); err != nil {
		t.Fatalf("first leg: %v", err)
	}
	open, _ := f.bets.Get(bet.BetID)
	if open.Status != models.BetPending {
		t.Fatalf("slip flipped early: %q", open.Status)
	}
	if got := f.balance(t, "ravi"); got != 90_000 {
		t.Fatalf("paid early: %d", got)
	}

	// Second leg wins; the slip pays stake x combined odds.
	if err := f.engine.HandleMatchFinished(result("m2", 0, 2)); err != nil {
		t.Fatalf("second leg: %v", err)
	}
	won, _ := f.bets.Get(bet.BetID)
	if won.Status != models.BetWon || won.Winnings != 60_000 {
		t.Fatalf("status=%q winnings=%d", won.Status, won.Winnings)
	}
	if got := f.balance(t, "ravi"); got != 150_000 {
		t.Fatalf("want 150000, got %d", got)
	}
}

func TestAccumulatorVoidsOnFirstLosingLeg(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 100_000)

	bet, err := f.bets.Place("ravi", []store.Selection{
		{MatchID: "m1", Pick: models.PickHome, Odds: 2.0},
		{MatchID: "m2", Pick: models.PickAway, Odds: 3.0},
	}, 10_000)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	// A losing leg voids the slip even with the other match still running.
	if err := f.engine.HandleMatchFinished(result("m1", 0, 1)); err != nil {
		t.Fatalf("losing leg: %v", err)
	}
	lost, _ := f.bets.Get(bet.BetID)
	if lost.Status != models.BetLost {
		t.Fatalf("want Lost, got %q", lost.Status)
	}

	// The second result lands on an already-terminal slip and changes nothing.
	if err := f.engine.HandleMatchFinished(result("m2", 0, 2)); err != nil {
		t.Fatalf("second leg: %v", err)
	}
	still, _ := f.bets.Get(bet.BetID)
	if still.Status != models.BetLost {
		t.Fatalf("terminal state changed: %q", still.Status)
	}
	if got := f.balance(t, "ravi"); got != 90_000 {
		t.Fatalf("money moved on lost slip: %d", got)
	}
}

func TestRedeliverySettlesAtMostOnce(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 100_000)

	if _, err := f.bets.Place("ravi", []store.Selection{
		{MatchID: "m1", Pick: models.PickHome, Odds: 2.0},
	}, 10_000); err != nil {
		t.Fatalf("place: %v", err)
	}

	if err := f.engine.HandleMatchFinished(result("m1", 3, 0)); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := f.engine.HandleMatchFinished(result("m1", 3, 0)); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	if got := f.balance(t, "ravi"); got != 110_000 {
		t.Fatalf("double payout: %d", got)
	}
}

// The result row may already exist when a delivery goes to record it (two
// deliveries racing on first arrival). The collision must take the benign
// re-sweep path, not surface a duplicate-key error.
func TestDeliveryAgainstAlreadyRecordedResult(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 100_000)

	bet, err := f.bets.Place("ravi", []store.Selection{
		{MatchID: "m1", Pick: models.PickHome, Odds: 2.0},
	}, 10_000)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if err := f.db.Create(&models.MatchResult{
		MatchID: "m1", HomeScore: 2, AwayScore: 0,
		Category: models.ResultCategory(2, 0),
	}).Error; err != nil {
		t.Fatalf("pre-record result: %v", err)
	}

	// Same score: the sweep still runs and settles the slip.
	if err := f.engine.HandleMatchFinished(result("m1", 2, 0)); err != nil {
		t.Fatalf("delivery against recorded result: %v", err)
	}
	settled, _ := f.bets.Get(bet.BetID)
	if settled.Status != models.BetWon {
		t.Fatalf("slip not settled: %q", settled.Status)
	}

	// Different score: rejected as a conflict.
	if err := f.engine.HandleMatchFinished(result("m1", 1, 1)); !errors.Is(err, store.ErrResultConflict) {
		t.Fatalf("want ErrResultConflict, got %v", err)
	}
}

func TestConflictingResultRejected(t *testing.T) {
	f := newFixture(t)

	if err := f.engine.HandleMatchFinished(result("m1", 1, 0)); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	err := f.engine.HandleMatchFinished(result("m1", 0, 1))
	if !errors.Is(err, store.ErrResultConflict) {
		t.Fatalf("want ErrResultConflict, got %v", err)
	}
}

func TestDrawPaysDrawPick(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 100_000)

	bet, err := f.bets.Place("ravi", []store.Selection{
		{MatchID: "m1", Pick: models.PickDraw, Odds: 3.2},
	}, 10_000)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if err := f.engine.HandleMatchFinished(result("m1", 2, 2)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	won, _ := f.bets.Get(bet.BetID)
	if won.Status != models.BetWon {
		t.Fatalf("draw pick did not pay on draw: %q", won.Status)
	}
}

// Two accounts on the same match settle independently; a sweep pays each
// winner exactly its own slip.
func TestSweepSettlesAllAccounts(t *testing.T) {
	f := newFixture(t)
	f.fundedUser(t, "ravi", 100_000)
	f.fundedUser(t, "asha", 100_000)

	if _, err := f.bets.Place("ravi", []store.Selection{
		{MatchID: "m1", Pick: models.PickHome, Odds: 2.0},
	}, 10_000); err != nil {
		t.Fatalf("place ravi: %v", err)
	}
	if _, err := f.bets.Place("asha", []store.Selection{
		{MatchID: "m1", Pick: models.PickAway, Odds: 2.0},
	}, 10_000); err != nil {
		t.Fatalf("place asha: %v", err)
	}

	if err := f.engine.HandleMatchFinished(result("m1", 1, 0)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if got := f.balance(t, "ravi"); got != 110_000 {
		t.Fatalf("winner: %d", got)
	}
	if got := f.balance(t, "asha"); got != 90_000 {
		t.Fatalf("loser: %d", got)
	}
}
