package store

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nexusbet/database"
)

type fixture struct {
	db          *gorm.DB
	ledger      *Ledger
	accounts    *AccountStore
	treasury    *Treasury
	bets        *BetStore
	withdrawals *WithdrawalQueue
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

	ledger := NewLedger(db)
	accounts := NewAccountStore(db, ledger)
	treasury := NewTreasury(db, accounts, log)
	bets := NewBetStore(db, ledger, accounts, treasury)
	withdrawals := NewWithdrawalQueue(db, ledger, accounts)

	if err := treasury.Seed(); err != nil {
		t.Fatalf("seed treasury: %v", err)
	}

	return &fixture{
		db:          db,
		ledger:      ledger,
		accounts:    accounts,
		treasury:    treasury,
		bets:        bets,
		withdrawals: withdrawals,
	}
}

// fundedUser registers a user and credits a starting balance via Deposit.
func (f *fixture) fundedUser(t *testing.T, username string, balance int64) {
	t.Helper()
	if _, err := f.accounts.Create(username, "hash", username+"@example.com"); err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	if balance > 0 {
		if _, err := f.accounts.Deposit(username, balance, "UPI"); err != nil {
			t.Fatalf("deposit for %s: %v", username, err)
		}
	}
}

func (f *fixture) balance(t *testing.T, username string) int64 {
	t.Helper()
	user, err := f.accounts.Get(username)
	if err != nil {
		t.Fatalf("get %s: %v", username, err)
	}
	return user.Balance
}
