package database

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nexusbet/models"
)

// Connect opens the configured database and returns the handle. Stores take
// the handle by injection; there is no package-level connection.
func Connect() *gorm.DB {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "postgres"
	}

	var (
		db  *gorm.DB
		err error
	)

	switch driver {
	case "sqlite":
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "nexusbet.sqlite"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_SSLMODE"),
		)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	log.Println("Connected to database")

	autoMigrate, _ := strconv.ParseBool(os.Getenv("DB_AUTO_MIGRATE"))
	if autoMigrate {
		if err := Migrate(db); err != nil {
			log.Fatal("Failed to auto-migrate database:", err)
		}
		log.Println("Auto migration completed")
	}

	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Transaction{},
		&models.BetRecord{},
		&models.BetSelection{},
		&models.WithdrawalRequest{},
		&models.HouseStats{},
		&models.Match{},
		&models.MatchResult{},
	)
}

// Lock adds a FOR UPDATE clause on dialects that support row locks. sqlite
// serializes writers on its own and rejects the clause.
func Lock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
