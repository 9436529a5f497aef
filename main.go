package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"nexusbet/controllers/admin"
	"nexusbet/controllers/auth"
	"nexusbet/controllers/feedctl"
	"nexusbet/controllers/user"
	"nexusbet/database"
	"nexusbet/feed"
	"nexusbet/insights"
	"nexusbet/jobs"
	"nexusbet/monitoring"
	"nexusbet/routes"
	"nexusbet/settlement"
	"nexusbet/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file, using environment")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	db := database.Connect()

	ledger := store.NewLedger(db)
	accounts := store.NewAccountStore(db, ledger)
	treasury := store.NewTreasury(db, accounts, log)
	bets := store.NewBetStore(db, ledger, accounts, treasury)
	withdrawals := store.NewWithdrawalQueue(db, ledger, accounts)

	if err := treasury.Seed(); err != nil {
		log.WithError(err).Fatal("treasury seed failed")
	}

	engine := settlement.NewEngine(db, bets, log)
	cache := feed.NewOddsCache(os.Getenv("REDIS_ADDR"))
	oracle := insights.NewClient(os.Getenv("INSIGHT_API_URL"))

	monitoring.Init()
	metricsAddr := os.Getenv("METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = "127.0.0.1:9090"
	}
	go monitoring.Serve(metricsAddr, db, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if jobs.SimulatorEnabled(os.Getenv("SIMULATOR")) {
		sim := feed.NewSimulator(db, engine, cache, log)
		go jobs.StartSimulator(ctx, sim, log)
	} else {
		log.Info("match simulator disabled, expecting external feed")
	}

	app := fiber.New()
	routes.Setup(app, routes.Deps{
		DB:    db,
		Auth:  auth.New(db, accounts),
		User:  user.New(db, accounts, ledger, bets, withdrawals, cache, oracle),
		Admin: admin.New(db, accounts, ledger, bets, treasury, withdrawals),
		Feed:  feedctl.New(engine),
	})

	host := os.Getenv("HOST")
	port := os.Getenv("PORT")
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3000"
	}
	addr := fmt.Sprintf("%s:%s", host, port)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.WithError(err).Fatal("failed to start server")
		}
	}()
	log.WithField("addr", addr).Info("server running")

	<-ctx.Done()

	log.Info("gracefully shutting down")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("server exited cleanly")
}
