package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	BetsPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nexusbet_bets_placed_total",
		Help: "Bet slips accepted",
	})

	BetsSettled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexusbet_bets_settled_total",
		Help: "Bet slips settled, by outcome",
	}, []string{"outcome"})

	PayoutPaise = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nexusbet_payout_paise_total",
		Help: "Winnings paid out, in paise",
	})

	WithdrawalsResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexusbet_withdrawals_resolved_total",
		Help: "Withdrawal requests resolved, by decision",
	}, []string{"decision"})

	SweepFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nexusbet_settlement_sweep_failures_total",
		Help: "Per-bet settlement failures skipped during a sweep",
	})
)

func Init() {
	prometheus.MustRegister(BetsPlaced, BetsSettled, PayoutPaise, WithdrawalsResolved, SweepFailures)
}

// Serve runs /metrics and /healthz on a side listener, away from the public
// API port.
func Serve(addr string, db *gorm.DB, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err != nil {
			http.Error(w, "db", http.StatusServiceUnavailable)
			return
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			http.Error(w, "db", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log.WithField("addr", addr).Info("metrics/health listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Warn("metrics server stopped")
	}
}
