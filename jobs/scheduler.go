package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"nexusbet/feed"
)

const simulatorInterval = 5 * time.Second

// SimulatorEnabled reports whether the in-process match feed should run. On
// by default; a deployment fed by a real match webhook sets SIMULATOR=off.
func SimulatorEnabled(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "off", "false", "0":
		return false
	}
	return true
}

// StartSimulator seeds the board and ticks it until the context is cancelled.
func StartSimulator(ctx context.Context, sim *feed.Simulator, log *logrus.Logger) {
	if err := sim.Seed(6); err != nil {
		log.WithError(err).Warn("simulator seed failed")
	}

	ticker := time.NewTicker(simulatorInterval)
	defer ticker.Stop()

	log.WithField("interval", simulatorInterval.String()).Info("match simulator running")
	for {
		select {
		case <-ctx.Done():
			log.Info("match simulator stopped")
			return
		case <-ticker.C:
			sim.Tick(ctx)
		}
	}
}
