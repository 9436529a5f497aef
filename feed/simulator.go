package feed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"nexusbet/models"
)

// Settler is the one thing the simulator needs from the settlement side.
type Settler interface {
	HandleMatchFinished(result *models.MatchResult) error
}

type sportCatalog struct {
	sport   string
	leagues []string
	teams   []string
	hasDraw bool
}

var catalogs = []sportCatalog{
	{
		sport:   "Soccer",
		leagues: []string{"Premier League", "La Liga", "Serie A", "ISL"},
		teams: []string{
			"Arsenal", "Chelsea", "Liverpool", "Barcelona", "Real Madrid",
			"Juventus", "Inter Milan", "Mumbai City", "Bengaluru FC", "Kerala Blasters",
		},
		hasDraw: true,
	},
	{
		sport:   "Basketball",
		leagues: []string{"NBA", "EuroLeague"},
		teams: []string{
			"Lakers", "Celtics", "Warriors", "Bucks", "Heat", "Nuggets",
		},
	},
	{
		sport:   "Cricket",
		leagues: []string{"IPL", "BBL"},
		teams: []string{
			"Mumbai Indians", "Chennai Super Kings", "RCB", "Kolkata Knight Riders",
			"Sydney Sixers", "Melbourne Stars",
		},
	},
}

// Simulator drives the match board through Upcoming -> Live -> Finished and
// hands terminal results to the settlement engine. It stands in for the real
// sports feed; settlement never knows the difference.
type Simulator struct {
	db      *gorm.DB
	settler Settler
	cache   *OddsCache
	log     *logrus.Logger
	rng     *rand.Rand
}

func NewSimulator(db *gorm.DB, settler Settler, cache *OddsCache, log *logrus.Logger) *Simulator {
	return &Simulator{
		db:      db,
		settler: settler,
		cache:   cache,
		log:     log,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed fills an empty board with a starting set of matches.
func (s *Simulator) Seed(n int) error {
	var count int64
	if err := s.db.Model(&models.Match{}).Where("status <> ?", models.MatchFinished).Count(&count).Error; err != nil {
		return err
	}
	for i := int64(0); i < int64(n)-count; i++ {
		if err := s.spawn(); err != nil {
			return err
		}
	}
	return nil
}

// Tick advances the whole board by one simulation step.
func (s *Simulator) Tick(ctx context.Context) {
	if s.rng.Float64() < 0.15 {
		if err := s.spawn(); err != nil {
			s.log.WithError(err).Warn("simulator spawn failed")
		}
	}

	var matches []models.Match
	if err := s.db.Where("status <> ?", models.MatchFinished).Find(&matches).Error; err != nil {
		s.log.WithError(err).Warn("simulator board load failed")
		return
	}

	for i := range matches {
		m := &matches[i]
		switch m.Status {
		case models.MatchUpcoming:
			if time.Now().After(m.StartTime) {
				m.Status = models.MatchLive
				m.Minute = 0
			}
		case models.MatchLive:
			s.advance(m)
		}
		if err := s.db.Save(m).Error; err != nil {
			s.log.WithError(err).WithField("match_id", m.MatchID).Warn("simulator save failed")
			continue
		}
		if m.Status == models.MatchFinished {
			s.finish(m)
		}
	}

	s.publish(ctx)
}

func (s *Simulator) spawn() error {
	cat := catalogs[s.rng.Intn(len(catalogs))]

	home := cat.teams[s.rng.Intn(len(cat.teams))]
	away := cat.teams[s.rng.Intn(len(cat.teams))]
	for home == away {
		away = cat.teams[s.rng.Intn(len(cat.teams))]
	}

	m := models.Match{
		MatchID:   uuid.New().String(),
		Sport:     cat.sport,
		League:    cat.leagues[s.rng.Intn(len(cat.leagues))],
		HomeTeam:  home,
		AwayTeam:  away,
		StartTime: time.Now().Add(time.Duration(s.rng.Intn(120)) * time.Second),
		Status:    models.MatchUpcoming,
		OddsHome:  1.5 + s.rng.Float64()*2,
		OddsAway:  1.5 + s.rng.Float64()*2,
	}
	if cat.hasDraw {
		m.OddsDraw = 2.5 + s.rng.Float64()*2
	}
	return s.db.Create(&m).Error
}

func (s *Simulator) advance(m *models.Match) {
	m.Minute++

	if s.rng.Float64() < 0.03 {
		if s.rng.Float64() > 0.5 {
			m.HomeScore++
		} else {
			m.AwayScore++
		}
	}

	m.OddsHome = fluctuate(s.rng, m.OddsHome)
	m.OddsAway = fluctuate(s.rng, m.OddsAway)
	if m.OddsDraw > 0 {
		m.OddsDraw = fluctuate(s.rng, m.OddsDraw)
	}

	if m.Minute >= 95 {
		m.Status = models.MatchFinished
	}
}

func (s *Simulator) finish(m *models.Match) {
	result := &models.MatchResult{
		MatchID:   m.MatchID,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		Category:  models.ResultCategory(m.HomeScore, m.AwayScore),
	}
	if err := s.settler.HandleMatchFinished(result); err != nil {
		s.log.WithError(err).WithField("match_id", m.MatchID).Error("settlement trigger failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"match_id": m.MatchID,
		"score":    fmt.Sprintf("%d-%d", m.HomeScore, m.AwayScore),
		"category": result.Category,
	}).Info("match finished")
}

func (s *Simulator) publish(ctx context.Context) {
	if s.cache == nil {
		return
	}
	var matches []models.Match
	if err := s.db.Where("status <> ?", models.MatchFinished).
		Order("start_time ASC").Find(&matches).Error; err != nil {
		return
	}
	if err := s.cache.PublishBoard(ctx, matches); err != nil {
		s.log.WithError(err).Warn("board cache publish failed")
	}
}

func fluctuate(rng *rand.Rand, odd float64) float64 {
	odd += (rng.Float64() - 0.5) * 0.1
	if odd < 1.01 {
		odd = 1.01
	}
	return odd
}
