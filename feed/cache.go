package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"nexusbet/models"
)

const boardKey = "nexusbet:board"

// OddsCache keeps the latest board snapshot in redis so the match listing
// does not hit the database on every poll. It is optional: a nil cache is a
// no-op and the listing falls back to the database.
type OddsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOddsCache(addr string) *OddsCache {
	if addr == "" {
		return nil
	}
	return &OddsCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: 60 * time.Second,
	}
}

func (c *OddsCache) PublishBoard(ctx context.Context, matches []models.Match) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(matches)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, boardKey, raw, c.ttl).Err()
}

func (c *OddsCache) Board(ctx context.Context) ([]models.Match, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, boardKey).Bytes()
	if err != nil {
		return nil, false
	}
	var matches []models.Match
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, false
	}
	return matches, true
}
