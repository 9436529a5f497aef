package feed

import (
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/datatypes"

	"nexusbet/models"
)

var ErrInvalidPayload = errors.New("invalid match feed payload")

// MatchFinishedEvent is the external wire shape. Pointer fields distinguish
// "absent" from zero so a partial payload cannot slip through.
type MatchFinishedEvent struct {
	MatchID string `json:"matchId"`
	Status  string `json:"status"`
	Score   *struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"finalScore"`
}

// ParseMatchFinished is the strict ingestion boundary: it validates the raw
// payload and maps it into the internal result type. Invalid input is
// rejected whole — nothing downstream ever sees a partially-trusted event.
func ParseMatchFinished(body []byte) (*models.MatchResult, error) {
	var ev MatchFinishedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, ErrInvalidPayload
	}

	ev.MatchID = strings.TrimSpace(ev.MatchID)
	if ev.MatchID == "" {
		return nil, ErrInvalidPayload
	}
	if ev.Status != models.MatchFinished {
		return nil, ErrInvalidPayload
	}
	if ev.Score == nil || ev.Score.Home == nil || ev.Score.Away == nil {
		return nil, ErrInvalidPayload
	}
	if *ev.Score.Home < 0 || *ev.Score.Away < 0 {
		return nil, ErrInvalidPayload
	}

	return &models.MatchResult{
		MatchID:   ev.MatchID,
		HomeScore: *ev.Score.Home,
		AwayScore: *ev.Score.Away,
		Category:  models.ResultCategory(*ev.Score.Home, *ev.Score.Away),
		Payload:   datatypes.JSON(body),
	}, nil
}
