package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nexusbet/models"
)

// Insight is the oracle's prediction for one match. The oracle is an opaque
// external collaborator: it may be slow, wrong or down, and none of that may
// ever touch a ledger path.
type Insight struct {
	MatchID    string  `json:"match_id"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a nil client when no oracle is configured; callers treat
// a nil client as "no insight available".
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 3 * time.Second},
	}
}

// MatchInsight asks the oracle about a match. Any failure degrades to a nil
// insight.
func (c *Client) MatchInsight(ctx context.Context, match *models.Match) (*Insight, error) {
	if c == nil {
		return nil, nil
	}

	body, err := json.Marshal(match)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/insight", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("insight oracle http %s", resp.Status)
	}

	var out Insight
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	out.MatchID = match.MatchID
	return &out, nil
}
