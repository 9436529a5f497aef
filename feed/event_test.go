package feed

import (
	"errors"
	"testing"

	"nexusbet/models"
)

func TestParseMatchFinished(t *testing.T) {
	body := []byte(`{"matchId":"m1","status":"Finished","finalScore":{"home":2,"away":1}}`)

	result, err := ParseMatchFinished(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.MatchID != "m1" || result.HomeScore != 2 || result.AwayScore != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Category != models.PickHome {
		t.Fatalf("want home category, got %q", result.Category)
	}
	if len(result.Payload) == 0 {
		t.Fatal("raw payload not retained")
	}
}

func TestParseMatchFinishedRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{"matchId":`},
		{"missing match id", `{"status":"Finished","finalScore":{"home":1,"away":0}}`},
		{"blank match id", `{"matchId":"  ","status":"Finished","finalScore":{"home":1,"away":0}}`},
		{"wrong status", `{"matchId":"m1","status":"Live","finalScore":{"home":1,"away":0}}`},
		{"missing score", `{"matchId":"m1","status":"Finished"}`},
		{"partial score", `{"matchId":"m1","status":"Finished","finalScore":{"home":1}}`},
		{"negative score", `{"matchId":"m1","status":"Finished","finalScore":{"home":-1,"away":0}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseMatchFinished([]byte(tc.body)); !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("want ErrInvalidPayload, got %v", err)
			}
		})
	}
}

func TestResultCategory(t *testing.T) {
	if got := models.ResultCategory(0, 0); got != models.PickDraw {
		t.Fatalf("0-0: %q", got)
	}
	if got := models.ResultCategory(3, 1); got != models.PickHome {
		t.Fatalf("3-1: %q", got)
	}
	if got := models.ResultCategory(0, 2); got != models.PickAway {
		t.Fatalf("0-2: %q", got)
	}
}
