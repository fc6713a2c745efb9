package deadlock

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := New(Config{
		BaseURL:           server.URL,
		AssetsBaseURL:     server.URL,
		MaxAttempts:       3,
		RequestsPerSecond: 1000, // keep pacing out of test runtime
	})
	return client, server
}

func TestEsportsMatchesDecodesPayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/esports/matches" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("accept header = %q", got)
		}
		w.Write([]byte(`[{"match_id": 39080962, "status": "Completed"}, {"match_id": 39080963, "status": "Live"}]`))
	}))

	matches, err := client.EsportsMatches(context.Background())
	if err != nil {
		t.Fatalf("esports matches: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].MatchID != 39080962 || matches[0].Status != MatchStatusCompleted {
		t.Fatalf("unexpected first match: %+v", matches[0])
	}
}

func TestGetRetriesOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"match_info": {"players": [{"account_id": 7}]}}`))
	}))

	metadata, err := client.MatchMetadata(context.Background(), 42)
	if err != nil {
		t.Fatalf("match metadata: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	if len(metadata.MatchInfo.Players) != 1 || metadata.MatchInfo.Players[0].AccountID != 7 {
		t.Fatalf("unexpected metadata: %+v", metadata)
	}
}

func TestGetFailsAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.EsportsMatches(context.Background())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !errors.Is(err, apperrors.New(apperrors.CodeIngestFetchFailed, "")) {
		t.Fatalf("err = %v, want %s code", err, apperrors.CodeIngestFetchFailed)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.MatchMetadata(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on 4xx)", calls.Load())
	}
}

func TestPlayerMatchHistoryPassesStoredFlag(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("only_stored_history"); got != "true" {
			t.Errorf("only_stored_history = %q, want true", got)
		}
		w.Write([]byte(`[{"match_id": 5, "start_time": 1700000000, "match_duration_s": 1800,
			"player_kills": 3, "player_deaths": 1, "player_assists": 9,
			"net_worth": 31000, "player_team": 0, "match_result": 0}]`))
	}))

	entries, err := client.PlayerMatchHistory(context.Background(), 1124397375, true)
	if err != nil {
		t.Fatalf("match history: %v", err)
	}
	if len(entries) != 1 || entries[0].NetWorth != 31000 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestRawResourcePreservesBody(t *testing.T) {
	raw := `[{"id": 1, "class_name": "hero_inferno", "extra_field": {"nested": true}}]`
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(raw))
	}))

	body, err := client.RawResource(context.Background(), "v2/heroes")
	if err != nil {
		t.Fatalf("raw resource: %v", err)
	}
	if string(body) != raw {
		t.Fatalf("body = %s, want verbatim upstream payload", body)
	}
}

func TestDownloadWritesBody(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	}))

	var buf bytes.Buffer
	if err := client.Download(context.Background(), server.URL+"/heroes/inferno_card.png", &buf); err != nil {
		t.Fatalf("download: %v", err)
	}
	if buf.String() != "png-bytes" {
		t.Fatalf("body = %q", buf.String())
	}
}

func TestDownloadReportsStatusErrors(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	var buf bytes.Buffer
	err := client.Download(context.Background(), server.URL+"/missing.png", &buf)
	if !errors.Is(err, apperrors.New(apperrors.CodeIconDownloadFailed, "")) {
		t.Fatalf("err = %v, want %s code", err, apperrors.CodeIconDownloadFailed)
	}
}

func TestMetricEndpointCollapsesIDs(t *testing.T) {
	cases := map[string]string{
		"/v1/matches/38123/metadata":   "/v1/matches/{id}/metadata",
		"/v1/players/42/match-history": "/v1/players/{id}/match-history",
		"/v1/esports/matches":          "/v1/esports/matches",
		"/v2/heroes":                   "/v2/heroes",
	}
	for path, want := range cases {
		if got := metricEndpoint(path); got != want {
			t.Fatalf("metricEndpoint(%q) = %q, want %q", path, got, want)
		}
	}
}
