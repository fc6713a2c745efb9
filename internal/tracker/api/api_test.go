package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	server := NewServer(store, log.New(discard{}, "", 0))
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func seedAPI(t *testing.T, store *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	if err := store.UpsertHeroes(ctx, []domain.Hero{{ID: 1, Name: "Abrams", IconKey: "hero_atlas"}}); err != nil {
		t.Fatalf("seed heroes: %v", err)
	}
	if err := store.UpsertAbilities(ctx, []domain.Ability{{ID: 100, Name: "Siphon Life", HeroID: 1}}); err != nil {
		t.Fatalf("seed abilities: %v", err)
	}
	if err := store.UpsertShopItems(ctx, []domain.ShopItem{
		{ID: 10, Name: "Basic Magazine", Type: domain.ItemTypeWeapon, Cost: 500},
		{ID: 11, Name: "Titanic Magazine", Type: domain.ItemTypeWeapon, Cost: 3000},
	}); err != nil {
		t.Fatalf("seed items: %v", err)
	}
	if err := store.ReplaceUpgradeEdges(ctx, []domain.UpgradeEdge{{FromItem: 10, ToItem: 11}}); err != nil {
		t.Fatalf("seed edges: %v", err)
	}
	if err := store.UpsertAccount(ctx, domain.Account{ID: 5, Username: "alpha", Notable: true}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if err := store.UpsertAccount(ctx, domain.Account{ID: 6, Username: "bravo"}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	match := domain.Match{
		ID:        900,
		StartedAt: time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC),
		Duration:  31*time.Minute + 40*time.Second,
	}
	if err := store.UpsertMatch(ctx, match); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	for _, perf := range []domain.Performance{
		{AccountID: 5, MatchID: 900, Kills: 9, Deaths: 3, Assists: 12, NetWorth: 40000, Team: 0, Win: true},
		{AccountID: 6, MatchID: 900, Kills: 2, Deaths: 8, Assists: 4, NetWorth: 21000, Team: 1},
	} {
		if _, err := store.UpsertPerformance(ctx, perf); err != nil {
			t.Fatalf("seed performance: %v", err)
		}
	}
	if err := store.ReplaceTimeline(ctx, 900, 5,
		[]domain.ItemPurchase{{AccountID: 5, MatchID: 900, ItemID: 10, GameTime: 30}},
		[]domain.AbilityUpgrade{{AccountID: 5, MatchID: 900, AbilityID: 100, GameTime: 10}},
	); err != nil {
		t.Fatalf("seed timeline: %v", err)
	}
	if err := store.ReplaceTimeline(ctx, 900, 6,
		[]domain.ItemPurchase{{AccountID: 6, MatchID: 900, ItemID: 11, GameTime: 50}},
		nil,
	); err != nil {
		t.Fatalf("seed timeline: %v", err)
	}
	// A player discovered only through match metadata: timeline rows but
	// no performance row.
	if _, err := store.EnsureAccount(ctx, 7); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	if err := store.ReplaceTimeline(ctx, 900, 7,
		[]domain.ItemPurchase{{AccountID: 7, MatchID: 900, ItemID: 10, GameTime: 70}},
		nil,
	); err != nil {
		t.Fatalf("seed timeline: %v", err)
	}
}

func getJSON(t *testing.T, url string, target any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if target != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	var body map[string]string
	if status := getJSON(t, ts.URL+"/healthz", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestListMatchesAndRange(t *testing.T) {
	ts, store := newTestServer(t)
	seedAPI(t, store)

	var matches []map[string]any
	if status := getJSON(t, ts.URL+"/api/matches", &matches); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d", len(matches))
	}
	if matches[0]["duration"] != "31:40" {
		t.Fatalf("duration = %v, want 31:40", matches[0]["duration"])
	}

	// The seeded match is long past any 30 day window.
	if status := getJSON(t, ts.URL+"/api/matches?range=30d", &matches); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(matches) != 0 {
		t.Fatalf("len(matches) in window = %d, want 0", len(matches))
	}

	if status := getJSON(t, ts.URL+"/api/matches?range=soon", nil); status != http.StatusBadRequest {
		t.Fatalf("bad range status = %d, want 400", status)
	}
}

func TestGetMatchNotFound(t *testing.T) {
	ts, store := newTestServer(t)
	seedAPI(t, store)

	if status := getJSON(t, ts.URL+"/api/matches/999", nil); status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if status := getJSON(t, ts.URL+"/api/matches/banana", nil); status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestMatchPlayersAndNotable(t *testing.T) {
	ts, store := newTestServer(t)
	seedAPI(t, store)

	var players []map[string]any
	if status := getJSON(t, ts.URL+"/api/matches/900/players", &players); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(players) != 2 {
		t.Fatalf("len(players) = %d, want 2", len(players))
	}

	if status := getJSON(t, ts.URL+"/api/matches/900/notable-players", &players); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(players) != 1 {
		t.Fatalf("len(notable players) = %d, want 1", len(players))
	}
	if players[0]["username"] != "alpha" || players[0]["is_win"] != true {
		t.Fatalf("notable player = %v", players[0])
	}
}

func TestMatchEventsTimeline(t *testing.T) {
	ts, store := newTestServer(t)
	seedAPI(t, store)

	var body struct {
		MatchID int64            `json:"match_id"`
		Count   int              `json:"count"`
		Events  []map[string]any `json:"events"`
	}
	if status := getJSON(t, ts.URL+"/api/matches/900/events", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body.MatchID != 900 || body.Count != 4 || len(body.Events) != 4 {
		t.Fatalf("envelope = %+v", body)
	}
	// Ability upgrade at t=10 precedes the purchases.
	if body.Events[0]["kind"] != "ability" || body.Events[1]["kind"] != "item" {
		t.Fatalf("event order = %v", body.Events)
	}
	// Account 7 has no performance row; its timeline still shows.
	if body.Events[3]["account_id"] != float64(7) {
		t.Fatalf("last event = %v, want account 7", body.Events[3])
	}

	if status := getJSON(t, ts.URL+"/api/matches/900/events?account_id=6", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body.Count != 1 || len(body.Events) != 1 {
		t.Fatalf("account 6 events = %v, want one", body.Events)
	}

	// The notable filter accepts the usual truthy spellings.
	for _, raw := range []string{"1", "true", "t", "yes", "y", "YES"} {
		if status := getJSON(t, ts.URL+"/api/matches/900/events?notable_only="+raw, &body); status != http.StatusOK {
			t.Fatalf("notable_only=%s status = %d", raw, status)
		}
		if body.Count != 2 {
			t.Fatalf("notable_only=%s count = %d, want 2", raw, body.Count)
		}
	}
}

func TestHeroAndItemDetail(t *testing.T) {
	ts, store := newTestServer(t)
	seedAPI(t, store)

	var hero struct {
		Name      string `json:"name"`
		Abilities []struct {
			AbilityID int64 `json:"ability_id"`
		} `json:"abilities"`
	}
	if status := getJSON(t, ts.URL+"/api/heroes/1", &hero); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if hero.Name != "Abrams" || len(hero.Abilities) != 1 {
		t.Fatalf("hero = %+v", hero)
	}

	var item struct {
		Name       string `json:"name"`
		UpgradesTo []struct {
			ItemID int64 `json:"item_id"`
		} `json:"upgrades_to"`
		UpgradesFrom []struct {
			ItemID int64 `json:"item_id"`
		} `json:"upgrades_from"`
	}
	if status := getJSON(t, ts.URL+"/api/items/10", &item); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(item.UpgradesTo) != 1 || item.UpgradesTo[0].ItemID != 11 {
		t.Fatalf("item 10 upgrades_to = %+v", item)
	}
	if status := getJSON(t, ts.URL+"/api/items/11", &item); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(item.UpgradesFrom) != 1 || item.UpgradesFrom[0].ItemID != 10 {
		t.Fatalf("item 11 upgrades_from = %+v", item)
	}
}

func TestPlayersEndpoints(t *testing.T) {
	ts, store := newTestServer(t)
	seedAPI(t, store)

	var players []map[string]any
	if status := getJSON(t, ts.URL+"/api/players?notable=true", &players); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(players) != 1 || players[0]["username"] != "alpha" {
		t.Fatalf("notable players = %v", players)
	}

	var matches []map[string]any
	if status := getJSON(t, ts.URL+"/api/players/5/matches", &matches); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(matches) != 1 || matches[0]["is_win"] != true {
		t.Fatalf("player matches = %v", matches)
	}

	if status := getJSON(t, ts.URL+"/api/players/12345", nil); status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
}

func TestMatchStats(t *testing.T) {
	ts, store := newTestServer(t)
	seedAPI(t, store)

	var stats map[string]int64
	if status := getJSON(t, ts.URL+"/api/matches/stats", &stats); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if stats["matches"] != 1 || stats["player_performances"] != 2 || stats["shop_items"] != 2 {
		t.Fatalf("stats = %v", stats)
	}
}
