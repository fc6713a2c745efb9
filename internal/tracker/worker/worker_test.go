package worker

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/deadlock-tools/tracker/internal/deadlock"
	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

type fakeClient struct {
	esports    []deadlock.EsportsMatch
	esportsErr error
	metadata   map[int64]deadlock.MatchMetadata
	history    map[int64][]deadlock.MatchHistoryEntry
}

func (f *fakeClient) EsportsMatches(ctx context.Context) ([]deadlock.EsportsMatch, error) {
	return f.esports, f.esportsErr
}

func (f *fakeClient) MatchMetadata(ctx context.Context, matchID int64) (deadlock.MatchMetadata, error) {
	return f.metadata[matchID], nil
}

func (f *fakeClient) PlayerMatchHistory(ctx context.Context, accountID int64, onlyStoredHistory bool) ([]deadlock.MatchHistoryEntry, error) {
	return f.history[accountID], nil
}

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func quietLogger() *log.Logger {
	return log.New(discard{}, "", 0)
}

func TestSyncOnceRunsAllStages(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.UpsertShopItems(ctx, []domain.ShopItem{
		{ID: 10, Name: "Basic Magazine", Type: domain.ItemTypeWeapon, Cost: 500},
	}); err != nil {
		t.Fatalf("seed items: %v", err)
	}

	client := &fakeClient{
		esports: []deadlock.EsportsMatch{{MatchID: 100, Status: deadlock.MatchStatusCompleted}},
		metadata: map[int64]deadlock.MatchMetadata{
			100: {MatchInfo: deadlock.MatchInfo{Players: []deadlock.MetadataPlayer{
				{AccountID: 7, Items: []deadlock.ItemEvent{{ItemID: 10, GameTimeS: 30}}},
			}}},
		},
		history: map[int64][]deadlock.MatchHistoryEntry{
			7: {{
				AccountID:      7,
				MatchID:        100,
				StartTime:      time.Now().Add(-time.Hour).Unix(),
				MatchDurationS: 1800,
				PlayerKills:    4,
				PlayerTeam:     0,
				MatchResult:    0,
			}},
		},
	}

	w := New(client, store, Config{}, quietLogger())
	if err := w.syncOnce(ctx); err != nil {
		t.Fatalf("sync once: %v", err)
	}

	account, err := store.GetAccount(ctx, 7)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !account.Notable {
		t.Fatal("account should be notable")
	}
	if _, err := store.GetMatch(ctx, 100); err != nil {
		t.Fatalf("get match: %v", err)
	}
	items, err := store.ListItemPurchases(ctx, 100, 7)
	if err != nil {
		t.Fatalf("list purchases: %v", err)
	}
	if len(items) != 1 || items[0].ItemID != 10 {
		t.Fatalf("purchases = %+v", items)
	}
}

func TestSyncOnceEmptyUpstreamIsNotFatal(t *testing.T) {
	store := openTestStore(t)
	w := New(&fakeClient{}, store, Config{}, quietLogger())
	if err := w.syncOnce(context.Background()); err != nil {
		t.Fatalf("sync once: %v", err)
	}
}

func TestSyncOnceFetchFailurePropagates(t *testing.T) {
	store := openTestStore(t)
	client := &fakeClient{esportsErr: errors.New("upstream down")}
	w := New(client, store, Config{}, quietLogger())
	if err := w.syncOnce(context.Background()); err == nil {
		t.Fatal("expected upstream error")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := openTestStore(t)
	w := New(&fakeClient{}, store, Config{PollInterval: time.Minute}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("run err = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestConfigNormalizedDefaults(t *testing.T) {
	cfg := Config{}.normalized()
	if cfg.PollInterval != defaultPollInterval {
		t.Fatalf("poll interval = %v", cfg.PollInterval)
	}
}
