package resetdynamic

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.db")
	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.UpsertAccount(ctx, domain.Account{ID: 5, Username: "alpha"}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if err := store.UpsertMatch(ctx, domain.Match{ID: 900, StartedAt: time.Now(), Duration: time.Hour}); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	if _, err := store.UpsertPerformance(ctx, domain.Performance{AccountID: 5, MatchID: 900}); err != nil {
		t.Fatalf("seed performance: %v", err)
	}
	return path
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("reset-dynamic", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/tracker.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.Yes {
		t.Fatal("yes should default to false")
	}
}

func TestRun_DryRunKeepsRows(t *testing.T) {
	path := seedDB(t)

	var out bytes.Buffer
	if err := Run(context.Background(), Config{DBPath: path}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "matches:") {
		t.Fatalf("output missing counts: %q", out.String())
	}
	if !strings.Contains(out.String(), "-yes") {
		t.Fatalf("output missing dry-run notice: %q", out.String())
	}

	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()
	counts, err := store.Counts(context.Background())
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Matches != 1 || counts.Performances != 1 {
		t.Fatalf("rows deleted on dry run: %+v", counts)
	}
}

func TestRun_YesDeletesDynamicRows(t *testing.T) {
	path := seedDB(t)

	var out bytes.Buffer
	if err := Run(context.Background(), Config{DBPath: path, Yes: true}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "cleared") {
		t.Fatalf("output missing confirmation: %q", out.String())
	}

	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()
	counts, err := store.Counts(context.Background())
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Matches != 0 || counts.Performances != 0 {
		t.Fatalf("dynamic rows remain: %+v", counts)
	}
	// Accounts are reference data and survive the reset.
	if counts.Accounts != 1 {
		t.Fatalf("accounts = %d, want 1", counts.Accounts)
	}
}
