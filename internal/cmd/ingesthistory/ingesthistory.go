// Package ingesthistory parses ingest-history command flags and pulls
// per-account match history.
package ingesthistory

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/deadlock-tools/tracker/internal/deadlock"
	entrypoint "github.com/deadlock-tools/tracker/internal/platform/cmd"
	"github.com/deadlock-tools/tracker/internal/tracker/ingest"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

// Config holds ingest-history command configuration.
type Config struct {
	DBPath          string `env:"TRACKER_INGEST_HISTORY_DB_PATH" envDefault:"data/tracker.db"`
	BaseURL         string `env:"TRACKER_INGEST_HISTORY_BASE_URL"`
	SinceDays       int    `env:"TRACKER_INGEST_HISTORY_SINCE_DAYS"`
	MaxMatches      int    `env:"TRACKER_INGEST_HISTORY_MAX_MATCHES"`
	IncludeUnstored bool   `env:"TRACKER_INGEST_HISTORY_INCLUDE_UNSTORED"`

	AccountIDs  []int64 `env:"-"`
	AllAccounts bool    `env:"-"`
}

// idListFlag collects a repeatable int64 flag.
type idListFlag struct {
	ids *[]int64
}

func (f idListFlag) String() string {
	if f.ids == nil {
		return ""
	}
	parts := make([]string, 0, len(*f.ids))
	for _, id := range *f.ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

func (f idListFlag) Set(value string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", value)
	}
	*f.ids = append(*f.ids, id)
	return nil
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The tracker SQLite database path")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Override the data API base URL")
	fs.IntVar(&cfg.SinceDays, "since-days", cfg.SinceDays, "Drop history entries older than this many days (0 = no cutoff)")
	fs.IntVar(&cfg.MaxMatches, "max-matches", cfg.MaxMatches, "Cap on entries ingested per account (0 = no cap)")
	fs.BoolVar(&cfg.IncludeUnstored, "include-unstored", cfg.IncludeUnstored, "Ask upstream for entries beyond its stored history window")
	fs.Var(idListFlag{ids: &cfg.AccountIDs}, "account-id", "Account to ingest (repeatable)")
	fs.BoolVar(&cfg.AllAccounts, "all-accounts", cfg.AllAccounts, "Ingest every notable account in the store")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if len(cfg.AccountIDs) == 0 && !cfg.AllAccounts {
		return Config{}, fmt.Errorf("pass -account-id or -all-accounts")
	}
	if len(cfg.AccountIDs) > 0 && cfg.AllAccounts {
		return Config{}, fmt.Errorf("-account-id and -all-accounts are mutually exclusive")
	}
	return cfg, nil
}

// Run ingests match history for the selected accounts.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceIngestHistory, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open tracker sqlite store: %w", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				log.Printf("close tracker sqlite store: %v", closeErr)
			}
		}()

		client := deadlock.New(deadlock.Config{BaseURL: cfg.BaseURL})
		result, err := ingest.PlayerHistory(ctx, client, store, ingest.HistoryOptions{
			AccountIDs:      cfg.AccountIDs,
			SinceDays:       cfg.SinceDays,
			MaxMatches:      cfg.MaxMatches,
			IncludeUnstored: cfg.IncludeUnstored,
		}, log.Default())
		if err != nil {
			return err
		}
		log.Printf("history: %d accounts processed (%d failed), %d matches, %d performances, %d entries skipped",
			result.AccountsProcessed, result.AccountsFailed,
			result.MatchesUpserted, result.PerformancesInserted, result.EntriesSkipped)
		return nil
	})
}
