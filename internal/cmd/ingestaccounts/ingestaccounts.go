// Package ingestaccounts parses ingest-accounts command flags and scans
// esports matches for notable accounts.
package ingestaccounts

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/deadlock-tools/tracker/internal/deadlock"
	entrypoint "github.com/deadlock-tools/tracker/internal/platform/cmd"
	"github.com/deadlock-tools/tracker/internal/tracker/ingest"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

// Config holds ingest-accounts command configuration.
type Config struct {
	DBPath     string `env:"TRACKER_INGEST_ACCOUNTS_DB_PATH" envDefault:"data/tracker.db"`
	BaseURL    string `env:"TRACKER_INGEST_ACCOUNTS_BASE_URL"`
	MaxMatches int    `env:"TRACKER_INGEST_ACCOUNTS_MAX_MATCHES"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The tracker SQLite database path")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Override the data API base URL")
	fs.IntVar(&cfg.MaxMatches, "max-matches", cfg.MaxMatches, "Cap on completed matches scanned (0 = no cap)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run scans completed esports matches and registers their accounts.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceIngestAccounts, func(ctx context.Context) error {
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
		result, err := ingest.EsportsAccounts(ctx, client, store, ingest.AccountsOptions{
			MaxMatches: cfg.MaxMatches,
		}, log.Default())
		if err != nil {
			return err
		}
		log.Printf("scanned %d matches (%d skipped, %d failed): %d accounts seen, %d created",
			result.MatchesScanned, result.MatchesSkipped, result.MatchesFailed,
			result.AccountsSeen, result.AccountsCreated)
		return nil
	})
}
