// Package ingestevents parses ingest-events command flags and pulls match
// timelines.
package ingestevents

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

const defaultProgressEvery = 25

// Config holds ingest-events command configuration.
type Config struct {
	DBPath        string `env:"TRACKER_INGEST_EVENTS_DB_PATH" envDefault:"data/tracker.db"`
	BaseURL       string `env:"TRACKER_INGEST_EVENTS_BASE_URL"`
	Limit         int    `env:"TRACKER_INGEST_EVENTS_LIMIT"`
	Replace       bool   `env:"TRACKER_INGEST_EVENTS_REPLACE"`
	ProgressEvery int    `env:"TRACKER_INGEST_EVENTS_PROGRESS_EVERY" envDefault:"25"`

	MatchIDs   []int64 `env:"-"`
	AllMatches bool    `env:"-"`
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
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "Cap on matches processed (0 = no cap)")
	fs.BoolVar(&cfg.Replace, "replace", cfg.Replace, "Re-fetch timelines that already exist in the store")
	fs.IntVar(&cfg.ProgressEvery, "progress-every", cfg.ProgressEvery, "Emit a progress line after this many matches (0 = off)")
	fs.Var(idListFlag{ids: &cfg.MatchIDs}, "match-id", "Match to ingest (repeatable)")
	fs.BoolVar(&cfg.AllMatches, "all-matches", cfg.AllMatches, "Ingest every stored match")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if len(cfg.MatchIDs) == 0 && !cfg.AllMatches {
		return Config{}, fmt.Errorf("pass -match-id or -all-matches")
	}
	if len(cfg.MatchIDs) > 0 && cfg.AllMatches {
		return Config{}, fmt.Errorf("-match-id and -all-matches are mutually exclusive")
	}
	if cfg.ProgressEvery < 0 {
		cfg.ProgressEvery = defaultProgressEvery
	}
	return cfg, nil
}

// Run ingests item and ability timelines for the selected matches.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceIngestEvents, func(ctx context.Context) error {
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
		result, err := ingest.MatchEvents(ctx, client, store, ingest.EventsOptions{
			MatchIDs:      cfg.MatchIDs,
			Replace:       cfg.Replace,
			MaxMatches:    cfg.Limit,
			ProgressEvery: cfg.ProgressEvery,
		}, log.Default())
		if err != nil {
			return err
		}
		log.Printf("events: %d matches processed (%d skipped, %d failed), %d items, %d abilities, %d unknown ids, %d duplicates dropped",
			result.MatchesProcessed, result.MatchesSkipped, result.MatchesFailed,
			result.ItemsInserted, result.AbilitiesInserted, result.UnknownIDs, result.DuplicatesDropped)
		return nil
	})
}
