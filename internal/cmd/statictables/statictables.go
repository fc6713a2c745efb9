// Package statictables parses static-tables command flags and fetches the
// assets API reference dumps.
package statictables

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/deadlock-tools/tracker/internal/deadlock"
	entrypoint "github.com/deadlock-tools/tracker/internal/platform/cmd"
	"github.com/deadlock-tools/tracker/internal/tracker/staticdata"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

// Config holds static-tables command configuration.
type Config struct {
	OutDir        string `env:"TRACKER_STATIC_TABLES_OUT_DIR" envDefault:"data/dumps"`
	DBPath        string `env:"TRACKER_STATIC_TABLES_DB_PATH" envDefault:"data/tracker.db"`
	AssetsBaseURL string `env:"TRACKER_STATIC_TABLES_ASSETS_BASE_URL"`
	Load          bool   `env:"TRACKER_STATIC_TABLES_LOAD"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "Directory the JSON dumps are written to")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The tracker SQLite database path")
	fs.StringVar(&cfg.AssetsBaseURL, "assets-base-url", cfg.AssetsBaseURL, "Override the assets API base URL")
	fs.BoolVar(&cfg.Load, "load", cfg.Load, "Also upsert heroes, abilities, and ranks into the store")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run fetches the reference dumps and optionally loads them into the store.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStaticTables, func(ctx context.Context) error {
		client := deadlock.New(deadlock.Config{AssetsBaseURL: cfg.AssetsBaseURL})

		dumps, err := staticdata.WriteDumps(ctx, client, cfg.OutDir, log.Default())
		if err != nil {
			return err
		}
		log.Printf("wrote %d dump files to %s (%d failed)", len(dumps.Written), cfg.OutDir, len(dumps.Failed))

		if !cfg.Load {
			return nil
		}
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open tracker sqlite store: %w", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				log.Printf("close tracker sqlite store: %v", closeErr)
			}
		}()

		loaded, err := staticdata.LoadReference(ctx, client, store, log.Default())
		if err != nil {
			return err
		}
		log.Printf("loaded %d heroes, %d abilities, %d ranks (%d orphaned abilities dropped)",
			loaded.Heroes, loaded.Abilities, loaded.Ranks, loaded.OrphanedAbilities)
		return nil
	})
}
