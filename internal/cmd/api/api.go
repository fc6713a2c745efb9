// Package api parses api command flags and launches the read-only JSON API.
package api

import (
	"context"
	"flag"
	"fmt"
	"log"

	entrypoint "github.com/deadlock-tools/tracker/internal/platform/cmd"
	trackerapi "github.com/deadlock-tools/tracker/internal/tracker/api"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

// Config holds api command configuration.
type Config struct {
	Port   int    `env:"TRACKER_API_PORT" envDefault:"8080"`
	DBPath string `env:"TRACKER_API_DB_PATH" envDefault:"data/tracker.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The API HTTP server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The tracker SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the API server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAPI, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open tracker sqlite store: %w", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				log.Printf("close tracker sqlite store: %v", closeErr)
			}
		}()

		server := trackerapi.NewServer(store, log.Default())
		return trackerapi.Serve(ctx, fmt.Sprintf(":%d", cfg.Port), server.Handler(), log.Default())
	})
}
