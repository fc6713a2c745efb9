// Package mcp parses mcp command flags and serves the tracker tools over
// stdio.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"log"

	entrypoint "github.com/deadlock-tools/tracker/internal/platform/cmd"
	trackermcp "github.com/deadlock-tools/tracker/internal/tracker/mcp"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

// Config holds mcp command configuration.
type Config struct {
	DBPath string `env:"TRACKER_MCP_DB_PATH" envDefault:"data/tracker.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The tracker SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP stdio server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open tracker sqlite store: %w", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				log.Printf("close tracker sqlite store: %v", closeErr)
			}
		}()

		server := trackermcp.NewServer(store, log.Default())
		return server.Serve(ctx)
	})
}
