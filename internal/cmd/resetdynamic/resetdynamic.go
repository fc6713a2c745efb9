// Package resetdynamic parses reset-dynamic command flags and clears the
// ingested match tables.
package resetdynamic

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"

	entrypoint "github.com/deadlock-tools/tracker/internal/platform/cmd"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

// Config holds reset-dynamic command configuration.
type Config struct {
	DBPath string `env:"TRACKER_RESET_DYNAMIC_DB_PATH" envDefault:"data/tracker.db"`

	Yes bool `env:"-"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The tracker SQLite database path")
	fs.BoolVar(&cfg.Yes, "yes", cfg.Yes, "Actually delete the dynamic rows")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run prints the dynamic table counts and, with -yes, deletes the rows
// children first. Reference tables are never touched.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceResetDynamic, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open tracker sqlite store: %w", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				log.Printf("close tracker sqlite store: %v", closeErr)
			}
		}()

		counts, err := store.Counts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "matches:              %d\n", counts.Matches)
		fmt.Fprintf(out, "player_performances:  %d\n", counts.Performances)
		fmt.Fprintf(out, "player_items:         %d\n", counts.ItemPurchases)
		fmt.Fprintf(out, "player_abilities:     %d\n", counts.AbilityUpgrades)

		if !cfg.Yes {
			fmt.Fprintln(out, "\ndry run; pass -yes to delete these rows")
			return nil
		}
		if err := store.ResetDynamic(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "\ndynamic tables cleared")
		return nil
	})
}
