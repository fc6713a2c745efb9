// Package shopimporter parses shop-importer command flags and imports the
// curated shop item tables.
package shopimporter

import (
	"context"
	"flag"
	"fmt"
	"log"

	entrypoint "github.com/deadlock-tools/tracker/internal/platform/cmd"
	"github.com/deadlock-tools/tracker/internal/tracker/importer"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

// Config holds shop-importer command configuration.
type Config struct {
	DBPath       string `env:"TRACKER_SHOP_IMPORTER_DB_PATH" envDefault:"data/tracker.db"`
	ItemsPath    string `env:"TRACKER_SHOP_IMPORTER_ITEMS_PATH" envDefault:"data/shop_items.csv"`
	UpgradesPath string `env:"TRACKER_SHOP_IMPORTER_UPGRADES_PATH" envDefault:"data/shop_items_upgrades.csv"`
	DryRun       bool   `env:"TRACKER_SHOP_IMPORTER_DRY_RUN"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The tracker SQLite database path")
	fs.StringVar(&cfg.ItemsPath, "items", cfg.ItemsPath, "Path to the shop items CSV")
	fs.StringVar(&cfg.UpgradesPath, "upgrades", cfg.UpgradesPath, "Path to the upgrade edges CSV")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Validate both files without writing to the store")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run validates and imports both curated CSV files.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceShopImporter, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open tracker sqlite store: %w", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				log.Printf("close tracker sqlite store: %v", closeErr)
			}
		}()

		result, err := importer.Run(ctx, store, importer.Options{
			ItemsPath:    cfg.ItemsPath,
			UpgradesPath: cfg.UpgradesPath,
			DryRun:       cfg.DryRun,
		}, log.Default())
		if err != nil {
			return err
		}
		if result.DryRun {
			log.Printf("dry run: %d items and %d upgrade edges validated", result.Items, result.Upgrades)
			return nil
		}
		log.Printf("imported %d items and %d upgrade edges", result.Items, result.Upgrades)
		return nil
	})
}
