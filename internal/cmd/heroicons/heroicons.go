// Package heroicons parses hero-icons command flags and downloads per-hero
// images.
package heroicons

import (
	"context"
	"flag"
	"log"

	"github.com/deadlock-tools/tracker/internal/deadlock"
	entrypoint "github.com/deadlock-tools/tracker/internal/platform/cmd"
	"github.com/deadlock-tools/tracker/internal/tracker/staticdata"
)

// Config holds hero-icons command configuration.
type Config struct {
	OutDir        string `env:"TRACKER_HERO_ICONS_OUT_DIR" envDefault:"data/icons"`
	AssetsBaseURL string `env:"TRACKER_HERO_ICONS_ASSETS_BASE_URL"`
	Force         bool   `env:"TRACKER_HERO_ICONS_FORCE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "Directory the hero images are written to")
	fs.StringVar(&cfg.AssetsBaseURL, "assets-base-url", cfg.AssetsBaseURL, "Override the assets API base URL")
	fs.BoolVar(&cfg.Force, "force", cfg.Force, "Re-download images that already exist on disk")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run downloads the card and minimap image for every hero.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceHeroIcons, func(ctx context.Context) error {
		client := deadlock.New(deadlock.Config{AssetsBaseURL: cfg.AssetsBaseURL})
		result, err := staticdata.DownloadHeroIcons(ctx, client, staticdata.IconOptions{
			Dir:   cfg.OutDir,
			Force: cfg.Force,
		}, log.Default())
		if err != nil {
			return err
		}
		log.Printf("hero icons: %d downloaded, %d skipped, %d failed", result.Downloaded, result.Skipped, result.Failed)
		return nil
	})
}
