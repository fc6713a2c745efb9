// Package syncworker parses syncworker command flags and launches the
// background sync daemon.
package syncworker

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/deadlock-tools/tracker/internal/platform/cmd"
	"github.com/deadlock-tools/tracker/internal/tracker/worker"
)

// Config holds syncworker command configuration.
type Config struct {
	Port         int           `env:"TRACKER_SYNCWORKER_PORT" envDefault:"8090"`
	DBPath       string        `env:"TRACKER_SYNCWORKER_DB_PATH" envDefault:"data/tracker.db"`
	BaseURL      string        `env:"TRACKER_SYNCWORKER_BASE_URL"`
	PollInterval time.Duration `env:"TRACKER_SYNCWORKER_POLL_INTERVAL" envDefault:"1h"`
	SinceDays    int           `env:"TRACKER_SYNCWORKER_SINCE_DAYS" envDefault:"30"`
	MaxMatches   int           `env:"TRACKER_SYNCWORKER_MAX_MATCHES"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The syncworker health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The tracker SQLite database path")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Override the data API base URL")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Time between sync cycles")
	fs.IntVar(&cfg.SinceDays, "since-days", cfg.SinceDays, "Drop history entries older than this many days (0 = no cutoff)")
	fs.IntVar(&cfg.MaxMatches, "max-matches", cfg.MaxMatches, "Cap on targets per ingestion stage (0 = no cap)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the syncworker runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSyncWorker, func(context.Context) error {
		return worker.Run(ctx, worker.RuntimeConfig{
			Port:         cfg.Port,
			DBPath:       cfg.DBPath,
			BaseURL:      cfg.BaseURL,
			PollInterval: cfg.PollInterval,
			SinceDays:    cfg.SinceDays,
			MaxMatches:   cfg.MaxMatches,
		})
	})
}
