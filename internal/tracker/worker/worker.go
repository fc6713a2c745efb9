// Package worker runs the background sync loop that keeps the tracker
// database current: esports accounts, then match history, then match
// timelines, on a poll interval.
package worker

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
	"github.com/deadlock-tools/tracker/internal/tracker/ingest"
	"github.com/deadlock-tools/tracker/internal/tracker/observability"
	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

const defaultPollInterval = time.Hour

// Config controls sync loop behavior.
type Config struct {
	// PollInterval is the time between sync cycles.
	PollInterval time.Duration
	// SinceDays drops history entries older than this many days.
	SinceDays int
	// MaxMatches caps the targets scanned per ingestion stage.
	MaxMatches int
}

func (c Config) normalized() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	return c
}

// Worker drives periodic ingestion against one store.
type Worker struct {
	client ingest.DataClient
	store  storage.Store
	cfg    Config
	logger *log.Logger
}

// New builds a sync worker. A nil logger discards output.
func New(client ingest.DataClient, store storage.Store, cfg Config, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Worker{client: client, store: store, cfg: cfg.normalized(), logger: logger}
}

// Run executes sync cycles until the context ends. The first cycle starts
// immediately. Cycle failures are logged and never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

// cycle runs one accounts, history, events pass and records its outcome.
func (w *Worker) cycle(ctx context.Context) {
	start := time.Now()
	err := w.syncOnce(ctx)
	observability.SyncDurationSeconds.Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
		observability.SyncRunsTotal.WithLabelValues("ok").Inc()
		w.logger.Printf("sync cycle finished in %s", time.Since(start).Round(time.Millisecond))
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		observability.SyncRunsTotal.WithLabelValues("canceled").Inc()
	default:
		observability.SyncRunsTotal.WithLabelValues("error").Inc()
		w.logger.Printf("sync cycle failed: %v", err)
	}
}

func (w *Worker) syncOnce(ctx context.Context) error {
	accounts, err := ingest.EsportsAccounts(ctx, w.client, w.store, ingest.AccountsOptions{
		MaxMatches: w.cfg.MaxMatches,
	}, w.logger)
	if err != nil {
		return err
	}
	w.logger.Printf("sync accounts: %d seen, %d created", accounts.AccountsSeen, accounts.AccountsCreated)

	history, err := ingest.PlayerHistory(ctx, w.client, w.store, ingest.HistoryOptions{
		SinceDays:  w.cfg.SinceDays,
		MaxMatches: w.cfg.MaxMatches,
	}, w.logger)
	if err != nil {
		// An empty account table just means the esports scan found
		// nothing yet; try again next cycle.
		if apperrors.CodeOf(err) == apperrors.CodeIngestNoTargets {
			w.logger.Printf("sync history: no accounts yet")
			return nil
		}
		return err
	}
	w.logger.Printf("sync history: %d matches, %d performances", history.MatchesUpserted, history.PerformancesInserted)

	events, err := ingest.MatchEvents(ctx, w.client, w.store, ingest.EventsOptions{
		MaxMatches: w.cfg.MaxMatches,
	}, w.logger)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeIngestNoTargets {
			w.logger.Printf("sync events: no timelines yet")
			return nil
		}
		return err
	}
	w.logger.Printf("sync events: %d items, %d abilities", events.ItemsInserted, events.AbilitiesInserted)
	return nil
}
