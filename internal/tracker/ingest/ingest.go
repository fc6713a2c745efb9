// Package ingest pulls match data from the upstream data API into tracker
// storage. Each job is idempotent: re-running it against the same upstream
// state leaves the database unchanged.
package ingest

import (
	"context"
	"log"

	"github.com/deadlock-tools/tracker/internal/deadlock"
)

// DataClient is the slice of the upstream API the ingestion jobs consume.
type DataClient interface {
	EsportsMatches(ctx context.Context) ([]deadlock.EsportsMatch, error)
	MatchMetadata(ctx context.Context, matchID int64) (deadlock.MatchMetadata, error)
	PlayerMatchHistory(ctx context.Context, accountID int64, onlyStoredHistory bool) ([]deadlock.MatchHistoryEntry, error)
}

func ensureLogger(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}
	return log.Default()
}
