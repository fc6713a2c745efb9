package ingest

import (
	"context"
	"log"

	"github.com/deadlock-tools/tracker/internal/deadlock"
	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
	"github.com/deadlock-tools/tracker/internal/tracker/observability"
	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

// AccountsOptions controls an esports account scan.
type AccountsOptions struct {
	// MaxMatches caps how many completed matches are scanned. Zero means
	// no cap.
	MaxMatches int
}

// AccountsResult summarizes one esports account scan.
type AccountsResult struct {
	MatchesScanned  int
	MatchesSkipped  int
	MatchesFailed   int
	AccountsSeen    int
	AccountsCreated int
}

// EsportsAccounts scans completed esports matches and registers every
// participating account as notable. Accounts already known keep their
// curated usernames; new ones get a placeholder.
func EsportsAccounts(ctx context.Context, client DataClient, store storage.Store, opts AccountsOptions, logger *log.Logger) (AccountsResult, error) {
	logger = ensureLogger(logger)

	var result AccountsResult
	matches, err := client.EsportsMatches(ctx)
	if err != nil {
		return result, apperrors.Wrap(apperrors.CodeIngestFetchFailed, "list esports matches", err)
	}

	seen := make(map[int64]struct{})
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if match.Status != deadlock.MatchStatusCompleted {
			result.MatchesSkipped++
			continue
		}
		if opts.MaxMatches > 0 && result.MatchesScanned >= opts.MaxMatches {
			result.MatchesSkipped++
			continue
		}
		metadata, err := client.MatchMetadata(ctx, match.MatchID)
		if err != nil {
			// One unavailable match must not sink the whole scan.
			logger.Printf("skipping esports match %d: %v", match.MatchID, err)
			observability.IngestFailuresTotal.WithLabelValues("esports_accounts").Inc()
			result.MatchesFailed++
			continue
		}
		result.MatchesScanned++
		for _, player := range metadata.MatchInfo.Players {
			if player.AccountID == 0 {
				continue
			}
			if _, ok := seen[player.AccountID]; ok {
				continue
			}
			seen[player.AccountID] = struct{}{}
			result.AccountsSeen++
			created, err := store.EnsureAccount(ctx, player.AccountID)
			if err != nil {
				return result, err
			}
			if created {
				result.AccountsCreated++
			}
			if err := store.MarkNotable(ctx, player.AccountID); err != nil {
				return result, err
			}
		}
	}

	logger.Printf("esports scan: %d matches scanned, %d skipped, %d failed, %d accounts (%d new)",
		result.MatchesScanned, result.MatchesSkipped, result.MatchesFailed,
		result.AccountsSeen, result.AccountsCreated)
	return result, nil
}
