package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/observability"
	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

// HistoryOptions controls a match-history ingestion run.
type HistoryOptions struct {
	// AccountIDs limits the run to specific accounts. Empty means every
	// notable account in storage.
	AccountIDs []int64
	// SinceDays drops history entries older than this many days. Zero
	// means no age cutoff.
	SinceDays int
	// MaxMatches caps how many entries are ingested per account. Zero
	// means no cap.
	MaxMatches int
	// IncludeUnstored asks the upstream API for entries beyond its stored
	// history window.
	IncludeUnstored bool
	// Now overrides the clock in tests.
	Now func() time.Time
}

// HistoryResult summarizes one match-history ingestion run.
type HistoryResult struct {
	AccountsProcessed    int
	AccountsFailed       int
	MatchesUpserted      int
	PerformancesInserted int
	EntriesSkipped       int
}

// PlayerHistory pulls stored match history for the target accounts and
// persists matches and per-player results. Matches and performances are
// upserted so re-runs converge on the latest upstream stats.
func PlayerHistory(ctx context.Context, client DataClient, store storage.Store, opts HistoryOptions, logger *log.Logger) (HistoryResult, error) {
	logger = ensureLogger(logger)
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var result HistoryResult
	targets, err := historyTargets(ctx, store, opts.AccountIDs)
	if err != nil {
		return result, err
	}
	if len(targets) == 0 {
		return result, apperrors.New(apperrors.CodeIngestNoTargets, "no accounts to ingest history for")
	}

	rankIDs, err := rankIDSet(ctx, store)
	if err != nil {
		return result, err
	}

	var cutoff time.Time
	if opts.SinceDays > 0 {
		cutoff = now().UTC().AddDate(0, 0, -opts.SinceDays)
	}

	for _, accountID := range targets {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		entries, err := client.PlayerMatchHistory(ctx, accountID, !opts.IncludeUnstored)
		if err != nil {
			logger.Printf("skipping account %d: %v", accountID, err)
			observability.IngestFailuresTotal.WithLabelValues("player_history").Inc()
			result.AccountsFailed++
			continue
		}
		result.AccountsProcessed++

		ingested := 0
		for _, entry := range entries {
			if opts.MaxMatches > 0 && ingested >= opts.MaxMatches {
				result.EntriesSkipped++
				continue
			}
			startedAt := time.Unix(entry.StartTime, 0).UTC()
			if !cutoff.IsZero() && startedAt.Before(cutoff) {
				result.EntriesSkipped++
				continue
			}

			match := domain.Match{
				ID:        entry.MatchID,
				StartedAt: startedAt,
				Duration:  time.Duration(entry.MatchDurationS) * time.Second,
			}
			if entry.AverageMatchBadge > 0 {
				tier := int(entry.AverageMatchBadge / 10)
				if _, ok := rankIDs[tier]; ok {
					match.AvgRankID = &tier
				}
			}
			if err := store.UpsertMatch(ctx, match); err != nil {
				return result, err
			}
			result.MatchesUpserted++
			observability.MatchesIngestedTotal.Inc()

			created, err := store.UpsertPerformance(ctx, domain.Performance{
				AccountID: accountID,
				MatchID:   entry.MatchID,
				Kills:     entry.PlayerKills,
				Deaths:    entry.PlayerDeaths,
				Assists:   entry.PlayerAssists,
				NetWorth:  entry.NetWorth,
				Team:      entry.PlayerTeam,
				Win:       domain.IsWin(entry.PlayerTeam, entry.MatchResult),
			})
			if err != nil {
				return result, err
			}
			if created {
				result.PerformancesInserted++
				observability.PerformancesIngestedTotal.Inc()
			}
			ingested++
		}
	}

	logger.Printf("history ingest: %d accounts (%d failed), %d matches, %d performances, %d entries skipped",
		result.AccountsProcessed, result.AccountsFailed,
		result.MatchesUpserted, result.PerformancesInserted, result.EntriesSkipped)
	return result, nil
}

func historyTargets(ctx context.Context, store storage.Store, explicit []int64) ([]int64, error) {
	if len(explicit) > 0 {
		for _, accountID := range explicit {
			if _, err := store.EnsureAccount(ctx, accountID); err != nil {
				return nil, err
			}
		}
		return explicit, nil
	}
	accounts, err := store.ListAccounts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list notable accounts: %w", err)
	}
	targets := make([]int64, 0, len(accounts))
	for _, account := range accounts {
		targets = append(targets, account.ID)
	}
	return targets, nil
}

func rankIDSet(ctx context.Context, store storage.Store) (map[int]struct{}, error) {
	ranks, err := store.ListRanks(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[int]struct{}, len(ranks))
	for _, rank := range ranks {
		set[rank.ID] = struct{}{}
	}
	return set, nil
}
