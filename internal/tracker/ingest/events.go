package ingest

import (
	"context"
	"log"
	"time"

	"github.com/deadlock-tools/tracker/internal/deadlock"
	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/observability"
	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

// EventsOptions controls a match-events ingestion run.
type EventsOptions struct {
	// MatchIDs limits the run to specific matches. Empty means every
	// stored match.
	MatchIDs []int64
	// Replace re-fetches timelines that already exist in storage.
	Replace bool
	// MaxMatches caps how many matches are processed. Zero means no cap.
	MaxMatches int
	// ProgressEvery emits a progress log line after this many matches.
	// Zero disables progress logging.
	ProgressEvery int
}

// EventsResult summarizes one match-events ingestion run.
type EventsResult struct {
	MatchesProcessed  int
	MatchesSkipped    int
	MatchesFailed     int
	ItemsInserted     int
	AbilitiesInserted int
	UnknownIDs        int
	DuplicatesDropped int
}

// MatchEvents fetches metadata for the selected matches and persists the
// item and ability timelines of every player in each match, creating
// placeholder accounts for players seen for the first time. Event ids
// absent from the reference tables are skipped and counted once per
// distinct id per match; a failed metadata fetch skips that match and
// continues.
func MatchEvents(ctx context.Context, client DataClient, store storage.Store, opts EventsOptions, logger *log.Logger) (EventsResult, error) {
	logger = ensureLogger(logger)

	var result EventsResult
	matchIDs, err := eventMatches(ctx, store, opts)
	if err != nil {
		return result, err
	}
	if len(matchIDs) == 0 {
		return result, apperrors.New(apperrors.CodeIngestNoTargets, "no match timelines to ingest")
	}

	itemIDs, err := store.ShopItemIDs(ctx)
	if err != nil {
		return result, err
	}
	abilityIDs, err := store.AbilityIDs(ctx)
	if err != nil {
		return result, err
	}

	started := time.Now()
	for i, matchID := range matchIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if opts.ProgressEvery > 0 && i > 0 && i%opts.ProgressEvery == 0 {
			elapsed := time.Since(started)
			remaining := time.Duration(float64(elapsed) / float64(i) * float64(len(matchIDs)-i))
			logger.Printf("events ingest: %d/%d matches, elapsed %s, eta %s",
				i, len(matchIDs), elapsed.Round(time.Second), remaining.Round(time.Second))
		}

		if !opts.Replace {
			has, err := store.HasTimeline(ctx, matchID)
			if err != nil {
				return result, err
			}
			if has {
				result.MatchesSkipped++
				continue
			}
		}

		metadata, err := client.MatchMetadata(ctx, matchID)
		if err != nil {
			logger.Printf("skipping match %d: %v", matchID, err)
			observability.IngestFailuresTotal.WithLabelValues("match_events").Inc()
			result.MatchesFailed++
			continue
		}

		unknown := make(map[int64]struct{})
		for _, player := range metadata.MatchInfo.Players {
			if player.AccountID == 0 {
				continue
			}
			if _, err := store.EnsureAccount(ctx, player.AccountID); err != nil {
				return result, err
			}
			classified := classifyPlayerEvents(player.AccountID, matchID, player.Items, itemIDs, abilityIDs, unknown)
			result.DuplicatesDropped += classified.duplicates
			if err := store.ReplaceTimeline(ctx, matchID, player.AccountID, classified.items, classified.abilities); err != nil {
				return result, err
			}
			result.ItemsInserted += len(classified.items)
			result.AbilitiesInserted += len(classified.abilities)
			observability.EventsIngestedTotal.WithLabelValues("item").Add(float64(len(classified.items)))
			observability.EventsIngestedTotal.WithLabelValues("ability").Add(float64(len(classified.abilities)))
		}
		result.UnknownIDs += len(unknown)
		if len(unknown) > 0 {
			observability.UnknownEventIDsTotal.WithLabelValues("event").Add(float64(len(unknown)))
		}
		result.MatchesProcessed++
	}

	logger.Printf("events ingest: %d matches processed, %d skipped, %d failed, %d items, %d abilities, %d unknown ids, %d duplicates",
		result.MatchesProcessed, result.MatchesSkipped, result.MatchesFailed,
		result.ItemsInserted, result.AbilitiesInserted, result.UnknownIDs, result.DuplicatesDropped)
	return result, nil
}

func eventMatches(ctx context.Context, store storage.Store, opts EventsOptions) ([]int64, error) {
	var matchIDs []int64
	if len(opts.MatchIDs) > 0 {
		matchIDs = opts.MatchIDs
	} else {
		matches, err := store.ListMatches(ctx, time.Time{})
		if err != nil {
			return nil, err
		}
		matchIDs = make([]int64, 0, len(matches))
		for _, match := range matches {
			matchIDs = append(matchIDs, match.ID)
		}
	}
	if opts.MaxMatches > 0 && len(matchIDs) > opts.MaxMatches {
		matchIDs = matchIDs[:opts.MaxMatches]
	}
	return matchIDs, nil
}

type classifiedEvents struct {
	items      []domain.ItemPurchase
	abilities  []domain.AbilityUpgrade
	duplicates int
}

// classifyPlayerEvents splits one player's raw event stream into item
// purchases and ability upgrades using the reference id sets, adding any
// unrecognized ids to unknown. The upstream payload occasionally repeats
// an event; the first occurrence wins.
func classifyPlayerEvents(accountID, matchID int64, raws []deadlock.ItemEvent, itemIDs, abilityIDs map[int64]struct{}, unknown map[int64]struct{}) classifiedEvents {
	var events classifiedEvents
	type eventKey struct {
		id       int64
		gameTime int
	}
	seen := make(map[eventKey]struct{})
	for _, raw := range raws {
		key := eventKey{id: raw.ItemID, gameTime: raw.GameTimeS}
		if _, dup := seen[key]; dup {
			events.duplicates++
			continue
		}
		seen[key] = struct{}{}

		if _, ok := itemIDs[raw.ItemID]; ok {
			upgraded := raw.UpgradeID != 0
			purchase := domain.ItemPurchase{
				AccountID: accountID,
				MatchID:   matchID,
				ItemID:    raw.ItemID,
				GameTime:  raw.GameTimeS,
				SoldTime:  raw.SoldTimeS,
				IsUpgrade: &upgraded,
			}
			if raw.ImbuedAbilityID != 0 {
				if _, known := abilityIDs[raw.ImbuedAbilityID]; known {
					imbued := raw.ImbuedAbilityID
					purchase.ImbuedAbilityID = &imbued
				}
			}
			events.items = append(events.items, purchase)
			continue
		}
		if _, ok := abilityIDs[raw.ItemID]; ok {
			events.abilities = append(events.abilities, domain.AbilityUpgrade{
				AccountID: accountID,
				MatchID:   matchID,
				AbilityID: raw.ItemID,
				GameTime:  raw.GameTimeS,
			})
			continue
		}
		unknown[raw.ItemID] = struct{}{}
	}
	return events
}
