package staticdata

import (
	"context"
	"fmt"
	"log"

	"github.com/deadlock-tools/tracker/internal/deadlock"
	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

// CatalogClient is the typed slice of the assets API the loader consumes.
type CatalogClient interface {
	Heroes(ctx context.Context) ([]deadlock.AssetHero, error)
	Items(ctx context.Context) ([]deadlock.AssetItem, error)
	Ranks(ctx context.Context) ([]deadlock.AssetRank, error)
}

// LoadResult summarizes one reference load.
type LoadResult struct {
	Heroes            int
	Abilities         int
	Ranks             int
	OrphanedAbilities int
}

// LoadReference pulls heroes, abilities, and ranks from the assets API and
// upserts them into storage. Shop items are excluded: those come from the
// hand-curated CSV tables, not the assets API.
func LoadReference(ctx context.Context, client CatalogClient, store storage.Store, logger *log.Logger) (LoadResult, error) {
	if logger == nil {
		logger = log.Default()
	}

	var result LoadResult
	assetHeroes, err := client.Heroes(ctx)
	if err != nil {
		return result, apperrors.Wrap(apperrors.CodeIngestFetchFailed, "fetch heroes", err)
	}
	heroes := make([]domain.Hero, 0, len(assetHeroes))
	knownHeroes := make(map[int64]struct{}, len(assetHeroes))
	for _, hero := range assetHeroes {
		if hero.Name == "" {
			return result, apperrors.WithMetadata(apperrors.CodeHeroEmptyName,
				"assets API returned a hero with an empty name",
				map[string]string{"hero_id": formatID(hero.ID)})
		}
		heroes = append(heroes, domain.Hero{ID: hero.ID, Name: hero.Name, IconKey: hero.ClassName})
		knownHeroes[hero.ID] = struct{}{}
	}
	if err := store.UpsertHeroes(ctx, heroes); err != nil {
		return result, err
	}
	result.Heroes = len(heroes)

	assetItems, err := client.Items(ctx)
	if err != nil {
		return result, apperrors.Wrap(apperrors.CodeIngestFetchFailed, "fetch items", err)
	}
	var abilities []domain.Ability
	for _, item := range assetItems {
		if item.Type != deadlock.AssetItemTypeAbility {
			continue
		}
		if _, ok := knownHeroes[item.Hero]; !ok {
			// Generic abilities and removed heroes show up with hero ids
			// outside the current roster.
			result.OrphanedAbilities++
			continue
		}
		abilities = append(abilities, domain.Ability{
			ID: item.ID, Name: item.Name, IconKey: item.ClassName, HeroID: item.Hero,
		})
	}
	if err := store.UpsertAbilities(ctx, abilities); err != nil {
		return result, err
	}
	result.Abilities = len(abilities)

	assetRanks, err := client.Ranks(ctx)
	if err != nil {
		return result, apperrors.Wrap(apperrors.CodeIngestFetchFailed, "fetch ranks", err)
	}
	ranks := make([]domain.Rank, 0, len(assetRanks))
	for _, rank := range assetRanks {
		ranks = append(ranks, domain.Rank{ID: rank.Tier, Name: rank.Name, IconKey: rank.ClassName})
	}
	if err := store.UpsertRanks(ctx, ranks); err != nil {
		return result, err
	}
	result.Ranks = len(ranks)

	logger.Printf("reference load: %d heroes, %d abilities (%d orphaned), %d ranks",
		result.Heroes, result.Abilities, result.OrphanedAbilities, result.Ranks)
	return result, nil
}

func formatID(id int64) string {
	return fmt.Sprintf("%d", id)
}
