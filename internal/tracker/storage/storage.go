// Package storage defines persistence contracts for tracker state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/deadlock-tools/tracker/internal/tracker/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// MatchPerformance joins one match with one player's result in it.
type MatchPerformance struct {
	Match       domain.Match
	Performance domain.Performance
}

// MatchPlayer joins one player's account with their result in one match.
type MatchPlayer struct {
	Account     domain.Account
	Performance domain.Performance
}

// Counts summarizes table sizes for status reporting.
type Counts struct {
	Heroes          int64
	Abilities       int64
	ShopItems       int64
	UpgradeEdges    int64
	Accounts        int64
	Matches         int64
	Performances    int64
	ItemPurchases   int64
	AbilityUpgrades int64
}

// StaticStore persists the hand-curated and asset-derived reference tables.
type StaticStore interface {
	UpsertHeroes(ctx context.Context, heroes []domain.Hero) error
	UpsertAbilities(ctx context.Context, abilities []domain.Ability) error
	UpsertRanks(ctx context.Context, ranks []domain.Rank) error
	UpsertShopItems(ctx context.Context, items []domain.ShopItem) error
	ReplaceUpgradeEdges(ctx context.Context, edges []domain.UpgradeEdge) error

	GetHero(ctx context.Context, id int64) (domain.Hero, error)
	ListHeroes(ctx context.Context) ([]domain.Hero, error)
	ListAbilitiesForHero(ctx context.Context, heroID int64) ([]domain.Ability, error)
	GetShopItem(ctx context.Context, id int64) (domain.ShopItem, error)
	ListShopItems(ctx context.Context) ([]domain.ShopItem, error)
	ListUpgradesFrom(ctx context.Context, itemID int64) ([]domain.ShopItem, error)
	ListUpgradesTo(ctx context.Context, itemID int64) ([]domain.ShopItem, error)
	ListRanks(ctx context.Context) ([]domain.Rank, error)

	ShopItemIDs(ctx context.Context) (map[int64]struct{}, error)
	AbilityIDs(ctx context.Context) (map[int64]struct{}, error)
}

// AccountStore persists player accounts.
type AccountStore interface {
	// UpsertAccount overwrites curated account data.
	UpsertAccount(ctx context.Context, account domain.Account) error
	// EnsureAccount inserts a placeholder account if the id is new. It never
	// overwrites an existing record. Returns true when a row was created.
	EnsureAccount(ctx context.Context, accountID int64) (bool, error)
	// MarkNotable flags an existing account as notable.
	MarkNotable(ctx context.Context, accountID int64) error

	GetAccount(ctx context.Context, accountID int64) (domain.Account, error)
	ListAccounts(ctx context.Context, onlyNotable bool) ([]domain.Account, error)
}

// MatchStore persists match results and per-player timelines.
type MatchStore interface {
	UpsertMatch(ctx context.Context, match domain.Match) error
	// UpsertPerformance inserts or overwrites one result row keyed on
	// (account_id, match_id) so re-runs pick up corrected upstream stats.
	// Returns true when the row is new.
	UpsertPerformance(ctx context.Context, perf domain.Performance) (bool, error)
	// ReplaceTimeline atomically swaps one player's event timeline for one match.
	ReplaceTimeline(ctx context.Context, matchID, accountID int64, items []domain.ItemPurchase, abilities []domain.AbilityUpgrade) error
	// HasTimeline reports whether any timeline rows exist for one match.
	HasTimeline(ctx context.Context, matchID int64) (bool, error)

	GetMatch(ctx context.Context, matchID int64) (domain.Match, error)
	// ListMatches returns matches that started at or after since, newest
	// first. A zero since returns everything.
	ListMatches(ctx context.Context, since time.Time) ([]domain.Match, error)
	// ListMatchPlayers returns every tracked player of one match with
	// their result, optionally restricted to notable accounts.
	ListMatchPlayers(ctx context.Context, matchID int64, onlyNotable bool) ([]MatchPlayer, error)
	ListMatchesForAccount(ctx context.Context, accountID int64) ([]MatchPerformance, error)
	ListItemPurchases(ctx context.Context, matchID, accountID int64) ([]domain.ItemPurchase, error)
	ListAbilityUpgrades(ctx context.Context, matchID, accountID int64) ([]domain.AbilityUpgrade, error)
	// ListMatchItemPurchases returns every player's item timeline for one
	// match, optionally restricted to notable accounts.
	ListMatchItemPurchases(ctx context.Context, matchID int64, onlyNotable bool) ([]domain.ItemPurchase, error)
	// ListMatchAbilityUpgrades returns every player's ability timeline for
	// one match, optionally restricted to notable accounts.
	ListMatchAbilityUpgrades(ctx context.Context, matchID int64, onlyNotable bool) ([]domain.AbilityUpgrade, error)

	// ResetDynamic clears all match-derived tables, leaving reference data intact.
	ResetDynamic(ctx context.Context) error
	Counts(ctx context.Context) (Counts, error)
}

// Store is the full persistence contract.
type Store interface {
	StaticStore
	AccountStore
	MatchStore
}
