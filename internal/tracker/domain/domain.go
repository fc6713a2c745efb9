// Package domain defines the tracker's core record types and the validation
// rules shared by the importer, ingestion jobs, and API.
package domain

import (
	"fmt"
	"time"

	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
)

// ItemType classifies a shop item into one of the three in-game trees.
type ItemType string

const (
	ItemTypeSpirit   ItemType = "spirit"
	ItemTypeWeapon   ItemType = "weapon"
	ItemTypeVitality ItemType = "vitality"
)

// ItemTypes lists every valid item type.
func ItemTypes() []ItemType {
	return []ItemType{ItemTypeSpirit, ItemTypeWeapon, ItemTypeVitality}
}

// ParseItemType validates a raw item type value.
func ParseItemType(raw string) (ItemType, error) {
	switch ItemType(raw) {
	case ItemTypeSpirit, ItemTypeWeapon, ItemTypeVitality:
		return ItemType(raw), nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeItemInvalidType,
			fmt.Sprintf("invalid item type %q", raw),
			map[string]string{"type": raw})
	}
}

// Hero is a static hero record.
type Hero struct {
	ID      int64
	Name    string
	IconKey string
}

// Ability is a static ability record, each belonging to a hero.
type Ability struct {
	ID      int64
	Name    string
	IconKey string
	HeroID  int64
}

// ShopItem is a static purchasable item record.
type ShopItem struct {
	ID      int64
	Name    string
	IconKey string
	Imbue   bool
	Type    ItemType
	Cost    int
}

// Validate checks the invariants the curated CSV must satisfy.
func (s ShopItem) Validate() error {
	if s.Name == "" {
		return apperrors.WithMetadata(apperrors.CodeItemEmptyName,
			fmt.Sprintf("item %d has an empty name", s.ID),
			map[string]string{"item_id": fmt.Sprint(s.ID)})
	}
	if _, err := ParseItemType(string(s.Type)); err != nil {
		return err
	}
	if s.Cost < 0 {
		return apperrors.WithMetadata(apperrors.CodeItemNegativeCost,
			fmt.Sprintf("item %d has negative cost %d", s.ID, s.Cost),
			map[string]string{"item_id": fmt.Sprint(s.ID)})
	}
	return nil
}

// UpgradeEdge is one manually tracked upgrade relation between two items.
// A-upgrades-to-B does not imply B-upgrades-from-A.
type UpgradeEdge struct {
	FromItem int64
	ToItem   int64
}

// Validate rejects degenerate edges.
func (e UpgradeEdge) Validate() error {
	if e.FromItem == e.ToItem {
		return apperrors.WithMetadata(apperrors.CodeUpgradeSelfEdge,
			fmt.Sprintf("self-upgrade edge %d -> %d is not allowed", e.FromItem, e.ToItem),
			map[string]string{"item_id": fmt.Sprint(e.FromItem)})
	}
	return nil
}

// Account is a player account. Curated accounts carry real usernames;
// accounts discovered during ingestion get a placeholder.
type Account struct {
	ID       int64
	Username string
	Notable  bool
}

// PlaceholderUsername names accounts discovered by ingestion before a
// curator assigns a real username.
func PlaceholderUsername(accountID int64) string {
	return fmt.Sprintf("account-%d", accountID)
}

// Rank is a static rank badge record.
type Rank struct {
	ID      int
	Name    string
	IconKey string
}

// Match is one tracked match.
type Match struct {
	ID        int64
	StartedAt time.Time
	Duration  time.Duration
	AvgRankID *int
}

// Performance is one player's result in one match.
type Performance struct {
	AccountID int64
	MatchID   int64
	Kills     int
	Deaths    int
	Assists   int
	NetWorth  int
	Team      int
	Win       bool
}

// IsWin derives the win flag from the team number and the reported winner.
func IsWin(team, matchResult int) bool {
	return team == matchResult
}

// ItemPurchase is one shop-item event inside a match timeline.
type ItemPurchase struct {
	AccountID       int64
	MatchID         int64
	ItemID          int64
	GameTime        int
	SoldTime        int
	IsUpgrade       *bool
	ImbuedAbilityID *int64
}

// AbilityUpgrade is one ability-upgrade event inside a match timeline.
type AbilityUpgrade struct {
	AccountID int64
	MatchID   int64
	AbilityID int64
	GameTime  int
}
