package deadlock

// EsportsMatch is one entry of the esports match listing.
type EsportsMatch struct {
	MatchID int64  `json:"match_id"`
	Status  string `json:"status"`
}

// MatchStatusCompleted marks esports matches whose data is final.
const MatchStatusCompleted = "Completed"

// MatchMetadata is the per-match metadata payload.
type MatchMetadata struct {
	MatchInfo MatchInfo `json:"match_info"`
}

// MatchInfo carries the per-player sections of match metadata.
type MatchInfo struct {
	Players []MetadataPlayer `json:"players"`
}

// MetadataPlayer is one player's slice of match metadata.
type MetadataPlayer struct {
	AccountID int64       `json:"account_id"`
	Items     []ItemEvent `json:"items"`
}

// ItemEvent is a raw purchase or ability-upgrade event. The API reuses the
// item id space for both shop items and abilities; classification happens
// downstream against the static tables.
type ItemEvent struct {
	ItemID          int64 `json:"item_id"`
	GameTimeS       int   `json:"game_time_s"`
	SoldTimeS       int   `json:"sold_time_s"`
	UpgradeID       int64 `json:"upgrade_id"`
	ImbuedAbilityID int64 `json:"imbued_ability_id"`
}

// MatchHistoryEntry is one row of a player's stored match history.
type MatchHistoryEntry struct {
	AccountID      int64 `json:"account_id"`
	MatchID        int64 `json:"match_id"`
	StartTime      int64 `json:"start_time"`
	MatchDurationS int   `json:"match_duration_s"`
	PlayerKills    int   `json:"player_kills"`
	PlayerDeaths   int   `json:"player_deaths"`
	PlayerAssists  int   `json:"player_assists"`
	NetWorth       int   `json:"net_worth"`
	PlayerTeam     int   `json:"player_team"`
	MatchResult    int   `json:"match_result"`
	// AverageMatchBadge encodes the lobby's average rank as tier*10+subrank.
	AverageMatchBadge int64 `json:"average_match_badge"`
}

// HeroImages holds the two image formats the icon fetcher downloads.
//
// The card art is visually simplified relative to in-game assets, which is
// why these files are kept out of production ingestion.
type HeroImages struct {
	HeroCard string `json:"icon_hero_card"`
	Minimap  string `json:"minimap_image"`
}

// AssetHero is one hero from the assets API.
type AssetHero struct {
	ID        int64      `json:"id"`
	ClassName string     `json:"class_name"`
	Name      string     `json:"name"`
	Images    HeroImages `json:"images"`
}

// AssetRank is one rank badge from the assets API.
type AssetRank struct {
	Tier      int    `json:"tier"`
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
}

// AssetItem is one entry of the assets item table. Abilities and shop
// upgrades share this listing, distinguished by Type.
type AssetItem struct {
	ID        int64  `json:"id"`
	ClassName string `json:"class_name"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Hero      int64  `json:"hero"`
}

// Asset item types as reported by the assets API.
const (
	AssetItemTypeAbility = "ability"
	AssetItemTypeUpgrade = "upgrade"
)
