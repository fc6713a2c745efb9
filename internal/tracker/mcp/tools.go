package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

// HeroResult represents one hero in MCP tool output.
type HeroResult struct {
	HeroID  int64  `json:"hero_id" jsonschema:"hero identifier"`
	Name    string `json:"name" jsonschema:"hero display name"`
	IconKey string `json:"icon_key,omitempty" jsonschema:"icon asset key"`
}

// ListHeroesResult represents the MCP tool output for the hero listing.
type ListHeroesResult struct {
	Heroes []HeroResult `json:"heroes" jsonschema:"all tracked heroes"`
}

// ItemResult represents one shop item in MCP tool output.
type ItemResult struct {
	ItemID  int64  `json:"item_id" jsonschema:"item identifier"`
	Name    string `json:"name" jsonschema:"item display name"`
	Type    string `json:"type" jsonschema:"item tree (spirit, weapon, vitality)"`
	Cost    int    `json:"cost" jsonschema:"souls cost"`
	Imbue   bool   `json:"imbue" jsonschema:"whether the item imbues an ability"`
	IconKey string `json:"icon_key,omitempty" jsonschema:"icon asset key"`
}

// ListItemsInput represents the MCP tool input for the item listing.
type ListItemsInput struct {
	Type string `json:"type,omitempty" jsonschema:"optional item tree filter (spirit, weapon, vitality)"`
}

// ListItemsResult represents the MCP tool output for the item listing.
type ListItemsResult struct {
	Items []ItemResult `json:"items" jsonschema:"shop items ordered by type and cost"`
}

// GetItemInput represents the MCP tool input for one item.
type GetItemInput struct {
	ItemID int64 `json:"item_id" jsonschema:"item identifier"`
}

// GetItemResult represents the MCP tool output for one item with its
// upgrade edges.
type GetItemResult struct {
	Item         ItemResult   `json:"item" jsonschema:"the requested item"`
	UpgradesTo   []ItemResult `json:"upgrades_to" jsonschema:"items this item upgrades into"`
	UpgradesFrom []ItemResult `json:"upgrades_from" jsonschema:"items this item is built from"`
}

// ListPlayersInput represents the MCP tool input for the player listing.
type ListPlayersInput struct {
	NotableOnly bool `json:"notable_only,omitempty" jsonschema:"restrict to notable accounts"`
}

// PlayerResult represents one account in MCP tool output.
type PlayerResult struct {
	AccountID int64  `json:"account_id" jsonschema:"account identifier"`
	Username  string `json:"username" jsonschema:"account username"`
	Notable   bool   `json:"is_notable" jsonschema:"whether the account is notable"`
}

// ListPlayersResult represents the MCP tool output for the player listing.
type ListPlayersResult struct {
	Players []PlayerResult `json:"players" jsonschema:"tracked accounts"`
}

// PlayerMatchesInput represents the MCP tool input for a player's matches.
type PlayerMatchesInput struct {
	AccountID int64 `json:"account_id" jsonschema:"account identifier"`
}

// PlayerMatchResult represents one match row in MCP tool output.
type PlayerMatchResult struct {
	MatchID   int64  `json:"match_id" jsonschema:"match identifier"`
	StartedAt string `json:"started_at" jsonschema:"match start time, RFC 3339"`
	DurationS int    `json:"duration_s" jsonschema:"match duration in seconds"`
	Kills     int    `json:"kills" jsonschema:"player kills"`
	Deaths    int    `json:"deaths" jsonschema:"player deaths"`
	Assists   int    `json:"assists" jsonschema:"player assists"`
	NetWorth  int    `json:"net_worth" jsonschema:"player net worth"`
	Win       bool   `json:"is_win" jsonschema:"whether the player won"`
}

// PlayerMatchesResult represents the MCP tool output for a player's matches.
type PlayerMatchesResult struct {
	Matches []PlayerMatchResult `json:"matches" jsonschema:"matches newest first"`
}

// MatchTimelineInput represents the MCP tool input for one player's match
// timeline.
type MatchTimelineInput struct {
	MatchID   int64 `json:"match_id" jsonschema:"match identifier"`
	AccountID int64 `json:"account_id" jsonschema:"account identifier"`
}

// TimelineEventResult represents one timeline event in MCP tool output.
type TimelineEventResult struct {
	Kind      string `json:"kind" jsonschema:"event kind (item or ability)"`
	ID        int64  `json:"id" jsonschema:"item or ability identifier"`
	GameTimeS int    `json:"game_time_s" jsonschema:"seconds into the match"`
	SoldTimeS int    `json:"sold_time_s,omitempty" jsonschema:"seconds into the match the item was sold"`
}

// MatchTimelineResult represents the MCP tool output for one timeline.
type MatchTimelineResult struct {
	Events []TimelineEventResult `json:"events" jsonschema:"time-ordered item and ability events"`
}

// StatsResult represents the MCP tool output for tracker table counts.
type StatsResult struct {
	Heroes       int64 `json:"heroes" jsonschema:"hero rows"`
	ShopItems    int64 `json:"shop_items" jsonschema:"shop item rows"`
	Accounts     int64 `json:"accounts" jsonschema:"account rows"`
	Matches      int64 `json:"matches" jsonschema:"match rows"`
	Performances int64 `json:"player_performances" jsonschema:"performance rows"`
}

// ListHeroesTool defines the MCP tool schema for listing heroes.
func ListHeroesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_heroes",
		Description: "Lists every tracked hero",
	}
}

// ListItemsTool defines the MCP tool schema for listing shop items.
func ListItemsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_items",
		Description: "Lists shop items, optionally filtered by tree",
	}
}

// GetItemTool defines the MCP tool schema for one item with upgrade edges.
func GetItemTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_item",
		Description: "Returns one shop item with its upgrade relations",
	}
}

// ListPlayersTool defines the MCP tool schema for listing accounts.
func ListPlayersTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_players",
		Description: "Lists tracked player accounts",
	}
}

// PlayerMatchesTool defines the MCP tool schema for a player's matches.
func PlayerMatchesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "player_matches",
		Description: "Lists one player's tracked matches, newest first",
	}
}

// MatchTimelineTool defines the MCP tool schema for one player's timeline.
func MatchTimelineTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "match_timeline",
		Description: "Returns one player's item and ability timeline for a match",
	}
}

// StatsTool defines the MCP tool schema for tracker table counts.
func StatsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "tracker_stats",
		Description: "Reports tracker table row counts",
	}
}

// ListHeroesHandler returns the handler backing the hero listing tool.
func ListHeroesHandler(store storage.Store) mcp.ToolHandlerFor[struct{}, ListHeroesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ListHeroesResult, error) {
		heroes, err := store.ListHeroes(ctx)
		if err != nil {
			return nil, ListHeroesResult{}, fmt.Errorf("list heroes: %w", err)
		}
		result := ListHeroesResult{Heroes: make([]HeroResult, 0, len(heroes))}
		for _, hero := range heroes {
			result.Heroes = append(result.Heroes, HeroResult{
				HeroID: hero.ID, Name: hero.Name, IconKey: hero.IconKey,
			})
		}
		return nil, result, nil
	}
}

func toItemResult(item domain.ShopItem) ItemResult {
	return ItemResult{
		ItemID:  item.ID,
		Name:    item.Name,
		Type:    string(item.Type),
		Cost:    item.Cost,
		Imbue:   item.Imbue,
		IconKey: item.IconKey,
	}
}

// ListItemsHandler returns the handler backing the item listing tool.
func ListItemsHandler(store storage.Store) mcp.ToolHandlerFor[ListItemsInput, ListItemsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListItemsInput) (*mcp.CallToolResult, ListItemsResult, error) {
		if input.Type != "" {
			if _, err := domain.ParseItemType(input.Type); err != nil {
				return nil, ListItemsResult{}, err
			}
		}
		items, err := store.ListShopItems(ctx)
		if err != nil {
			return nil, ListItemsResult{}, fmt.Errorf("list items: %w", err)
		}
		result := ListItemsResult{Items: make([]ItemResult, 0, len(items))}
		for _, item := range items {
			if input.Type != "" && string(item.Type) != input.Type {
				continue
			}
			result.Items = append(result.Items, toItemResult(item))
		}
		return nil, result, nil
	}
}

// GetItemHandler returns the handler backing the single item tool.
func GetItemHandler(store storage.Store) mcp.ToolHandlerFor[GetItemInput, GetItemResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetItemInput) (*mcp.CallToolResult, GetItemResult, error) {
		item, err := store.GetShopItem(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, GetItemResult{}, fmt.Errorf("item %d not found", input.ItemID)
			}
			return nil, GetItemResult{}, fmt.Errorf("get item: %w", err)
		}
		upgradesTo, err := store.ListUpgradesFrom(ctx, input.ItemID)
		if err != nil {
			return nil, GetItemResult{}, fmt.Errorf("list upgrades: %w", err)
		}
		upgradesFrom, err := store.ListUpgradesTo(ctx, input.ItemID)
		if err != nil {
			return nil, GetItemResult{}, fmt.Errorf("list upgrades: %w", err)
		}
		result := GetItemResult{
			Item:         toItemResult(item),
			UpgradesTo:   make([]ItemResult, 0, len(upgradesTo)),
			UpgradesFrom: make([]ItemResult, 0, len(upgradesFrom)),
		}
		for _, upgrade := range upgradesTo {
			result.UpgradesTo = append(result.UpgradesTo, toItemResult(upgrade))
		}
		for _, upgrade := range upgradesFrom {
			result.UpgradesFrom = append(result.UpgradesFrom, toItemResult(upgrade))
		}
		return nil, result, nil
	}
}

// ListPlayersHandler returns the handler backing the player listing tool.
func ListPlayersHandler(store storage.Store) mcp.ToolHandlerFor[ListPlayersInput, ListPlayersResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListPlayersInput) (*mcp.CallToolResult, ListPlayersResult, error) {
		accounts, err := store.ListAccounts(ctx, input.NotableOnly)
		if err != nil {
			return nil, ListPlayersResult{}, fmt.Errorf("list players: %w", err)
		}
		result := ListPlayersResult{Players: make([]PlayerResult, 0, len(accounts))}
		for _, account := range accounts {
			result.Players = append(result.Players, PlayerResult{
				AccountID: account.ID, Username: account.Username, Notable: account.Notable,
			})
		}
		return nil, result, nil
	}
}

// PlayerMatchesHandler returns the handler backing the player matches tool.
func PlayerMatchesHandler(store storage.Store) mcp.ToolHandlerFor[PlayerMatchesInput, PlayerMatchesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlayerMatchesInput) (*mcp.CallToolResult, PlayerMatchesResult, error) {
		if _, err := store.GetAccount(ctx, input.AccountID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, PlayerMatchesResult{}, fmt.Errorf("player %d not found", input.AccountID)
			}
			return nil, PlayerMatchesResult{}, fmt.Errorf("get player: %w", err)
		}
		matches, err := store.ListMatchesForAccount(ctx, input.AccountID)
		if err != nil {
			return nil, PlayerMatchesResult{}, fmt.Errorf("list matches: %w", err)
		}
		result := PlayerMatchesResult{Matches: make([]PlayerMatchResult, 0, len(matches))}
		for _, mp := range matches {
			result.Matches = append(result.Matches, PlayerMatchResult{
				MatchID:   mp.Match.ID,
				StartedAt: mp.Match.StartedAt.UTC().Format(time.RFC3339),
				DurationS: int(mp.Match.Duration / time.Second),
				Kills:     mp.Performance.Kills,
				Deaths:    mp.Performance.Deaths,
				Assists:   mp.Performance.Assists,
				NetWorth:  mp.Performance.NetWorth,
				Win:       mp.Performance.Win,
			})
		}
		return nil, result, nil
	}
}

// MatchTimelineHandler returns the handler backing the timeline tool.
func MatchTimelineHandler(store storage.Store) mcp.ToolHandlerFor[MatchTimelineInput, MatchTimelineResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MatchTimelineInput) (*mcp.CallToolResult, MatchTimelineResult, error) {
		if _, err := store.GetMatch(ctx, input.MatchID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, MatchTimelineResult{}, fmt.Errorf("match %d not found", input.MatchID)
			}
			return nil, MatchTimelineResult{}, fmt.Errorf("get match: %w", err)
		}
		items, err := store.ListItemPurchases(ctx, input.MatchID, input.AccountID)
		if err != nil {
			return nil, MatchTimelineResult{}, fmt.Errorf("list item purchases: %w", err)
		}
		abilities, err := store.ListAbilityUpgrades(ctx, input.MatchID, input.AccountID)
		if err != nil {
			return nil, MatchTimelineResult{}, fmt.Errorf("list ability upgrades: %w", err)
		}
		result := MatchTimelineResult{Events: make([]TimelineEventResult, 0, len(items)+len(abilities))}
		for _, item := range items {
			result.Events = append(result.Events, TimelineEventResult{
				Kind: "item", ID: item.ItemID, GameTimeS: item.GameTime, SoldTimeS: item.SoldTime,
			})
		}
		for _, ability := range abilities {
			result.Events = append(result.Events, TimelineEventResult{
				Kind: "ability", ID: ability.AbilityID, GameTimeS: ability.GameTime,
			})
		}
		sortTimeline(result.Events)
		return nil, result, nil
	}
}

// StatsHandler returns the handler backing the stats tool.
func StatsHandler(store storage.Store) mcp.ToolHandlerFor[struct{}, StatsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, StatsResult, error) {
		counts, err := store.Counts(ctx)
		if err != nil {
			return nil, StatsResult{}, fmt.Errorf("counts: %w", err)
		}
		return nil, StatsResult{
			Heroes:       counts.Heroes,
			ShopItems:    counts.ShopItems,
			Accounts:     counts.Accounts,
			Matches:      counts.Matches,
			Performances: counts.Performances,
		}, nil
	}
}
