package api

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
	"github.com/deadlock-tools/tracker/internal/platform/httpx"
	"github.com/deadlock-tools/tracker/internal/tracker/domain"
)

type matchJSON struct {
	MatchID   int64  `json:"match_id"`
	StartedAt string `json:"started_at"`
	DurationS int    `json:"duration_s"`
	Duration  string `json:"duration"`
	AvgRankID *int   `json:"avg_rank_id"`
}

type heroJSON struct {
	HeroID  int64  `json:"hero_id"`
	Name    string `json:"name"`
	IconKey string `json:"icon_key"`
}

type abilityJSON struct {
	AbilityID int64  `json:"ability_id"`
	Name      string `json:"name"`
	IconKey   string `json:"icon_key"`
}

type heroDetailJSON struct {
	heroJSON
	Abilities []abilityJSON `json:"abilities"`
}

type itemJSON struct {
	ItemID  int64  `json:"item_id"`
	Name    string `json:"name"`
	IconKey string `json:"icon_key"`
	Imbue   bool   `json:"imbue"`
	Type    string `json:"type"`
	Cost    int    `json:"cost"`
}

type itemDetailJSON struct {
	itemJSON
	UpgradesTo   []itemJSON `json:"upgrades_to"`
	UpgradesFrom []itemJSON `json:"upgrades_from"`
}

type playerJSON struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	Notable   bool   `json:"is_notable"`
}

type matchPlayerJSON struct {
	playerJSON
	Kills    int  `json:"kills"`
	Deaths   int  `json:"deaths"`
	Assists  int  `json:"assists"`
	NetWorth int  `json:"net_worth"`
	Team     int  `json:"team"`
	Win      bool `json:"is_win"`
}

type playerMatchJSON struct {
	matchJSON
	Kills    int  `json:"kills"`
	Deaths   int  `json:"deaths"`
	Assists  int  `json:"assists"`
	NetWorth int  `json:"net_worth"`
	Team     int  `json:"team"`
	Win      bool `json:"is_win"`
}

type eventJSON struct {
	Kind            string `json:"kind"`
	AccountID       int64  `json:"account_id"`
	GameTimeS       int    `json:"game_time_s"`
	ItemID          *int64 `json:"item_id,omitempty"`
	SoldTimeS       *int   `json:"sold_time_s,omitempty"`
	IsUpgrade       *bool  `json:"is_upgrade,omitempty"`
	ImbuedAbilityID *int64 `json:"imbued_ability_id,omitempty"`
	AbilityID       *int64 `json:"ability_id,omitempty"`
}

type matchEventsJSON struct {
	MatchID int64       `json:"match_id"`
	Count   int         `json:"count"`
	Events  []eventJSON `json:"events"`
}

type statsJSON struct {
	Heroes          int64 `json:"heroes"`
	Abilities       int64 `json:"abilities"`
	ShopItems       int64 `json:"shop_items"`
	UpgradeEdges    int64 `json:"shop_item_upgrades"`
	Accounts        int64 `json:"accounts"`
	Matches         int64 `json:"matches"`
	Performances    int64 `json:"player_performances"`
	ItemPurchases   int64 `json:"player_items"`
	AbilityUpgrades int64 `json:"player_abilities"`
}

// formatDuration renders a match duration as M:SS or H:MM:SS.
func formatDuration(d time.Duration) string {
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func toMatchJSON(match domain.Match) matchJSON {
	return matchJSON{
		MatchID:   match.ID,
		StartedAt: match.StartedAt.UTC().Format(time.RFC3339),
		DurationS: int(match.Duration / time.Second),
		Duration:  formatDuration(match.Duration),
		AvgRankID: match.AvgRankID,
	}
}

func toItemJSON(item domain.ShopItem) itemJSON {
	return itemJSON{
		ItemID:  item.ID,
		Name:    item.Name,
		IconKey: item.IconKey,
		Imbue:   item.Imbue,
		Type:    string(item.Type),
		Cost:    item.Cost,
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

// queryBool interprets a truthy query parameter. Anything outside the
// accepted spellings, including absence, means false.
func queryBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "t", "yes", "y":
		return true
	}
	return false
}

// parseRange interprets a ?range=30d style window. Empty means no cutoff.
func parseRange(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if !strings.HasSuffix(raw, "d") {
		return time.Time{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("invalid range %q, expected a day window like 30d", raw))
	}
	days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
	if err != nil || days <= 0 {
		return time.Time{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("invalid range %q, expected a day window like 30d", raw))
	}
	return now.UTC().AddDate(0, 0, -days), nil
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	since, err := parseRange(r.URL.Query().Get("range"), time.Now())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	matches, err := s.store.ListMatches(ctx, since)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	payload := make([]matchJSON, 0, len(matches))
	for _, match := range matches {
		payload = append(payload, toMatchJSON(match))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	match, err := s.store.GetMatch(ctx, id)
	if err != nil {
		httpx.WriteError(w, storeErr(err, "match"))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toMatchJSON(match))
}

func (s *Server) handleMatchStats(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	counts, err := s.store.Counts(ctx)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, statsJSON{
		Heroes:          counts.Heroes,
		Abilities:       counts.Abilities,
		ShopItems:       counts.ShopItems,
		UpgradeEdges:    counts.UpgradeEdges,
		Accounts:        counts.Accounts,
		Matches:         counts.Matches,
		Performances:    counts.Performances,
		ItemPurchases:   counts.ItemPurchases,
		AbilityUpgrades: counts.AbilityUpgrades,
	})
}

func (s *Server) handleMatchPlayers(onlyNotable bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := httpx.RequestContext(r)
		id, err := pathID(r)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		if _, err := s.store.GetMatch(ctx, id); err != nil {
			httpx.WriteError(w, storeErr(err, "match"))
			return
		}
		players, err := s.store.ListMatchPlayers(ctx, id, onlyNotable)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		payload := make([]matchPlayerJSON, 0, len(players))
		for _, player := range players {
			payload = append(payload, matchPlayerJSON{
				playerJSON: playerJSON{
					AccountID: player.Account.ID,
					Username:  player.Account.Username,
					Notable:   player.Account.Notable,
				},
				Kills:    player.Performance.Kills,
				Deaths:   player.Performance.Deaths,
				Assists:  player.Performance.Assists,
				NetWorth: player.Performance.NetWorth,
				Team:     player.Performance.Team,
				Win:      player.Performance.Win,
			})
		}
		_ = httpx.WriteJSON(w, http.StatusOK, payload)
	}
}

func (s *Server) handleMatchEvents(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if _, err := s.store.GetMatch(ctx, id); err != nil {
		httpx.WriteError(w, storeErr(err, "match"))
		return
	}

	query := r.URL.Query()
	notableOnly := queryBool(query.Get("notable_only"))
	var accountFilter int64
	if raw := query.Get("account_id"); raw != "" {
		accountFilter, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.WriteError(w, apperrors.New(apperrors.CodeInvalidArgument,
				fmt.Sprintf("invalid account_id %q", raw)))
			return
		}
	}

	items, err := s.store.ListMatchItemPurchases(ctx, id, notableOnly)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	abilities, err := s.store.ListMatchAbilityUpgrades(ctx, id, notableOnly)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	events := make([]eventJSON, 0, len(items)+len(abilities))
	for _, item := range items {
		if accountFilter != 0 && item.AccountID != accountFilter {
			continue
		}
		itemID := item.ItemID
		event := eventJSON{
			Kind:            "item",
			AccountID:       item.AccountID,
			GameTimeS:       item.GameTime,
			ItemID:          &itemID,
			IsUpgrade:       item.IsUpgrade,
			ImbuedAbilityID: item.ImbuedAbilityID,
		}
		if item.SoldTime > 0 {
			soldTime := item.SoldTime
			event.SoldTimeS = &soldTime
		}
		events = append(events, event)
	}
	for _, ability := range abilities {
		if accountFilter != 0 && ability.AccountID != accountFilter {
			continue
		}
		abilityID := ability.AbilityID
		events = append(events, eventJSON{
			Kind:      "ability",
			AccountID: ability.AccountID,
			GameTimeS: ability.GameTime,
			AbilityID: &abilityID,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].GameTimeS != events[j].GameTimeS {
			return events[i].GameTimeS < events[j].GameTimeS
		}
		return events[i].Kind < events[j].Kind
	})
	_ = httpx.WriteJSON(w, http.StatusOK, matchEventsJSON{
		MatchID: id,
		Count:   len(events),
		Events:  events,
	})
}

func (s *Server) handleListHeroes(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	heroes, err := s.store.ListHeroes(ctx)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	payload := make([]heroJSON, 0, len(heroes))
	for _, hero := range heroes {
		payload = append(payload, heroJSON{HeroID: hero.ID, Name: hero.Name, IconKey: hero.IconKey})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetHero(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	hero, err := s.store.GetHero(ctx, id)
	if err != nil {
		httpx.WriteError(w, storeErr(err, "hero"))
		return
	}
	abilities, err := s.store.ListAbilitiesForHero(ctx, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	detail := heroDetailJSON{
		heroJSON:  heroJSON{HeroID: hero.ID, Name: hero.Name, IconKey: hero.IconKey},
		Abilities: make([]abilityJSON, 0, len(abilities)),
	}
	for _, ability := range abilities {
		detail.Abilities = append(detail.Abilities, abilityJSON{
			AbilityID: ability.ID, Name: ability.Name, IconKey: ability.IconKey,
		})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, detail)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	items, err := s.store.ListShopItems(ctx)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	payload := make([]itemJSON, 0, len(items))
	for _, item := range items {
		payload = append(payload, toItemJSON(item))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	item, err := s.store.GetShopItem(ctx, id)
	if err != nil {
		httpx.WriteError(w, storeErr(err, "item"))
		return
	}
	upgradesTo, err := s.store.ListUpgradesFrom(ctx, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	upgradesFrom, err := s.store.ListUpgradesTo(ctx, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	detail := itemDetailJSON{
		itemJSON:     toItemJSON(item),
		UpgradesTo:   make([]itemJSON, 0, len(upgradesTo)),
		UpgradesFrom: make([]itemJSON, 0, len(upgradesFrom)),
	}
	for _, upgrade := range upgradesTo {
		detail.UpgradesTo = append(detail.UpgradesTo, toItemJSON(upgrade))
	}
	for _, upgrade := range upgradesFrom {
		detail.UpgradesFrom = append(detail.UpgradesFrom, toItemJSON(upgrade))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, detail)
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	onlyNotable := queryBool(r.URL.Query().Get("notable"))
	accounts, err := s.store.ListAccounts(ctx, onlyNotable)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	payload := make([]playerJSON, 0, len(accounts))
	for _, account := range accounts {
		payload = append(payload, playerJSON{
			AccountID: account.ID, Username: account.Username, Notable: account.Notable,
		})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		httpx.WriteError(w, storeErr(err, "player"))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, playerJSON{
		AccountID: account.ID, Username: account.Username, Notable: account.Notable,
	})
}

func (s *Server) handlePlayerMatches(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if _, err := s.store.GetAccount(ctx, id); err != nil {
		httpx.WriteError(w, storeErr(err, "player"))
		return
	}
	matches, err := s.store.ListMatchesForAccount(ctx, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	payload := make([]playerMatchJSON, 0, len(matches))
	for _, mp := range matches {
		payload = append(payload, playerMatchJSON{
			matchJSON: toMatchJSON(mp.Match),
			Kills:     mp.Performance.Kills,
			Deaths:    mp.Performance.Deaths,
			Assists:   mp.Performance.Assists,
			NetWorth:  mp.Performance.NetWorth,
			Team:      mp.Performance.Team,
			Win:       mp.Performance.Win,
		})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, payload)
}
