package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

// UpsertMatch inserts or overwrites one match record.
func (s *Store) UpsertMatch(ctx context.Context, match domain.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	var avgRank any
	if match.AvgRankID != nil {
		avgRank = *match.AvgRankID
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO matches (id, started_at, duration_s, avg_rank_id) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   started_at = excluded.started_at, duration_s = excluded.duration_s,
		   avg_rank_id = excluded.avg_rank_id`,
		match.ID, toMillis(match.StartedAt), int64(match.Duration/time.Second), avgRank,
	)
	if err != nil {
		return fmt.Errorf("upsert match %d: %w", match.ID, err)
	}
	return nil
}

// UpsertPerformance inserts or overwrites one result row keyed on
// (account_id, match_id). Returns true when the row is new.
func (s *Store) UpsertPerformance(ctx context.Context, perf domain.Performance) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := s.ready(); err != nil {
		return false, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM player_performances WHERE account_id = ? AND match_id = ?)`,
		perf.AccountID, perf.MatchID,
	)
	var exists int
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("upsert performance %d/%d: %w", perf.AccountID, perf.MatchID, err)
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO player_performances
		   (account_id, match_id, kills, deaths, assists, net_worth, team, win)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(account_id, match_id) DO UPDATE SET
		   kills = excluded.kills, deaths = excluded.deaths, assists = excluded.assists,
		   net_worth = excluded.net_worth, team = excluded.team, win = excluded.win`,
		perf.AccountID, perf.MatchID, perf.Kills, perf.Deaths, perf.Assists,
		perf.NetWorth, perf.Team, boolToInt(perf.Win),
	)
	if err != nil {
		return false, fmt.Errorf("upsert performance %d/%d: %w", perf.AccountID, perf.MatchID, err)
	}
	return exists == 0, nil
}

// ReplaceTimeline swaps one player's event timeline for one match in a
// single transaction.
func (s *Store) ReplaceTimeline(ctx context.Context, matchID, accountID int64, items []domain.ItemPurchase, abilities []domain.AbilityUpgrade) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace timeline: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(
		ctx, `DELETE FROM player_items WHERE match_id = ? AND account_id = ?`, matchID, accountID,
	); err != nil {
		return fmt.Errorf("clear item timeline: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx, `DELETE FROM player_abilities WHERE match_id = ? AND account_id = ?`, matchID, accountID,
	); err != nil {
		return fmt.Errorf("clear ability timeline: %w", err)
	}
	for _, item := range items {
		var isUpgrade any
		if item.IsUpgrade != nil {
			isUpgrade = boolToInt(*item.IsUpgrade)
		}
		var imbued any
		if item.ImbuedAbilityID != nil {
			imbued = *item.ImbuedAbilityID
		}
		_, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO player_items
			   (account_id, match_id, item_id, game_time_s, sold_time_s, is_upgrade, imbued_ability_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			accountID, matchID, item.ItemID, item.GameTime, item.SoldTime, isUpgrade, imbued,
		)
		if err != nil {
			return fmt.Errorf("insert item purchase %d: %w", item.ItemID, err)
		}
	}
	for _, ability := range abilities {
		_, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO player_abilities (account_id, match_id, ability_id, game_time_s)
			 VALUES (?, ?, ?, ?)`,
			accountID, matchID, ability.AbilityID, ability.GameTime,
		)
		if err != nil {
			return fmt.Errorf("insert ability upgrade %d: %w", ability.AbilityID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace timeline: %w", err)
	}
	return nil
}

// HasTimeline reports whether any timeline rows exist for one match.
func (s *Store) HasTimeline(ctx context.Context, matchID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := s.ready(); err != nil {
		return false, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM player_items WHERE match_id = ?
		   UNION ALL
		   SELECT 1 FROM player_abilities WHERE match_id = ?
		 )`,
		matchID, matchID,
	)
	var exists int
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("check timeline: %w", err)
	}
	return exists != 0, nil
}

// GetMatch returns one match by id.
func (s *Store) GetMatch(ctx context.Context, matchID int64) (domain.Match, error) {
	if err := ctx.Err(); err != nil {
		return domain.Match{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Match{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx, `SELECT id, started_at, duration_s, avg_rank_id FROM matches WHERE id = ?`, matchID,
	)
	match, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Match{}, storage.ErrNotFound
		}
		return domain.Match{}, fmt.Errorf("get match: %w", err)
	}
	return match, nil
}

// ListMatches returns matches that started at or after since, newest first.
func (s *Store) ListMatches(ctx context.Context, since time.Time) ([]domain.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	query := `SELECT id, started_at, duration_s, avg_rank_id FROM matches ORDER BY started_at DESC`
	args := []any{}
	if !since.IsZero() {
		query = `SELECT id, started_at, duration_s, avg_rank_id FROM matches
		          WHERE started_at >= ? ORDER BY started_at DESC`
		args = append(args, toMillis(since))
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()
	var matches []domain.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("list matches: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

// ListMatchPlayers returns every tracked player of one match with their
// result, ordered by team then account id.
func (s *Store) ListMatchPlayers(ctx context.Context, matchID int64, onlyNotable bool) ([]storage.MatchPlayer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	query := `SELECT a.id, a.username, a.notable,
	                 p.kills, p.deaths, p.assists, p.net_worth, p.team, p.win
	            FROM player_performances p
	            JOIN accounts a ON a.id = p.account_id
	           WHERE p.match_id = ?`
	if onlyNotable {
		query += ` AND a.notable = 1`
	}
	query += ` ORDER BY p.team ASC, a.id ASC`
	rows, err := s.sqlDB.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match players: %w", err)
	}
	defer rows.Close()
	var players []storage.MatchPlayer
	for rows.Next() {
		var mp storage.MatchPlayer
		var notable, win int
		if err := rows.Scan(
			&mp.Account.ID, &mp.Account.Username, &notable,
			&mp.Performance.Kills, &mp.Performance.Deaths, &mp.Performance.Assists,
			&mp.Performance.NetWorth, &mp.Performance.Team, &win,
		); err != nil {
			return nil, fmt.Errorf("list match players: %w", err)
		}
		mp.Account.Notable = notable != 0
		mp.Performance.AccountID = mp.Account.ID
		mp.Performance.MatchID = matchID
		mp.Performance.Win = win != 0
		players = append(players, mp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list match players: %w", err)
	}
	return players, nil
}

// ListMatchesForAccount returns one account's matches, newest first.
func (s *Store) ListMatchesForAccount(ctx context.Context, accountID int64) ([]storage.MatchPerformance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT m.id, m.started_at, m.duration_s, m.avg_rank_id,
		        p.account_id, p.kills, p.deaths, p.assists, p.net_worth, p.team, p.win
		   FROM player_performances p
		   JOIN matches m ON m.id = p.match_id
		  WHERE p.account_id = ?
		  ORDER BY m.started_at DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()
	var results []storage.MatchPerformance
	for rows.Next() {
		var mp storage.MatchPerformance
		var startedAt, durationS int64
		var avgRank sql.NullInt64
		var win int
		if err := rows.Scan(
			&mp.Match.ID, &startedAt, &durationS, &avgRank,
			&mp.Performance.AccountID, &mp.Performance.Kills, &mp.Performance.Deaths,
			&mp.Performance.Assists, &mp.Performance.NetWorth, &mp.Performance.Team, &win,
		); err != nil {
			return nil, fmt.Errorf("list matches: %w", err)
		}
		mp.Match.StartedAt = fromMillis(startedAt)
		mp.Match.Duration = time.Duration(durationS) * time.Second
		if avgRank.Valid {
			rank := int(avgRank.Int64)
			mp.Match.AvgRankID = &rank
		}
		mp.Performance.MatchID = mp.Match.ID
		mp.Performance.Win = win != 0
		results = append(results, mp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return results, nil
}

// ListItemPurchases returns one player's item timeline for one match in
// game-time order.
func (s *Store) ListItemPurchases(ctx context.Context, matchID, accountID int64) ([]domain.ItemPurchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT account_id, match_id, item_id, game_time_s, sold_time_s, is_upgrade, imbued_ability_id
		   FROM player_items
		  WHERE match_id = ? AND account_id = ?
		  ORDER BY game_time_s ASC, item_id ASC`,
		matchID, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list item purchases: %w", err)
	}
	defer rows.Close()
	var items []domain.ItemPurchase
	for rows.Next() {
		var item domain.ItemPurchase
		var isUpgrade sql.NullInt64
		var imbued sql.NullInt64
		if err := rows.Scan(
			&item.AccountID, &item.MatchID, &item.ItemID,
			&item.GameTime, &item.SoldTime, &isUpgrade, &imbued,
		); err != nil {
			return nil, fmt.Errorf("list item purchases: %w", err)
		}
		if isUpgrade.Valid {
			flag := isUpgrade.Int64 != 0
			item.IsUpgrade = &flag
		}
		if imbued.Valid {
			id := imbued.Int64
			item.ImbuedAbilityID = &id
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list item purchases: %w", err)
	}
	return items, nil
}

// ListMatchItemPurchases returns every player's item timeline for one
// match in game-time order, optionally notable accounts only.
func (s *Store) ListMatchItemPurchases(ctx context.Context, matchID int64, onlyNotable bool) ([]domain.ItemPurchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	query := `SELECT p.account_id, p.match_id, p.item_id, p.game_time_s, p.sold_time_s, p.is_upgrade, p.imbued_ability_id
	            FROM player_items p
	            JOIN accounts a ON a.id = p.account_id
	           WHERE p.match_id = ?`
	if onlyNotable {
		query += ` AND a.notable = 1`
	}
	query += ` ORDER BY p.game_time_s ASC, p.item_id ASC`
	rows, err := s.sqlDB.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match item purchases: %w", err)
	}
	defer rows.Close()
	var items []domain.ItemPurchase
	for rows.Next() {
		var item domain.ItemPurchase
		var isUpgrade sql.NullInt64
		var imbued sql.NullInt64
		if err := rows.Scan(
			&item.AccountID, &item.MatchID, &item.ItemID,
			&item.GameTime, &item.SoldTime, &isUpgrade, &imbued,
		); err != nil {
			return nil, fmt.Errorf("list match item purchases: %w", err)
		}
		if isUpgrade.Valid {
			flag := isUpgrade.Int64 != 0
			item.IsUpgrade = &flag
		}
		if imbued.Valid {
			id := imbued.Int64
			item.ImbuedAbilityID = &id
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list match item purchases: %w", err)
	}
	return items, nil
}

// ListMatchAbilityUpgrades returns every player's ability timeline for one
// match in game-time order, optionally notable accounts only.
func (s *Store) ListMatchAbilityUpgrades(ctx context.Context, matchID int64, onlyNotable bool) ([]domain.AbilityUpgrade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	query := `SELECT p.account_id, p.match_id, p.ability_id, p.game_time_s
	            FROM player_abilities p
	            JOIN accounts a ON a.id = p.account_id
	           WHERE p.match_id = ?`
	if onlyNotable {
		query += ` AND a.notable = 1`
	}
	query += ` ORDER BY p.game_time_s ASC, p.ability_id ASC`
	rows, err := s.sqlDB.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match ability upgrades: %w", err)
	}
	defer rows.Close()
	var abilities []domain.AbilityUpgrade
	for rows.Next() {
		var ability domain.AbilityUpgrade
		if err := rows.Scan(
			&ability.AccountID, &ability.MatchID, &ability.AbilityID, &ability.GameTime,
		); err != nil {
			return nil, fmt.Errorf("list match ability upgrades: %w", err)
		}
		abilities = append(abilities, ability)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list match ability upgrades: %w", err)
	}
	return abilities, nil
}

// ListAbilityUpgrades returns one player's ability timeline for one match
// in game-time order.
func (s *Store) ListAbilityUpgrades(ctx context.Context, matchID, accountID int64) ([]domain.AbilityUpgrade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT account_id, match_id, ability_id, game_time_s
		   FROM player_abilities
		  WHERE match_id = ? AND account_id = ?
		  ORDER BY game_time_s ASC, ability_id ASC`,
		matchID, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ability upgrades: %w", err)
	}
	defer rows.Close()
	var abilities []domain.AbilityUpgrade
	for rows.Next() {
		var ability domain.AbilityUpgrade
		if err := rows.Scan(
			&ability.AccountID, &ability.MatchID, &ability.AbilityID, &ability.GameTime,
		); err != nil {
			return nil, fmt.Errorf("list ability upgrades: %w", err)
		}
		abilities = append(abilities, ability)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ability upgrades: %w", err)
	}
	return abilities, nil
}

// ResetDynamic clears all match-derived tables in one transaction.
func (s *Store) ResetDynamic(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reset dynamic tables: %w", err)
	}
	defer tx.Rollback()
	for _, table := range []string{"player_items", "player_abilities", "player_performances", "matches"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("reset dynamic tables: %w", err)
	}
	return nil
}

// Counts returns table sizes for status reporting.
func (s *Store) Counts(ctx context.Context) (storage.Counts, error) {
	if err := ctx.Err(); err != nil {
		return storage.Counts{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Counts{}, err
	}
	var counts storage.Counts
	targets := []struct {
		table string
		dest  *int64
	}{
		{"heroes", &counts.Heroes},
		{"abilities", &counts.Abilities},
		{"shop_items", &counts.ShopItems},
		{"shop_item_upgrades", &counts.UpgradeEdges},
		{"accounts", &counts.Accounts},
		{"matches", &counts.Matches},
		{"player_performances", &counts.Performances},
		{"player_items", &counts.ItemPurchases},
		{"player_abilities", &counts.AbilityUpgrades},
	}
	for _, target := range targets {
		row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+target.table)
		if err := row.Scan(target.dest); err != nil {
			return storage.Counts{}, fmt.Errorf("count %s: %w", target.table, err)
		}
	}
	return counts, nil
}

func scanMatch(row rowScanner) (domain.Match, error) {
	var match domain.Match
	var startedAt, durationS int64
	var avgRank sql.NullInt64
	if err := row.Scan(&match.ID, &startedAt, &durationS, &avgRank); err != nil {
		return domain.Match{}, err
	}
	match.StartedAt = fromMillis(startedAt)
	match.Duration = time.Duration(durationS) * time.Second
	if avgRank.Valid {
		rank := int(avgRank.Int64)
		match.AvgRankID = &rank
	}
	return match, nil
}
