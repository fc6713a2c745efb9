package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

// UpsertHeroes inserts or overwrites hero records.
func (s *Store) UpsertHeroes(ctx context.Context, heroes []domain.Hero) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert heroes: %w", err)
	}
	defer tx.Rollback()
	for _, hero := range heroes {
		if hero.Name == "" {
			return fmt.Errorf("hero %d has an empty name", hero.ID)
		}
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO heroes (id, name, icon_key) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, icon_key = excluded.icon_key`,
			hero.ID, hero.Name, hero.IconKey,
		)
		if err != nil {
			return fmt.Errorf("upsert hero %d: %w", hero.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert heroes: %w", err)
	}
	return nil
}

// UpsertAbilities inserts or overwrites ability records.
func (s *Store) UpsertAbilities(ctx context.Context, abilities []domain.Ability) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert abilities: %w", err)
	}
	defer tx.Rollback()
	for _, ability := range abilities {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO abilities (id, name, icon_key, hero_id) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name, icon_key = excluded.icon_key, hero_id = excluded.hero_id`,
			ability.ID, ability.Name, ability.IconKey, ability.HeroID,
		)
		if err != nil {
			return fmt.Errorf("upsert ability %d: %w", ability.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert abilities: %w", err)
	}
	return nil
}

// UpsertRanks inserts or overwrites rank records.
func (s *Store) UpsertRanks(ctx context.Context, ranks []domain.Rank) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert ranks: %w", err)
	}
	defer tx.Rollback()
	for _, rank := range ranks {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO ranks (id, name, icon_key) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, icon_key = excluded.icon_key`,
			rank.ID, rank.Name, rank.IconKey,
		)
		if err != nil {
			return fmt.Errorf("upsert rank %d: %w", rank.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert ranks: %w", err)
	}
	return nil
}

// UpsertShopItems inserts or overwrites shop item records.
func (s *Store) UpsertShopItems(ctx context.Context, items []domain.ShopItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert shop items: %w", err)
	}
	defer tx.Rollback()
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO shop_items (id, name, icon_key, imbue, type, cost) VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name, icon_key = excluded.icon_key, imbue = excluded.imbue,
			   type = excluded.type, cost = excluded.cost`,
			item.ID, item.Name, item.IconKey, boolToInt(item.Imbue), string(item.Type), item.Cost,
		)
		if err != nil {
			return fmt.Errorf("upsert shop item %d: %w", item.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert shop items: %w", err)
	}
	return nil
}

// ReplaceUpgradeEdges swaps the full upgrade edge set atomically.
func (s *Store) ReplaceUpgradeEdges(ctx context.Context, edges []domain.UpgradeEdge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace upgrade edges: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM shop_item_upgrades`); err != nil {
		return fmt.Errorf("clear upgrade edges: %w", err)
	}
	for _, edge := range edges {
		if err := edge.Validate(); err != nil {
			return err
		}
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO shop_item_upgrades (from_item, to_item) VALUES (?, ?)`,
			edge.FromItem, edge.ToItem,
		)
		if err != nil {
			return fmt.Errorf("insert upgrade edge %d -> %d: %w", edge.FromItem, edge.ToItem, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace upgrade edges: %w", err)
	}
	return nil
}

// GetHero returns one hero by id.
func (s *Store) GetHero(ctx context.Context, id int64) (domain.Hero, error) {
	if err := ctx.Err(); err != nil {
		return domain.Hero{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Hero{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT id, name, icon_key FROM heroes WHERE id = ?`, id)
	var hero domain.Hero
	if err := row.Scan(&hero.ID, &hero.Name, &hero.IconKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Hero{}, storage.ErrNotFound
		}
		return domain.Hero{}, fmt.Errorf("get hero: %w", err)
	}
	return hero, nil
}

// ListHeroes returns all heroes ordered by name.
func (s *Store) ListHeroes(ctx context.Context) ([]domain.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, name, icon_key FROM heroes ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list heroes: %w", err)
	}
	defer rows.Close()
	var heroes []domain.Hero
	for rows.Next() {
		var hero domain.Hero
		if err := rows.Scan(&hero.ID, &hero.Name, &hero.IconKey); err != nil {
			return nil, fmt.Errorf("list heroes: %w", err)
		}
		heroes = append(heroes, hero)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list heroes: %w", err)
	}
	return heroes, nil
}

// ListAbilitiesForHero returns a hero's abilities ordered by id.
func (s *Store) ListAbilitiesForHero(ctx context.Context, heroID int64) ([]domain.Ability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, icon_key, hero_id FROM abilities WHERE hero_id = ? ORDER BY id ASC`,
		heroID,
	)
	if err != nil {
		return nil, fmt.Errorf("list abilities: %w", err)
	}
	defer rows.Close()
	var abilities []domain.Ability
	for rows.Next() {
		var ability domain.Ability
		if err := rows.Scan(&ability.ID, &ability.Name, &ability.IconKey, &ability.HeroID); err != nil {
			return nil, fmt.Errorf("list abilities: %w", err)
		}
		abilities = append(abilities, ability)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list abilities: %w", err)
	}
	return abilities, nil
}

// GetShopItem returns one shop item by id.
func (s *Store) GetShopItem(ctx context.Context, id int64) (domain.ShopItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.ShopItem{}, err
	}
	if err := s.ready(); err != nil {
		return domain.ShopItem{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, icon_key, imbue, type, cost FROM shop_items WHERE id = ?`,
		id,
	)
	item, err := scanShopItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ShopItem{}, storage.ErrNotFound
		}
		return domain.ShopItem{}, fmt.Errorf("get shop item: %w", err)
	}
	return item, nil
}

// ListShopItems returns all shop items ordered by type then cost.
func (s *Store) ListShopItems(ctx context.Context) ([]domain.ShopItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.queryShopItems(
		ctx,
		`SELECT id, name, icon_key, imbue, type, cost FROM shop_items ORDER BY type ASC, cost ASC, name ASC`,
	)
}

// ListUpgradesFrom returns the items a given item upgrades into.
func (s *Store) ListUpgradesFrom(ctx context.Context, itemID int64) ([]domain.ShopItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.queryShopItems(
		ctx,
		`SELECT i.id, i.name, i.icon_key, i.imbue, i.type, i.cost
		   FROM shop_item_upgrades u
		   JOIN shop_items i ON i.id = u.to_item
		  WHERE u.from_item = ?
		  ORDER BY i.cost ASC, i.name ASC`,
		itemID,
	)
}

// ListUpgradesTo returns the items a given item can be built from.
func (s *Store) ListUpgradesTo(ctx context.Context, itemID int64) ([]domain.ShopItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.queryShopItems(
		ctx,
		`SELECT i.id, i.name, i.icon_key, i.imbue, i.type, i.cost
		   FROM shop_item_upgrades u
		   JOIN shop_items i ON i.id = u.from_item
		  WHERE u.to_item = ?
		  ORDER BY i.cost ASC, i.name ASC`,
		itemID,
	)
}

// ListRanks returns all ranks ordered by id.
func (s *Store) ListRanks(ctx context.Context) ([]domain.Rank, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, name, icon_key FROM ranks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list ranks: %w", err)
	}
	defer rows.Close()
	var ranks []domain.Rank
	for rows.Next() {
		var rank domain.Rank
		if err := rows.Scan(&rank.ID, &rank.Name, &rank.IconKey); err != nil {
			return nil, fmt.Errorf("list ranks: %w", err)
		}
		ranks = append(ranks, rank)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ranks: %w", err)
	}
	return ranks, nil
}

// ShopItemIDs returns the set of known shop item ids.
func (s *Store) ShopItemIDs(ctx context.Context) (map[int64]struct{}, error) {
	return s.idSet(ctx, `SELECT id FROM shop_items`)
}

// AbilityIDs returns the set of known ability ids.
func (s *Store) AbilityIDs(ctx context.Context) (map[int64]struct{}, error) {
	return s.idSet(ctx, `SELECT id FROM abilities`)
}

func (s *Store) idSet(ctx context.Context, query string) (map[int64]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query id set: %w", err)
	}
	defer rows.Close()
	set := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("query id set: %w", err)
		}
		set[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query id set: %w", err)
	}
	return set, nil
}

func (s *Store) queryShopItems(ctx context.Context, query string, args ...any) ([]domain.ShopItem, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shop items: %w", err)
	}
	defer rows.Close()
	var items []domain.ShopItem
	for rows.Next() {
		item, err := scanShopItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list shop items: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shop items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShopItem(row rowScanner) (domain.ShopItem, error) {
	var item domain.ShopItem
	var imbue int
	var itemType string
	if err := row.Scan(&item.ID, &item.Name, &item.IconKey, &imbue, &itemType, &item.Cost); err != nil {
		return domain.ShopItem{}, err
	}
	item.Imbue = imbue != 0
	item.Type = domain.ItemType(itemType)
	return item, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
