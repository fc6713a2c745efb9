package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

// UpsertAccount inserts or overwrites one curated account record.
func (s *Store) UpsertAccount(ctx context.Context, account domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if account.Username == "" {
		return fmt.Errorf("account %d has an empty username", account.ID)
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO accounts (id, username, notable) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET username = excluded.username, notable = excluded.notable`,
		account.ID, account.Username, boolToInt(account.Notable),
	)
	if err != nil {
		return fmt.Errorf("upsert account %d: %w", account.ID, err)
	}
	return nil
}

// EnsureAccount inserts a placeholder account when the id is new. Existing
// rows, curated usernames included, are never touched.
func (s *Store) EnsureAccount(ctx context.Context, accountID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := s.ready(); err != nil {
		return false, err
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO accounts (id, username, notable) VALUES (?, ?, 0)`,
		accountID, domain.PlaceholderUsername(accountID),
	)
	if err != nil {
		return false, fmt.Errorf("ensure account %d: %w", accountID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure account %d: %w", accountID, err)
	}
	return affected > 0, nil
}

// MarkNotable flags an existing account as notable.
func (s *Store) MarkNotable(ctx context.Context, accountID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(
		ctx, `UPDATE accounts SET notable = 1 WHERE id = ?`, accountID,
	)
	if err != nil {
		return fmt.Errorf("mark account %d notable: %w", accountID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark account %d notable: %w", accountID, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetAccount returns one account by id.
func (s *Store) GetAccount(ctx context.Context, accountID int64) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Account{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx, `SELECT id, username, notable FROM accounts WHERE id = ?`, accountID,
	)
	var account domain.Account
	var notable int
	if err := row.Scan(&account.ID, &account.Username, &notable); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, storage.ErrNotFound
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	account.Notable = notable != 0
	return account, nil
}

// ListAccounts returns accounts ordered by username, optionally notable only.
func (s *Store) ListAccounts(ctx context.Context, onlyNotable bool) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	query := `SELECT id, username, notable FROM accounts ORDER BY username ASC`
	if onlyNotable {
		query = `SELECT id, username, notable FROM accounts WHERE notable = 1 ORDER BY username ASC`
	}
	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		var notable int
		if err := rows.Scan(&account.ID, &account.Username, &notable); err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		account.Notable = notable != 0
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}
