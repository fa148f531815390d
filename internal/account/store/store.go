package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/chapelhq/steward/internal/account"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectAccountColumns = `
	a.id, a.church_id, a.name, a.type, a.balance, a.currency,
	a.created_at, a.updated_at, a.deleted_at
`

// scanAccount reads an account row from the scanner.
// Expected column order: id, church_id, name, type, balance, currency, created_at, updated_at, deleted_at
func scanAccount(s scanner) (*account.Account, error) {
	var acc account.Account

	var typeStr string

	if err := s.Scan(
		&acc.ID, &acc.ChurchID, &acc.Name, &typeStr, &acc.Balance, &acc.Currency,
		&acc.CreatedAt, &acc.UpdatedAt, &acc.DeletedAt,
	); err != nil {
		return nil, err
	}

	acc.Type = account.Type(typeStr)

	return &acc, nil
}

func (s *Store) CreateAccount(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (church_id, name, type, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		acc.ChurchID,
		acc.Name,
		acc.Type,
		acc.Balance,
		acc.Currency,
	).Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) GetAccount(ctx context.Context, churchID, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + `
		FROM accounts a
		WHERE a.id = $1 AND a.church_id = $2 AND a.deleted_at IS NULL`

	acc, err := scanAccount(s.db.QueryRowContext(ctx, query, id, churchID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return acc, nil
}

func (s *Store) ListAccounts(ctx context.Context, churchID uuid.UUID, filter account.ListFilter) ([]*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + `
		FROM accounts a
		WHERE a.church_id = $1 AND a.deleted_at IS NULL`

	args := []any{churchID}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND a.type = $%d", len(args)+1)

		args = append(args, *filter.Type)
	}

	query += " ORDER BY a.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accs []*account.Account

	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accs = append(accs, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	return accs, nil
}

func (s *Store) UpdateAccount(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, currency = $2, updated_at = NOW()
		WHERE id = $3 AND church_id = $4 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		acc.Name,
		acc.Currency,
		acc.ID,
		acc.ChurchID,
	)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	if affected == 0 {
		return account.ErrNotFound
	}

	return nil
}

// DeleteAccount soft-deletes the account. Historical transactions keep their
// references to it; deletion never cascades.
func (s *Store) DeleteAccount(ctx context.Context, churchID, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET deleted_at = NOW()
		WHERE id = $1 AND church_id = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id, churchID)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	if affected == 0 {
		return account.ErrNotFound
	}

	return nil
}
