package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chapelhq/steward/internal/account"
	"github.com/chapelhq/steward/internal/treasury"
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

const selectTransactionColumns = `
	t.id, t.church_id, t.description, t.amount, t.currency, t.exchange_rate,
	t.source_account_id, t.dest_account_id, t.ministry_id, t.status,
	t.created_by, t.date, t.created_at, t.updated_at, t.deleted_at
`

// scanTransaction reads a transaction row from the scanner.
// Expected column order: id, church_id, description, amount, currency,
// exchange_rate, source_account_id, dest_account_id, ministry_id, status,
// created_by, date, created_at, updated_at, deleted_at
func scanTransaction(s scanner) (*treasury.Transaction, error) {
	var tx treasury.Transaction

	var statusStr string

	if err := s.Scan(
		&tx.ID, &tx.ChurchID, &tx.Description, &tx.Amount, &tx.Currency, &tx.ExchangeRate,
		&tx.SourceID, &tx.DestinationID, &tx.MinistryID, &statusStr,
		&tx.CreatedBy, &tx.Date, &tx.CreatedAt, &tx.UpdatedAt, &tx.DeletedAt,
	); err != nil {
		return nil, err
	}

	tx.Status = treasury.Status(statusStr)

	return &tx, nil
}

func (s *Store) GetTransaction(ctx context.Context, churchID, id uuid.UUID) (*treasury.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1 AND t.church_id = $2 AND t.deleted_at IS NULL`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id, churchID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, treasury.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, churchID uuid.UUID, filter treasury.ListFilter) ([]*treasury.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.church_id = $1 AND t.deleted_at IS NULL`

	args := []any{churchID}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", len(args)+1)

		args = append(args, *filter.Status)
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", len(args)+1)

		args = append(args, *filter.StartDate)
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", len(args)+1)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY t.date DESC, t.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*treasury.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) ListAuditEntries(ctx context.Context, churchID, transactionID uuid.UUID) ([]*treasury.AuditEntry, error) {
	query := `
		SELECT e.id, e.transaction_id, e.old_amount, e.new_amount,
		       e.old_description, e.new_description, e.reason, e.changed_by, e.created_at
		FROM audit_entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE e.transaction_id = $1 AND t.church_id = $2
		ORDER BY e.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, transactionID, churchID)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*treasury.AuditEntry

	for rows.Next() {
		var e treasury.AuditEntry

		if err := rows.Scan(
			&e.ID, &e.TransactionID, &e.OldAmount, &e.NewAmount,
			&e.OldDescription, &e.NewDescription, &e.Reason, &e.ChangedBy, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit rows: %w", err)
	}

	return entries, nil
}

type ledgerTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (treasury.LedgerTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}

	return &ledgerTx{tx: tx}, nil
}

func (l *ledgerTx) Commit() error   { return l.tx.Commit() }
func (l *ledgerTx) Rollback() error { return l.tx.Rollback() }

// LockAccountPair loads both accounts with row locks. A single query with
// ORDER BY id gives every caller the same lock order, so two concurrent
// operations on the same pair cannot deadlock.
func (l *ledgerTx) LockAccountPair(ctx context.Context, churchID, sourceID, destID uuid.UUID) (*account.Account, *account.Account, error) {
	query := `
		SELECT id, church_id, name, type, balance, currency, created_at, updated_at, deleted_at
		FROM accounts
		WHERE church_id = $1 AND id IN ($2, $3) AND deleted_at IS NULL
		ORDER BY id
		FOR UPDATE
	`

	rows, err := l.tx.QueryContext(ctx, query, churchID, sourceID, destID)
	if err != nil {
		return nil, nil, fmt.Errorf("locking accounts: %w", err)
	}
	defer rows.Close()

	var src, dst *account.Account

	for rows.Next() {
		var acc account.Account

		var typeStr string

		if err := rows.Scan(
			&acc.ID, &acc.ChurchID, &acc.Name, &typeStr, &acc.Balance, &acc.Currency,
			&acc.CreatedAt, &acc.UpdatedAt, &acc.DeletedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("scanning account: %w", err)
		}

		acc.Type = account.Type(typeStr)

		switch acc.ID {
		case sourceID:
			src = &acc
		case destID:
			dst = &acc
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating account rows: %w", err)
	}

	if src == nil || dst == nil {
		return nil, nil, account.ErrNotFound
	}

	return src, dst, nil
}

func (l *ledgerTx) SetAccountBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`

	if _, err := l.tx.ExecContext(ctx, query, balance, accountID); err != nil {
		return fmt.Errorf("setting balance: %w", err)
	}

	return nil
}

func (l *ledgerTx) InsertTransaction(ctx context.Context, tx *treasury.Transaction) error {
	query := `
		INSERT INTO transactions (church_id, description, amount, currency, exchange_rate,
			source_account_id, dest_account_id, ministry_id, status, created_by, date,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := l.tx.QueryRowContext(ctx, query,
		tx.ChurchID,
		tx.Description,
		tx.Amount,
		tx.Currency,
		tx.ExchangeRate,
		tx.SourceID,
		tx.DestinationID,
		tx.MinistryID,
		tx.Status,
		tx.CreatedBy,
		tx.Date,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	return nil
}

func (l *ledgerTx) GetTransactionForUpdate(ctx context.Context, churchID, id uuid.UUID) (*treasury.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1 AND t.church_id = $2 AND t.deleted_at IS NULL
		FOR UPDATE`

	tx, err := scanTransaction(l.tx.QueryRowContext(ctx, query, id, churchID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, treasury.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (l *ledgerTx) UpdateTransaction(ctx context.Context, tx *treasury.Transaction) error {
	query := `
		UPDATE transactions
		SET description = $1, amount = $2, status = $3, updated_at = NOW()
		WHERE id = $4 AND deleted_at IS NULL
	`

	if _, err := l.tx.ExecContext(ctx, query, tx.Description, tx.Amount, tx.Status, tx.ID); err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (l *ledgerTx) SoftDeleteTransaction(ctx context.Context, churchID, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE id = $1 AND church_id = $2 AND deleted_at IS NULL
	`

	if _, err := l.tx.ExecContext(ctx, query, id, churchID); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return nil
}

func (l *ledgerTx) InsertAuditEntry(ctx context.Context, entry *treasury.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (transaction_id, old_amount, new_amount,
			old_description, new_description, reason, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := l.tx.QueryRowContext(ctx, query,
		entry.TransactionID,
		entry.OldAmount,
		entry.NewAmount,
		entry.OldDescription,
		entry.NewDescription,
		entry.Reason,
		entry.ChangedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	return nil
}
