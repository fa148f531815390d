package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/chapelhq/steward/internal/budget"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (church_id, ministry_id, category_account_id, amount_limit, period, year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		b.ChurchID,
		b.MinistryID,
		b.CategoryAccountID,
		b.AmountLimit,
		b.Period,
		b.Year,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating budget: %w", err)
	}

	return nil
}

func (s *Store) ListBudgets(ctx context.Context, churchID uuid.UUID, filter budget.ListFilter) ([]*budget.Budget, error) {
	query := `
		SELECT id, church_id, ministry_id, category_account_id, amount_limit, period, year, created_at
		FROM budgets
		WHERE church_id = $1
	`

	args := []any{churchID}

	if filter.Year != nil {
		query += fmt.Sprintf(" AND year = $%d", len(args)+1)

		args = append(args, *filter.Year)
	}

	query += " ORDER BY year DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*budget.Budget

	for rows.Next() {
		var b budget.Budget

		var periodStr string

		if err := rows.Scan(
			&b.ID, &b.ChurchID, &b.MinistryID, &b.CategoryAccountID,
			&b.AmountLimit, &periodStr, &b.Year, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}

		b.Period = budget.Period(periodStr)
		budgets = append(budgets, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget rows: %w", err)
	}

	return budgets, nil
}

func (s *Store) DeleteBudget(ctx context.Context, churchID, id uuid.UUID) error {
	query := `DELETE FROM budgets WHERE id = $1 AND church_id = $2`

	res, err := s.db.ExecContext(ctx, query, id, churchID)
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	if affected == 0 {
		return budget.ErrNotFound
	}

	return nil
}
