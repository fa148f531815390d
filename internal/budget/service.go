package budget

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	ListBudgets(ctx context.Context, churchID uuid.UUID, filter ListFilter) ([]*Budget, error)
	DeleteBudget(ctx context.Context, churchID, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	MinistryID        uuid.UUID
	CategoryAccountID uuid.UUID
	AmountLimit       decimal.Decimal
	Period            Period
	Year              int
}

type ListFilter struct {
	Year *int
}

func (s *Service) Create(ctx context.Context, churchID uuid.UUID, params CreateParams) (*Budget, error) {
	b := &Budget{
		ChurchID:          churchID,
		MinistryID:        params.MinistryID,
		CategoryAccountID: params.CategoryAccountID,
		AmountLimit:       params.AmountLimit,
		Period:            params.Period,
		Year:              params.Year,
	}
	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) List(ctx context.Context, churchID uuid.UUID, filter ListFilter) ([]*Budget, error) {
	return s.repo.ListBudgets(ctx, churchID, filter)
}

func (s *Service) Delete(ctx context.Context, churchID, id uuid.UUID) error {
	return s.repo.DeleteBudget(ctx, churchID, id)
}
