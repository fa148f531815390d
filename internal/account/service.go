package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	CreateAccount(ctx context.Context, acc *Account) error
	GetAccount(ctx context.Context, churchID, id uuid.UUID) (*Account, error)
	ListAccounts(ctx context.Context, churchID uuid.UUID, filter ListFilter) ([]*Account, error)
	UpdateAccount(ctx context.Context, acc *Account) error
	DeleteAccount(ctx context.Context, churchID, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name           string
	Type           Type
	Currency       string
	OpeningBalance decimal.Decimal
}

type ListFilter struct {
	Type *Type
}

// UpdateParams is a partial merge; nil fields are left untouched.
// Balance is deliberately absent: balances are mutated only by the
// treasury engine inside its ledger transaction.
type UpdateParams struct {
	Name     *string
	Currency *string
}

func (s *Service) Create(ctx context.Context, churchID uuid.UUID, params CreateParams) (*Account, error) {
	acc := &Account{
		ChurchID: churchID,
		Name:     params.Name,
		Type:     params.Type,
		Balance:  params.OpeningBalance,
		Currency: params.Currency,
	}
	if err := s.repo.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

func (s *Service) Get(ctx context.Context, churchID, id uuid.UUID) (*Account, error) {
	return s.repo.GetAccount(ctx, churchID, id)
}

func (s *Service) List(ctx context.Context, churchID uuid.UUID, filter ListFilter) ([]*Account, error) {
	return s.repo.ListAccounts(ctx, churchID, filter)
}

func (s *Service) Update(ctx context.Context, churchID, id uuid.UUID, params UpdateParams) (*Account, error) {
	acc, err := s.repo.GetAccount(ctx, churchID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		acc.Name = *params.Name
	}

	if params.Currency != nil {
		acc.Currency = *params.Currency
	}

	if err := s.repo.UpdateAccount(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

func (s *Service) Delete(ctx context.Context, churchID, id uuid.UUID) error {
	return s.repo.DeleteAccount(ctx, churchID, id)
}
