package treasury

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chapelhq/steward/internal/account"
	"github.com/chapelhq/steward/internal/budget"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=treasury
type Repository interface {
	GetTransaction(ctx context.Context, churchID, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, churchID uuid.UUID, filter ListFilter) ([]*Transaction, error)
	ListAuditEntries(ctx context.Context, churchID, transactionID uuid.UUID) ([]*AuditEntry, error)

	Begin(ctx context.Context) (LedgerTx, error)
}

// LedgerTx is one atomic unit of work over the ledger. Account rows fetched
// through LockAccountPair stay locked until Commit or Rollback, which
// serializes concurrent operations touching the same accounts.
type LedgerTx interface {
	LockAccountPair(ctx context.Context, churchID, sourceID, destID uuid.UUID) (*account.Account, *account.Account, error)
	SetAccountBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error

	InsertTransaction(ctx context.Context, tx *Transaction) error
	GetTransactionForUpdate(ctx context.Context, churchID, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	SoftDeleteTransaction(ctx context.Context, churchID, id uuid.UUID) error
	InsertAuditEntry(ctx context.Context, entry *AuditEntry) error

	Commit() error
	Rollback() error
}

const defaultAmendReason = "amount correction"

type Service struct {
	repo            Repository
	guard           *budget.Guard
	defaultCurrency string
}

func NewService(repo Repository, guard *budget.Guard, defaultCurrency string) *Service {
	return &Service{repo: repo, guard: guard, defaultCurrency: defaultCurrency}
}

type CreateParams struct {
	Description   string
	Amount        decimal.Decimal
	Currency      string
	ExchangeRate  decimal.Decimal
	SourceID      uuid.UUID
	DestinationID uuid.UUID
	MinistryID    *uuid.UUID
	Date          time.Time
}

type AmendParams struct {
	Amount      decimal.Decimal
	Description string
	Reason      string
}

type ListFilter struct {
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
}

// Create records a transaction between two accounts of the church. The
// account locks, balance writes and the insert form one database
// transaction: it either fully commits or leaves no trace.
func (s *Service) Create(ctx context.Context, churchID, userID uuid.UUID, params CreateParams) (*Transaction, error) {
	if !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if params.SourceID == uuid.Nil || params.DestinationID == uuid.Nil || params.SourceID == params.DestinationID {
		return nil, ErrInvalidAccount
	}

	rate := params.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}

	currency := params.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now()
	}

	ltx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer ltx.Rollback()

	src, dst, err := ltx.LockAccountPair(ctx, churchID, params.SourceID, params.DestinationID)
	if err != nil {
		return nil, err
	}

	status := StatusCompleted
	if s.guard.Evaluate(src.Type, dst.Type, params.MinistryID, params.Amount) == budget.DecisionPendingApproval {
		status = StatusPendingApproval
	}

	tx := &Transaction{
		ChurchID:      churchID,
		Description:   params.Description,
		Amount:        params.Amount,
		Currency:      currency,
		ExchangeRate:  rate,
		SourceID:      src.ID,
		DestinationID: dst.ID,
		MinistryID:    params.MinistryID,
		Status:        status,
		CreatedBy:     userID,
		Date:          date,
	}

	if status == StatusCompleted {
		applyBalanceEffect(src, dst, params.Amount, rate)

		if err := persistBalances(ctx, ltx, src, dst); err != nil {
			return nil, err
		}
	}

	if err := ltx.InsertTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("inserting transaction: %w", err)
	}

	if err := ltx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return tx, nil
}

// Amend changes the amount and description of a transaction and writes one
// audit entry. For a completed transaction the old balance effect is
// reversed with the stored exchange rate before the new one is applied; the
// account pair itself is never changed.
func (s *Service) Amend(ctx context.Context, churchID, userID, id uuid.UUID, params AmendParams) (*Transaction, error) {
	if !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	reason := params.Reason
	if reason == "" {
		reason = defaultAmendReason
	}

	ltx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer ltx.Rollback()

	tx, err := ltx.GetTransactionForUpdate(ctx, churchID, id)
	if err != nil {
		return nil, err
	}

	src, dst, err := ltx.LockAccountPair(ctx, churchID, tx.SourceID, tx.DestinationID)
	if err != nil {
		return nil, err
	}

	if tx.Status == StatusCompleted {
		reverseBalanceEffect(src, dst, tx.Amount, tx.ExchangeRate)
		applyBalanceEffect(src, dst, params.Amount, tx.ExchangeRate)

		if err := persistBalances(ctx, ltx, src, dst); err != nil {
			return nil, err
		}
	}

	entry := &AuditEntry{
		TransactionID:  tx.ID,
		OldAmount:      tx.Amount,
		NewAmount:      params.Amount,
		OldDescription: tx.Description,
		NewDescription: params.Description,
		Reason:         reason,
		ChangedBy:      userID,
	}
	if err := ltx.InsertAuditEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("inserting audit entry: %w", err)
	}

	tx.Amount = params.Amount
	tx.Description = params.Description

	if err := ltx.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}

	if err := ltx.Commit(); err != nil {
		return nil, fmt.Errorf("committing amendment: %w", err)
	}

	return tx, nil
}

// Approve transitions a pending transaction to completed and applies its
// balance effect. Any other starting status fails with ErrImmutableStatus.
func (s *Service) Approve(ctx context.Context, churchID, id uuid.UUID) (*Transaction, error) {
	ltx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer ltx.Rollback()

	tx, err := ltx.GetTransactionForUpdate(ctx, churchID, id)
	if err != nil {
		return nil, err
	}

	if tx.Status != StatusPendingApproval {
		return nil, ErrImmutableStatus
	}

	src, dst, err := ltx.LockAccountPair(ctx, churchID, tx.SourceID, tx.DestinationID)
	if err != nil {
		return nil, err
	}

	applyBalanceEffect(src, dst, tx.Amount, tx.ExchangeRate)

	if err := persistBalances(ctx, ltx, src, dst); err != nil {
		return nil, err
	}

	tx.Status = StatusCompleted

	if err := ltx.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}

	if err := ltx.Commit(); err != nil {
		return nil, fmt.Errorf("committing approval: %w", err)
	}

	return tx, nil
}

// Delete soft-deletes the transaction. Balances are deliberately left
// untouched: historical account balances remain the result of everything
// that was ever completed, and the row stays queryable for audit.
func (s *Service) Delete(ctx context.Context, churchID, id uuid.UUID) error {
	ltx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer ltx.Rollback()

	if _, err := ltx.GetTransactionForUpdate(ctx, churchID, id); err != nil {
		return err
	}

	if err := ltx.SoftDeleteTransaction(ctx, churchID, id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if err := ltx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, churchID, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, churchID, id)
}

func (s *Service) List(ctx context.Context, churchID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, churchID, filter)
}

func (s *Service) AuditLog(ctx context.Context, churchID, transactionID uuid.UUID) ([]*AuditEntry, error) {
	return s.repo.ListAuditEntries(ctx, churchID, transactionID)
}

// applyBalanceEffect debits the source by amount and credits the
// destination by amount×rate, each only when the account is an asset. The
// debit/credit asymmetry is what makes currency-converting transfers work:
// the source loses the raw amount, the destination gains the converted one.
func applyBalanceEffect(src, dst *account.Account, amount, rate decimal.Decimal) {
	if src.Type == account.TypeAsset {
		src.Balance = src.Balance.Sub(amount)
	}

	if dst.Type == account.TypeAsset {
		dst.Balance = dst.Balance.Add(amount.Mul(rate))
	}
}

func reverseBalanceEffect(src, dst *account.Account, amount, rate decimal.Decimal) {
	if src.Type == account.TypeAsset {
		src.Balance = src.Balance.Add(amount)
	}

	if dst.Type == account.TypeAsset {
		dst.Balance = dst.Balance.Sub(amount.Mul(rate))
	}
}

func persistBalances(ctx context.Context, ltx LedgerTx, accounts ...*account.Account) error {
	for _, acc := range accounts {
		if acc.Type != account.TypeAsset {
			continue
		}

		if err := ltx.SetAccountBalance(ctx, acc.ID, acc.Balance); err != nil {
			return fmt.Errorf("writing balance for account %s: %w", acc.ID, err)
		}
	}

	return nil
}
