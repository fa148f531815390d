package treasury

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chapelhq/steward/internal/account"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrInvalidAccount  = errors.New("invalid source or destination account")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrImmutableStatus = errors.New("transaction status does not allow this operation")
)

// Status is set once at creation. Completed is the only status whose
// amendments carry balance effects; pending approval leaves balances
// untouched until the transaction is approved.
type Status string

const (
	StatusCompleted       Status = "completed"
	StatusPendingApproval Status = "pending_approval"
)

// Classification is derived from the account-type pair, never stored.
type Classification string

const (
	ClassIncome   Classification = "income"
	ClassExpense  Classification = "expense"
	ClassTransfer Classification = "transfer"
	ClassOther    Classification = "other"
)

// Classify derives the transaction category from the source and destination
// account types. Pairs outside the three known shapes are permitted but have
// no balance effect beyond the per-account asset rule.
func Classify(sourceType, destType account.Type) Classification {
	switch {
	case sourceType == account.TypeIncome && destType == account.TypeAsset:
		return ClassIncome
	case sourceType == account.TypeAsset && destType == account.TypeExpense:
		return ClassExpense
	case sourceType == account.TypeAsset && destType == account.TypeAsset:
		return ClassTransfer
	}

	return ClassOther
}

// Transaction is a directed monetary movement between exactly two accounts
// of one church. The source is debited by Amount and the destination
// credited by Amount×ExchangeRate, each only when the account is an asset.
type Transaction struct {
	ID            uuid.UUID
	ChurchID      uuid.UUID
	Description   string
	Amount        decimal.Decimal
	Currency      string
	ExchangeRate  decimal.Decimal
	SourceID      uuid.UUID
	DestinationID uuid.UUID
	MinistryID    *uuid.UUID
	Status        Status
	CreatedBy     uuid.UUID
	Date          time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
}

// AuditEntry records one amendment of a transaction. Entries are append
// only; they are never updated or deleted.
type AuditEntry struct {
	ID             uuid.UUID
	TransactionID  uuid.UUID
	OldAmount      decimal.Decimal
	NewAmount      decimal.Decimal
	OldDescription string
	NewDescription string
	Reason         string
	ChangedBy      uuid.UUID
	CreatedAt      time.Time
}
