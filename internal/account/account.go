package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("account not found")

// Type classifies a treasury account.
type Type string

const (
	TypeAsset     Type = "asset"
	TypeIncome    Type = "income"
	TypeExpense   Type = "expense"
	TypeLiability Type = "liability"
)

func (t Type) Valid() bool {
	switch t {
	case TypeAsset, TypeIncome, TypeExpense, TypeLiability:
		return true
	}

	return false
}

// Account is a church-scoped treasury account. Balance is only maintained
// for asset accounts; the other types are categorical labels and their
// balance field is never mutated by the ledger.
type Account struct {
	ID        uuid.UUID
	ChurchID  uuid.UUID
	Name      string
	Type      Type
	Balance   decimal.Decimal
	Currency  string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}
