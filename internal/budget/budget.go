package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("budget not found")

// Period is the horizon a spending ceiling applies to.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodEvent   Period = "event"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodYearly, PeriodEvent:
		return true
	}

	return false
}

// Budget is a spending ceiling for a (ministry, expense category, year)
// tuple. The store does not enforce uniqueness of the tuple; callers must
// not rely on there being at most one.
type Budget struct {
	ID                uuid.UUID
	ChurchID          uuid.UUID
	MinistryID        uuid.UUID
	CategoryAccountID uuid.UUID
	AmountLimit       decimal.Decimal
	Period            Period
	Year              int
	CreatedAt         time.Time
}
