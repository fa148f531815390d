package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chapelhq/steward/internal/budget"
)

type budgetResponse struct {
	ID                uuid.UUID       `json:"id"`
	MinistryID        uuid.UUID       `json:"ministry_id"`
	CategoryAccountID uuid.UUID       `json:"category_account_id"`
	AmountLimit       decimal.Decimal `json:"amount_limit"`
	Period            budget.Period   `json:"period"`
	Year              int             `json:"year"`
	CreatedAt         time.Time       `json:"created_at"`
}

func toResponse(b *budget.Budget) budgetResponse {
	return budgetResponse{
		ID:                b.ID,
		MinistryID:        b.MinistryID,
		CategoryAccountID: b.CategoryAccountID,
		AmountLimit:       b.AmountLimit,
		Period:            b.Period,
		Year:              b.Year,
		CreatedAt:         b.CreatedAt,
	}
}

func toResponseList(budgets []*budget.Budget) []budgetResponse {
	resp := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		resp[i] = toResponse(b)
	}

	return resp
}
