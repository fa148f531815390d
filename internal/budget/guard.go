package budget

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chapelhq/steward/internal/account"
)

// Decision is the guard's verdict on a prospective transaction.
type Decision string

const (
	DecisionCompleted       Decision = "completed"
	DecisionPendingApproval Decision = "pending_approval"
)

// Guard decides whether an expense must be held for approval. The threshold
// comes from configuration; per-budget amount limits are stored for
// reporting but are not summed against historical spend here.
type Guard struct {
	threshold decimal.Decimal
}

func NewGuard(threshold decimal.Decimal) *Guard {
	return &Guard{threshold: threshold}
}

// Evaluate gates only ministry-scoped asset→expense transactions: amounts
// strictly greater than the threshold are held. Everything else completes
// immediately.
func (g *Guard) Evaluate(sourceType, destType account.Type, ministryID *uuid.UUID, amount decimal.Decimal) Decision {
	if sourceType != account.TypeAsset || destType != account.TypeExpense || ministryID == nil {
		return DecisionCompleted
	}

	if amount.GreaterThan(g.threshold) {
		return DecisionPendingApproval
	}

	return DecisionCompleted
}
