package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chapelhq/steward/internal/treasury"
)

type transactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	SourceID      uuid.UUID       `json:"source_account_id"`
	DestinationID uuid.UUID       `json:"dest_account_id"`
	MinistryID    *uuid.UUID      `json:"ministry_id,omitempty"`
	Status        treasury.Status `json:"status"`
	CreatedBy     uuid.UUID       `json:"created_by"`
	Date          time.Time       `json:"date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
}

type auditEntryResponse struct {
	ID             uuid.UUID       `json:"id"`
	TransactionID  uuid.UUID       `json:"transaction_id"`
	OldAmount      decimal.Decimal `json:"old_amount"`
	NewAmount      decimal.Decimal `json:"new_amount"`
	OldDescription string          `json:"old_description"`
	NewDescription string          `json:"new_description"`
	Reason         string          `json:"reason"`
	ChangedBy      uuid.UUID       `json:"changed_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toResponse(tx *treasury.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		Description:   tx.Description,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		ExchangeRate:  tx.ExchangeRate,
		SourceID:      tx.SourceID,
		DestinationID: tx.DestinationID,
		MinistryID:    tx.MinistryID,
		Status:        tx.Status,
		CreatedBy:     tx.CreatedBy,
		Date:          tx.Date,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
}

func toResponseList(txs []*treasury.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

func toAuditResponse(e *treasury.AuditEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:             e.ID,
		TransactionID:  e.TransactionID,
		OldAmount:      e.OldAmount,
		NewAmount:      e.NewAmount,
		OldDescription: e.OldDescription,
		NewDescription: e.NewDescription,
		Reason:         e.Reason,
		ChangedBy:      e.ChangedBy,
		CreatedAt:      e.CreatedAt,
	}
}

func toAuditResponseList(entries []*treasury.AuditEntry) []auditEntryResponse {
	resp := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toAuditResponse(e)
	}

	return resp
}
