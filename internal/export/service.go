package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chapelhq/steward/internal/account"
	"github.com/chapelhq/steward/internal/treasury"
)

// Service produces read-only exports of the ledger for the reporting
// component. Nothing here writes back.
type Service struct {
	transactions *treasury.Service
	accounts     *account.Service
}

func NewService(txService *treasury.Service, accService *account.Service) *Service {
	return &Service{transactions: txService, accounts: accService}
}

var csvHeader = []string{
	"date", "description", "classification", "status", "amount", "currency",
	"exchange_rate", "source_account", "destination_account", "ministry_id",
}

// WriteTransactionsCSV streams the church's transactions matching the
// filter as CSV, with account ids resolved to names.
func (s *Service) WriteTransactionsCSV(ctx context.Context, churchID uuid.UUID, filter treasury.ListFilter, w io.Writer) error {
	txs, err := s.transactions.List(ctx, churchID, filter)
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}

	accs, err := s.accounts.List(ctx, churchID, account.ListFilter{})
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	names := make(map[uuid.UUID]string, len(accs))
	types := make(map[uuid.UUID]account.Type, len(accs))

	for _, acc := range accs {
		names[acc.ID] = acc.Name
		types[acc.ID] = acc.Type
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		ministry := ""
		if tx.MinistryID != nil {
			ministry = tx.MinistryID.String()
		}

		record := []string{
			tx.Date.Format("2006-01-02"),
			tx.Description,
			string(treasury.Classify(types[tx.SourceID], types[tx.DestinationID])),
			string(tx.Status),
			tx.Amount.String(),
			tx.Currency,
			tx.ExchangeRate.String(),
			accountLabel(names, tx.SourceID),
			accountLabel(names, tx.DestinationID),
			ministry,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

// accountLabel falls back to the raw id for accounts that were deleted
// after the transaction was recorded.
func accountLabel(names map[uuid.UUID]string, id uuid.UUID) string {
	if name, ok := names[id]; ok {
		return name
	}

	return id.String()
}

// Summary renders completed totals per classification, for humans.
func (s *Service) Summary(ctx context.Context, churchID uuid.UUID, filter treasury.ListFilter) (string, error) {
	txs, err := s.transactions.List(ctx, churchID, filter)
	if err != nil {
		return "", fmt.Errorf("listing transactions: %w", err)
	}

	accs, err := s.accounts.List(ctx, churchID, account.ListFilter{})
	if err != nil {
		return "", fmt.Errorf("listing accounts: %w", err)
	}

	types := make(map[uuid.UUID]account.Type, len(accs))
	for _, acc := range accs {
		types[acc.ID] = acc.Type
	}

	totals := map[treasury.Classification]decimal.Decimal{}
	pending := 0

	for _, tx := range txs {
		if tx.Status != treasury.StatusCompleted {
			pending++
			continue
		}

		class := treasury.Classify(types[tx.SourceID], types[tx.DestinationID])
		totals[class] = totals[class].Add(tx.Amount)
	}

	var sb strings.Builder

	for _, class := range []treasury.Classification{treasury.ClassIncome, treasury.ClassExpense, treasury.ClassTransfer} {
		sb.WriteString(fmt.Sprintf("%s: %s\n", class, totals[class].StringFixed(2)))
	}

	if pending > 0 {
		sb.WriteString(fmt.Sprintf("pending approval: %d transaction(s)\n", pending))
	}

	return sb.String(), nil
}
