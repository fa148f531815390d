package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// bankCSV parses semicolon-separated bank statement exports. The header row
// is found by landmark search because banks like to prepend metadata rows
// (account holder, IBAN, date range) before the actual table.
type bankCSV struct{}

func newBankCSV() *bankCSV {
	return &bankCSV{}
}

const (
	colDate   = "Date"
	colDesc   = "Description"
	colAmount = "Amount"
	colDebit  = "Debit"
	colCredit = "Credit"
)

var dateLayouts = []string{"02-01-2006", "2006-01-02", "02/01/2006"}

func (p *bankCSV) Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	var rows []Row

	headerFound := false

	idxDate := -1
	idxDesc := -1
	idxAmount := -1
	idxDebit := -1
	idxCredit := -1

	for _, record := range records {
		if !headerFound {
			matches := 0

			for i, col := range record {
				switch strings.TrimSpace(col) {
				case colDate:
					idxDate = i
					matches++
				case colDesc:
					idxDesc = i
					matches++
				case colAmount:
					idxAmount = i
					matches++
				case colDebit:
					idxDebit = i
					matches++
				case colCredit:
					idxCredit = i
					matches++
				}
			}

			// Date plus at least one amount-bearing column makes a header.
			if matches >= 2 && idxDate != -1 {
				headerFound = true
			}

			continue
		}

		maxIdx := max(idxDate, idxDesc, idxAmount, idxDebit, idxCredit)
		if len(record) <= maxIdx {
			continue
		}

		date, ok := parseDate(strings.TrimSpace(record[idxDate]))
		if !ok {
			// Footer or summary row.
			continue
		}

		description := ""
		if idxDesc != -1 {
			description = strings.TrimSpace(record[idxDesc])
		}

		amount, err := extractAmount(record, idxAmount, idxDebit, idxCredit)
		if err != nil {
			continue
		}

		if amount.IsZero() {
			continue
		}

		rows = append(rows, Row{
			Date:        date,
			Description: description,
			Amount:      amount,
		})
	}

	if !headerFound {
		return nil, fmt.Errorf("no recognizable header row found")
	}

	return rows, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, s); err == nil {
			return date, true
		}
	}

	return time.Time{}, false
}

// extractAmount reads either the single signed column or the debit/credit
// pair, whichever the header declared. Debits come back negative.
func extractAmount(record []string, idxAmount, idxDebit, idxCredit int) (decimal.Decimal, error) {
	if idxAmount != -1 {
		return parseAmount(strings.TrimSpace(record[idxAmount]))
	}

	if idxDebit != -1 {
		if s := strings.TrimSpace(record[idxDebit]); s != "" {
			debit, err := parseAmount(s)
			if err != nil {
				return decimal.Decimal{}, err
			}

			return debit.Neg(), nil
		}
	}

	if idxCredit != -1 {
		if s := strings.TrimSpace(record[idxCredit]); s != "" {
			return parseAmount(s)
		}
	}

	return decimal.Decimal{}, fmt.Errorf("no amount column")
}

// parseAmount handles both European ("1.234,56") and plain ("1234.56")
// decimal notation.
func parseAmount(s string) (decimal.Decimal, error) {
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return d, nil
}
