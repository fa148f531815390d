package importer

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// Format identifies a supported statement layout.
type Format string

const (
	FormatBankCSV Format = "bankcsv"
)

// Row is one parsed statement line. Amount keeps the statement's sign:
// positive for money arriving on the account, negative for money leaving.
type Row struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}

type Importer interface {
	Parse(r io.Reader) ([]Row, error)
}
