package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/chapelhq/steward/internal/importer"
)

func TestService_Import_BankCSV(t *testing.T) {
	type args struct {
		csvContent string
	}

	type testCase struct {
		name    string
		args    args
		wantLen int
		verify  func(t *testing.T, rows []importer.Row)
		wantErr bool
	}

	tests := []testCase{
		{
			name: "StatementWithMetadataPreamble",
			args: args{
				csvContent: `Account statement - 31-01-2026
Holder;FIRST PARISH
IBAN;PT50 0000

Date;Value date;Description;Amount;Balance
30-01-2026;30-01-2026;ELECTRICITY BILL;-85,40;914,60
09-01-2026;09-01-2026;SUNDAY OFFERING;1.250,00;1.000,00
`,
			},
			wantLen: 2,
			verify: func(t *testing.T, rows []importer.Row) {
				assert.Equal(t, "ELECTRICITY BILL", rows[0].Description)
				assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("-85.40")))

				expectedDate, _ := time.Parse("02-01-2006", "30-01-2026")
				assert.True(t, rows[0].Date.Equal(expectedDate))

				assert.Equal(t, "SUNDAY OFFERING", rows[1].Description)
				assert.True(t, rows[1].Amount.Equal(decimal.RequireFromString("1250")))
			},
		},
		{
			name: "DebitCreditColumns",
			args: args{
				csvContent: `Date;Description;Debit;Credit
15-02-2026;CLEANING SERVICE;120,00;
16-02-2026;TITHE TRANSFER;;300,00
`,
			},
			wantLen: 2,
			verify: func(t *testing.T, rows []importer.Row) {
				assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(-120)))
				assert.True(t, rows[1].Amount.Equal(decimal.NewFromInt(300)))
			},
		},
		{
			name: "ISODatesAndPlainDecimals",
			args: args{
				csvContent: `Date;Description;Amount
2026-03-01;BUILDING FUND GIFT;42.50
`,
			},
			wantLen: 1,
			verify: func(t *testing.T, rows []importer.Row) {
				assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("42.5")))
			},
		},
		{
			name: "FooterRowsSkipped",
			args: args{
				csvContent: `Date;Description;Amount
30-01-2026;OFFERING;10,00
Total;;10,00
`,
			},
			wantLen: 1,
		},
		{
			name: "NoHeader",
			args: args{
				csvContent: "just;some;noise\n",
			},
			wantErr: true,
		},
		{
			name:    "EmptyFile",
			args:    args{csvContent: ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := importer.NewService()
			got, err := svc.Import(importer.FormatBankCSV, strings.NewReader(tt.args.csvContent))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)

			if tt.verify != nil {
				tt.verify(t, got)
			}
		})
	}
}

func TestService_Import_UnknownFormat(t *testing.T) {
	svc := importer.NewService()

	_, err := svc.Import(importer.Format("ofx"), strings.NewReader("whatever"))
	assert.Error(t, err)
}
