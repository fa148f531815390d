package importcsv

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chapelhq/steward/internal/auth"
	"github.com/chapelhq/steward/internal/importer"
	"github.com/chapelhq/steward/internal/treasury"
)

type Handler struct {
	importSvc *importer.Service
	txSvc     *treasury.Service
}

func NewHandler(importSvc *importer.Service, txSvc *treasury.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importSuccessResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// importCSV takes a multipart statement upload and records each row as a
// transaction against the bank account. Positive rows come in from the
// income account, negative rows go out to the expense account. Rows that
// already exist in the period (same date, amount and description) are
// skipped so re-uploading a statement is harmless.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.FromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	format := importer.Format(r.FormValue("format"))
	if format == "" {
		format = importer.FormatBankCSV
	}

	bankID, err := uuid.Parse(r.FormValue("bank_account_id"))
	if err != nil {
		http.Error(w, "bank_account_id field is required", http.StatusBadRequest)
		return
	}

	incomeID, err := uuid.Parse(r.FormValue("income_account_id"))
	if err != nil {
		http.Error(w, "income_account_id field is required", http.StatusBadRequest)
		return
	}

	expenseID, err := uuid.Parse(r.FormValue("expense_account_id"))
	if err != nil {
		http.Error(w, "expense_account_id field is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := h.importSvc.Import(format, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(rows) == 0 {
		writeJSON(w, importSuccessResponse{})
		return
	}

	existing, err := h.existingKeys(r, ident.ChurchID, rows)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := importSuccessResponse{}

	for _, row := range rows {
		if existing[rowKey(row.Date, row.Amount.Abs().String(), row.Description)] {
			resp.Skipped++
			continue
		}

		params := treasury.CreateParams{
			Description: row.Description,
			Amount:      row.Amount.Abs(),
			Date:        row.Date,
		}

		if row.Amount.IsNegative() {
			params.SourceID = bankID
			params.DestinationID = expenseID
		} else {
			params.SourceID = incomeID
			params.DestinationID = bankID
		}

		if _, err := h.txSvc.Create(r.Context(), ident.ChurchID, ident.UserID, params); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp.Imported++
	}

	writeJSON(w, resp)
}

// existingKeys loads the church's transactions over the rows' date span
// and indexes them by the same key the rows are matched on.
func (h *Handler) existingKeys(r *http.Request, churchID uuid.UUID, rows []importer.Row) (map[string]bool, error) {
	start, end := rows[0].Date, rows[0].Date

	for _, row := range rows[1:] {
		if row.Date.Before(start) {
			start = row.Date
		}

		if row.Date.After(end) {
			end = row.Date
		}
	}

	txs, err := h.txSvc.List(r.Context(), churchID, treasury.ListFilter{
		StartDate: new(start),
		EndDate:   new(end),
	})
	if err != nil {
		return nil, err
	}

	keys := make(map[string]bool, len(txs))
	for _, tx := range txs {
		keys[rowKey(tx.Date, tx.Amount.String(), tx.Description)] = true
	}

	return keys, nil
}

func rowKey(date time.Time, amount, description string) string {
	return fmt.Sprintf("%s|%s|%s", date.Format(time.DateOnly), amount, description)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
