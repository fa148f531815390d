package budget

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chapelhq/steward/internal/auth"
	"github.com/chapelhq/steward/internal/budget"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Delete("/{id}", h.delete)
}

type createBudgetRequest struct {
	MinistryID        uuid.UUID       `json:"ministry_id"`
	CategoryAccountID uuid.UUID       `json:"category_account_id"`
	AmountLimit       decimal.Decimal `json:"amount_limit"`
	Period            budget.Period   `json:"period"`
	Year              int             `json:"year"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.FromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req createBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.MinistryID == uuid.Nil || req.CategoryAccountID == uuid.Nil {
		http.Error(w, "ministry_id and category_account_id are required", http.StatusBadRequest)
		return
	}

	if !req.Period.Valid() {
		http.Error(w, "invalid period", http.StatusBadRequest)
		return
	}

	if !req.AmountLimit.IsPositive() {
		http.Error(w, "amount_limit must be positive", http.StatusBadRequest)
		return
	}

	b, err := h.svc.Create(r.Context(), ident.ChurchID, budget.CreateParams{
		MinistryID:        req.MinistryID,
		CategoryAccountID: req.CategoryAccountID,
		AmountLimit:       req.AmountLimit,
		Period:            req.Period,
		Year:              req.Year,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(b)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.FromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	filter := budget.ListFilter{}

	if s := r.URL.Query().Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}

		filter.Year = &year
	}

	budgets, err := h.svc.List(r.Context(), ident.ChurchID, filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(budgets)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.FromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), ident.ChurchID, id); err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "budget not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
