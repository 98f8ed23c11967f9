package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/shopspring/decimal"
)

// InvestmentHandler serves /api/investments.
type InvestmentHandler struct {
	investments store.InvestmentStore
	logger      *slog.Logger
}

// NewInvestmentHandler creates an InvestmentHandler.
func NewInvestmentHandler(investments store.InvestmentStore, logger *slog.Logger) *InvestmentHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for InvestmentHandler")
	}
	return &InvestmentHandler{investments: investments, logger: logger.With(slog.String("component", "investment_handler"))}
}

// InvestmentResponse adds the average unit cost to a position.
type InvestmentResponse struct {
	*domain.Investment
	AverageCost string `json:"average_cost"`
}

func newInvestmentResponse(inv *domain.Investment) InvestmentResponse {
	return InvestmentResponse{Investment: inv, AverageCost: inv.AverageCost().String()}
}

// List handles GET /api/investments.
func (h *InvestmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	invs, err := h.investments.ListByUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list investments")
		return
	}
	out := make([]InvestmentResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, newInvestmentResponse(inv))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Create handles POST /api/investments.
func (h *InvestmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateInvestmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	units, err := parseDecimal(req.Units)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	cost, err := parseDecimal(req.CostBasis)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	inv, err := domain.NewInvestment(userID, req.Asset, domain.ImpactCategory(strings.ToLower(req.Category)), units, cost, req.Currency)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.investments.Create(r.Context(), inv); err != nil {
		HandleAPIError(w, r, err, "Failed to record investment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, newInvestmentResponse(inv))
}

// Get handles GET /api/investments/{id}.
func (h *InvestmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.investments.GetByID(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load investment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newInvestmentResponse(inv))
}

// Update handles PATCH /api/investments/{id}.
func (h *InvestmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateInvestmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	inv, err := h.investments.GetByID(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update investment")
		return
	}
	if req.Category != nil {
		inv.Category = domain.ImpactCategory(strings.ToLower(*req.Category))
	}
	if req.Units != nil {
		if inv.Units, err = parseDecimal(*req.Units); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}
	if req.CostBasis != nil {
		if inv.CostBasis, err = parseDecimal(*req.CostBasis); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}
	if err := inv.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	inv.UpdatedAt = time.Now().UTC()

	if err := h.investments.Update(r.Context(), inv); err != nil {
		HandleAPIError(w, r, err, "Failed to update investment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newInvestmentResponse(inv))
}

// Delete handles DELETE /api/investments/{id}.
func (h *InvestmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.investments.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete investment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseDecimal parses a decimal string, allowing zero and negatives so the
// entity's own validation decides.
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	return d, nil
}
