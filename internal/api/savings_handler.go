package api

import (
	"log/slog"
	"net/http"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/service"
)

// SavingsHandler serves /api/savings.
type SavingsHandler struct {
	savings service.SavingsService
	logger  *slog.Logger
}

// NewSavingsHandler creates a SavingsHandler.
func NewSavingsHandler(savings service.SavingsService, logger *slog.Logger) *SavingsHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for SavingsHandler")
	}
	return &SavingsHandler{savings: savings, logger: logger.With(slog.String("component", "savings_handler"))}
}

// List handles GET /api/savings.
func (h *SavingsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	goals, err := h.savings.ListGoals(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list savings goals")
		return
	}
	out := make([]SavingsGoalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, newSavingsGoalResponse(g))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Create handles POST /api/savings.
func (h *SavingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateSavingsGoalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	target, err := domain.ParseAmount(req.TargetAmount)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	goal, err := h.savings.CreateGoal(r.Context(), userID, req.Name, target, req.Currency, req.Deadline)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create savings goal")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, newSavingsGoalResponse(goal))
}

// Get handles GET /api/savings/{id}.
func (h *SavingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	goal, err := h.savings.GetGoal(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load savings goal")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newSavingsGoalResponse(goal))
}

// Deposit handles POST /api/savings/{id}/deposit.
func (h *SavingsHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req DepositRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	goal, err := h.savings.Deposit(r.Context(), userID, id, amount)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to deposit")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newSavingsGoalResponse(goal))
}

// Delete handles DELETE /api/savings/{id}.
func (h *SavingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.savings.DeleteGoal(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete savings goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
