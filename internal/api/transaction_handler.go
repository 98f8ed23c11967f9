package api

import (
	"log/slog"
	"net/http"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/service"
)

// TransactionHandler serves /api/transactions.
type TransactionHandler struct {
	ledger service.LedgerService
	logger *slog.Logger
}

// NewTransactionHandler creates a TransactionHandler.
func NewTransactionHandler(ledger service.LedgerService, logger *slog.Logger) *TransactionHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for TransactionHandler")
	}
	return &TransactionHandler{ledger: ledger, logger: logger.With(slog.String("component", "transaction_handler"))}
}

// List handles GET /api/transactions?limit=&offset=, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	txs, err := h.ledger.ListTransactions(r.Context(), userID, pageFromQuery(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list transactions")
		return
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, txs)
}

// Create handles POST /api/transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateTransactionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tx, err := h.ledger.CreateTransaction(r.Context(), userID, service.NewTransaction{
		Type:        domain.TransactionType(req.Type),
		Amount:      amount,
		Currency:    req.Currency,
		Description: req.Description,
		WalletID:    req.WalletID,
		ExternalRef: req.ExternalRef,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record transaction")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, tx)
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	tx, err := h.ledger.GetTransaction(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load transaction")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tx)
}

// Settle handles POST /api/transactions/{id}/settle.
func (h *TransactionHandler) Settle(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req SettleTransactionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	tx, err := h.ledger.Settle(r.Context(), userID, id, domain.TransactionStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to settle transaction")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tx)
}
