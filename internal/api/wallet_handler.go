package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	"github.com/ethicbank/portal-api/internal/store"
)

// WalletHandler serves /api/wallets.
type WalletHandler struct {
	wallets store.WalletStore
	logger  *slog.Logger
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(wallets store.WalletStore, logger *slog.Logger) *WalletHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for WalletHandler")
	}
	return &WalletHandler{wallets: wallets, logger: logger.With(slog.String("component", "wallet_handler"))}
}

// List handles GET /api/wallets. The primary wallet comes first.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	wallets, err := h.wallets.ListByUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list wallets")
		return
	}
	if wallets == nil {
		wallets = []*domain.Wallet{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, wallets)
}

// Create handles POST /api/wallets. The user's first wallet becomes primary.
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateWalletRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	wallet, err := domain.NewWallet(userID, req.Address, domain.Chain(req.Chain), domain.WalletProviderExternal)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	wallet.Label = req.Label
	wallet.IsPrimary = req.IsPrimary

	if !wallet.IsPrimary {
		existing, err := h.wallets.ListByUser(r.Context(), userID)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to link wallet")
			return
		}
		wallet.IsPrimary = len(existing) == 0
	}

	if err := h.wallets.Create(r.Context(), wallet); err != nil {
		HandleAPIError(w, r, err, "Failed to link wallet")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("wallet linked",
		slog.String("wallet_id", wallet.ID.String()),
		slog.String("chain", string(wallet.Chain)))
	shared.RespondWithJSON(w, r, http.StatusCreated, wallet)
}

// Get handles GET /api/wallets/{id}.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	wallet, err := h.wallets.GetByID(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load wallet")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, wallet)
}

// Update handles PATCH /api/wallets/{id}.
func (h *WalletHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateWalletRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	wallet, err := h.wallets.GetByID(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update wallet")
		return
	}
	if req.Label != nil {
		wallet.Label = *req.Label
	}
	if req.IsPrimary != nil {
		wallet.IsPrimary = *req.IsPrimary
	}
	wallet.UpdatedAt = time.Now().UTC()

	if err := h.wallets.Update(r.Context(), wallet); err != nil {
		HandleAPIError(w, r, err, "Failed to update wallet")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, wallet)
}

// Delete handles DELETE /api/wallets/{id}.
func (h *WalletHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.wallets.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to unlink wallet")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
