package api

import (
	"log/slog"
	"net/http"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	"github.com/ethicbank/portal-api/internal/service"
)

// AccountHandler serves /api/me.
type AccountHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(users service.UserService, logger *slog.Logger) *AccountHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for AccountHandler")
	}
	return &AccountHandler{users: users, logger: logger.With(slog.String("component", "account_handler"))}
}

// Me handles GET /api/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/me.
func (h *AccountHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// DeleteMe handles DELETE /api/me. Everything the user owns is removed.
func (h *AccountHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.users.DeleteUser(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete account")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Info("account deleted",
		slog.String("user_id", userID.String()))
	w.WriteHeader(http.StatusNoContent)
}
