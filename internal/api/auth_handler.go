package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	"github.com/ethicbank/portal-api/internal/service/auth"
)

// SessionService opens portal sessions. *auth.Service implements it.
type SessionService interface {
	Register(ctx context.Context, email, password string) (*domain.User, *auth.TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	WalletLogin(ctx context.Context, provider, token string) (*domain.User, *auth.TokenPair, error)
}

// AuthHandler serves the public /api/auth endpoints.
type AuthHandler struct {
	sessions SessionService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(sessions SessionService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, pair, err := h.sessions.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user registered",
		slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, newAuthResponse(user, pair))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, pair, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newAuthResponse(user, pair))
}

// RefreshToken handles POST /api/auth/refresh. Both tokens are rotated.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newAuthResponse(nil, pair))
}

// WalletLogin handles POST /api/auth/wallet. The provider token is verified
// by the named wallet service and the user is provisioned on first login.
func (h *AuthHandler) WalletLogin(w http.ResponseWriter, r *http.Request) {
	var req WalletLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, pair, err := h.sessions.WalletLogin(r.Context(), req.Provider, req.Token)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate wallet")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("wallet login",
		slog.String("user_id", user.ID.String()),
		slog.String("provider", req.Provider))
	shared.RespondWithJSON(w, r, http.StatusOK, newAuthResponse(user, pair))
}
