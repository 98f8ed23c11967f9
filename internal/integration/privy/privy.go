// Package privy integrates the Privy embedded-wallet authentication provider.
package privy

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/integration/vendor"
	"github.com/ethicbank/portal-api/internal/integration/wallet"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/golang-jwt/jwt/v5"
)

// Name is the registry name of the service.
const Name = wallet.ProviderPrivy

const issuer = "privy.io"

// Service verifies Privy access tokens and reads Privy user records.
type Service struct {
	cfg    config.PrivyConfig
	client *vendor.Client
	logger *slog.Logger

	mu  sync.RWMutex
	key *ecdsa.PublicKey
}

// New creates the Privy service. Missing credentials leave it unconfigured.
func New(cfg config.PrivyConfig, httpCfg config.VendorHTTPConfig, logger *slog.Logger, opts ...vendor.Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]vendor.Option{
		vendor.WithBasicAuth(cfg.AppID, cfg.AppSecret),
		vendor.WithHeader("privy-app-id", cfg.AppID),
		vendor.WithLogger(logger),
	}, opts...)
	return &Service{
		cfg:    cfg,
		client: vendor.New(Name, cfg.BaseURL, httpCfg, opts...),
		logger: logger.With("service", Name),
	}
}

// IsConfigured reports whether the app id, secret and verification key are set.
func (s *Service) IsConfigured() bool {
	return !vendor.Missing(s.cfg.AppID, s.cfg.AppSecret, s.cfg.VerificationKey, s.cfg.BaseURL)
}

// Initialize parses the ES256 verification key.
func (s *Service) Initialize(ctx context.Context) error {
	if !s.IsConfigured() {
		return nil
	}
	key, err := jwt.ParseECPublicKeyFromPEM([]byte(normalizePEM(s.cfg.VerificationKey)))
	if err != nil {
		return fmt.Errorf("parse privy verification key: %w", err)
	}
	s.mu.Lock()
	s.key = key
	s.mu.Unlock()
	return nil
}

// HealthCheck fetches the app record, which exercises the app credentials.
func (s *Service) HealthCheck(ctx context.Context) registry.HealthResult {
	s.mu.RLock()
	ready := s.key != nil
	s.mu.RUnlock()
	if !ready {
		return registry.Unhealthyf("verification key not loaded")
	}
	return registry.ResultFromError(s.client.Ping(ctx, "/api/v1/apps/"+url.PathEscape(s.cfg.AppID)))
}

type accessClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// VerifyToken validates a Privy access token and returns its identity.
func (s *Service) VerifyToken(ctx context.Context, token string) (*wallet.Claims, error) {
	s.mu.RLock()
	key := s.key
	s.mu.RUnlock()
	if key == nil {
		return nil, vendor.NotConfigured(Name)
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(s.cfg.AppID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wallet.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", wallet.ErrInvalidToken)
	}

	return &wallet.Claims{
		Provider:  Name,
		UserID:    claims.Subject,
		SessionID: claims.SessionID,
	}, nil
}

// LinkedAccount is one identity linked to a Privy user.
type LinkedAccount struct {
	Type      string `json:"type"`
	Address   string `json:"address"`
	ChainType string `json:"chain_type,omitempty"`
}

// User is a Privy user record.
type User struct {
	ID             string          `json:"id"`
	LinkedAccounts []LinkedAccount `json:"linked_accounts"`
}

// Email returns the first linked email address.
func (u *User) Email() string {
	for _, a := range u.LinkedAccounts {
		if a.Type == "email" {
			return a.Address
		}
	}
	return ""
}

// Wallets returns the linked wallet accounts.
func (u *User) Wallets() []LinkedAccount {
	var out []LinkedAccount
	for _, a := range u.LinkedAccounts {
		if a.Type == "wallet" {
			out = append(out, a)
		}
	}
	return out
}

// GetUser fetches the Privy user identified by did.
func (s *Service) GetUser(ctx context.Context, did string) (*User, error) {
	if !s.IsConfigured() {
		return nil, vendor.NotConfigured(Name)
	}
	var u User
	if err := s.client.Do(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(did), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Enrich fills email and primary wallet from the Privy user record. Lookup
// failures are logged and leave claims unchanged.
func (s *Service) Enrich(ctx context.Context, claims *wallet.Claims) {
	u, err := s.GetUser(ctx, claims.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "could not fetch privy user", "error", err)
		return
	}
	claims.Email = u.Email()
	if ws := u.Wallets(); len(ws) > 0 {
		claims.Address = ws[0].Address
		claims.Chain = ws[0].ChainType
	}
}

// normalizePEM accepts keys supplied through environment variables, where
// newlines are often escaped.
func normalizePEM(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), `\n`, "\n")
}
