// Package dynamic integrates the Dynamic wallet authentication provider.
// Tokens are RS256 JWTs verified against the environment's JWKS.
package dynamic

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/integration/vendor"
	"github.com/ethicbank/portal-api/internal/integration/wallet"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/golang-jwt/jwt/v5"
)

// Name is the registry name of the service.
const Name = wallet.ProviderDynamic

// minRefreshInterval bounds JWKS refetches triggered by unknown key ids.
const minRefreshInterval = time.Minute

// Service verifies Dynamic session tokens.
type Service struct {
	cfg    config.DynamicConfig
	client *vendor.Client
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	lastRefresh time.Time
}

// New creates the Dynamic service.
func New(cfg config.DynamicConfig, httpCfg config.VendorHTTPConfig, logger *slog.Logger, opts ...vendor.Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]vendor.Option{vendor.WithLogger(logger)}, opts...)
	if cfg.APIKey != "" {
		opts = append(opts, vendor.WithBearerToken(cfg.APIKey))
	}
	return &Service{
		cfg:    cfg,
		client: vendor.New(Name, cfg.BaseURL, httpCfg, opts...),
		logger: logger.With("service", Name),
		now:    time.Now,
	}
}

// IsConfigured reports whether the environment id and base URL are set.
func (s *Service) IsConfigured() bool {
	return !vendor.Missing(s.cfg.EnvironmentID, s.cfg.BaseURL)
}

// Initialize loads the signing keys.
func (s *Service) Initialize(ctx context.Context) error {
	if !s.IsConfigured() {
		return nil
	}
	return s.refreshKeys(ctx)
}

// HealthCheck verifies the JWKS endpoint is reachable.
func (s *Service) HealthCheck(ctx context.Context) registry.HealthResult {
	return registry.ResultFromError(s.client.Ping(ctx, s.jwksPath()))
}

func (s *Service) jwksPath() string {
	return "/api/v0/sdk/" + url.PathEscape(s.cfg.EnvironmentID) + "/.well-known/jwks"
}

func (s *Service) issuer() string {
	return "app.dynamicauth.com/" + s.cfg.EnvironmentID
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

func (s *Service) refreshKeys(ctx context.Context) error {
	var set jwks
	if err := s.client.Do(ctx, http.MethodGet, s.jwksPath(), nil, &set); err != nil {
		return fmt.Errorf("fetch dynamic jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := parseRSAKey(k)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping malformed jwk", "kid", k.Kid, "error", err)
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("dynamic jwks contains no usable RSA signing keys")
	}

	s.mu.Lock()
	s.keys = keys
	s.lastRefresh = s.now()
	s.mu.Unlock()
	return nil
}

func parseRSAKey(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	e := new(big.Int).SetBytes(eb)
	if !e.IsInt64() || e.Int64() < 3 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: int(e.Int64())}, nil
}

// keyFor returns the key for kid, refetching the JWKS once if it is unknown
// and the last refresh is old enough.
func (s *Service) keyFor(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	key, ok := s.keys[kid]
	stale := s.now().Sub(s.lastRefresh) >= minRefreshInterval
	s.mu.RUnlock()
	if ok {
		return key, nil
	}
	if !stale {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	if err := s.refreshKeys(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	key, ok = s.keys[kid]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return key, nil
}

type credential struct {
	Address string `json:"address"`
	Chain   string `json:"chain"`
	Format  string `json:"format"`
}

type sessionClaims struct {
	SessionID   string       `json:"sid"`
	Email       string       `json:"email"`
	Credentials []credential `json:"verified_credentials"`
	jwt.RegisteredClaims
}

// VerifyToken validates a Dynamic session token and returns its identity.
func (s *Service) VerifyToken(ctx context.Context, token string) (*wallet.Claims, error) {
	if !s.IsConfigured() {
		return nil, vendor.NotConfigured(Name)
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			return s.keyFor(ctx, kid)
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer()),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wallet.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", wallet.ErrInvalidToken)
	}

	out := &wallet.Claims{
		Provider:  Name,
		UserID:    claims.Subject,
		SessionID: claims.SessionID,
		Email:     claims.Email,
	}
	for _, c := range claims.Credentials {
		if c.Format == "blockchain" && c.Address != "" {
			out.Address = c.Address
			out.Chain = c.Chain
			break
		}
	}
	return out, nil
}
