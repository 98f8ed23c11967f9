package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/integration/wallet"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/ethicbank/portal-api/internal/service"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
)

// walletService is a registered wallet auth provider.
type walletService interface {
	registry.Service
	wallet.Verifier
}

// enricher is implemented by providers that can fill in email and wallet
// details missing from the token itself.
type enricher interface {
	Enrich(ctx context.Context, claims *wallet.Claims)
}

// Service manages portal sessions: password accounts, refresh and wallet
// provider logins.
type Service struct {
	users    store.UserStore
	wallets  store.WalletStore
	tokens   JWTService
	verifier PasswordVerifier
	registry *registry.Registry
	logger   *slog.Logger
}

// NewService creates the session service. reg may be nil, in which case
// wallet login is unavailable.
func NewService(
	users store.UserStore,
	wallets store.WalletStore,
	tokens JWTService,
	verifier PasswordVerifier,
	reg *registry.Registry,
	logger *slog.Logger,
) (*Service, error) {
	if users == nil {
		return nil, errors.New("users cannot be nil")
	}
	if wallets == nil {
		return nil, errors.New("wallets cannot be nil")
	}
	if tokens == nil {
		return nil, errors.New("tokens cannot be nil")
	}
	if verifier == nil {
		verifier = NewBcryptVerifier()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		wallets:  wallets,
		tokens:   tokens,
		verifier: verifier,
		registry: reg,
		logger:   logger.With(slog.String("component", "session_service")),
	}, nil
}

// Register creates a password account and opens a session for it.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login checks email and password. Unknown emails, wallet-only accounts and
// wrong passwords all yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !user.HasPassword() {
		return nil, nil, ErrInvalidCredentials
	}
	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.DebugContext(ctx, "password mismatch", "user_id", user.ID)
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new token pair. The user must
// still exist.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return s.issue(ctx, claims.UserID)
}

// WalletLogin verifies a Privy or Dynamic token and opens a portal session
// for the matching user. Unknown identities are provisioned: first by
// matching the provider email to an existing account, otherwise by creating
// a wallet-only user. A wallet address in the claims is linked on a best
// effort basis.
func (s *Service) WalletLogin(ctx context.Context, provider, token string) (*domain.User, *TokenPair, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !wallet.IsKnownProvider(provider) {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if token == "" {
		return nil, nil, ErrMissingToken
	}

	svc, err := s.provider(provider)
	if err != nil {
		return nil, nil, err
	}

	claims, err := svc.VerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidToken) {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, nil, err
	}
	if e, ok := svc.(enricher); ok && (claims.Email == "" || claims.Address == "") {
		e.Enrich(ctx, claims)
	}

	user, err := s.resolveUser(ctx, provider, claims)
	if err != nil {
		return nil, nil, err
	}
	s.linkWallet(ctx, user.ID, provider, claims)

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *Service) provider(name string) (walletService, error) {
	return service.LookupConfigured[walletService](s.registry, name)
}

func (s *Service) resolveUser(ctx context.Context, provider string, claims *wallet.Claims) (*domain.User, error) {
	externalID := domain.ExternalID(provider, claims.UserID)
	if externalID == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByExternalID(ctx, externalID)
	if err == nil {
		return user, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, err
	}

	if claims.Email != "" {
		user, err = s.users.GetByEmail(ctx, claims.Email)
		switch {
		case err == nil:
			if user.ExternalID == "" {
				user.ExternalID = externalID
				if err := s.users.Update(ctx, user); err != nil {
					return nil, err
				}
				s.logger.InfoContext(ctx, "linked wallet identity to existing user",
					"user_id", user.ID, "provider", provider)
			}
			return user, nil
		case !store.IsNotFoundError(err):
			return nil, err
		}
	}

	user, err = domain.NewExternalUser(provider, claims.UserID, claims.Email)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "provisioned wallet user", "user_id", user.ID, "provider", provider)
	return user, nil
}

func (s *Service) linkWallet(ctx context.Context, userID uuid.UUID, provider string, claims *wallet.Claims) {
	if claims.Address == "" {
		return
	}
	log := s.logger.With("user_id", userID, "provider", provider)

	w, err := domain.NewWallet(userID, claims.Address, chainFor(claims.Chain, claims.Address), domain.WalletProvider(provider))
	if err != nil {
		log.WarnContext(ctx, "ignoring wallet from provider claims", "error", err)
		return
	}
	existing, err := s.wallets.ListByUser(ctx, userID)
	if err != nil {
		log.WarnContext(ctx, "could not list wallets", "error", err)
		return
	}
	for _, e := range existing {
		if strings.EqualFold(e.Address, w.Address) && e.Chain == w.Chain {
			return
		}
	}
	w.IsPrimary = len(existing) == 0

	if err := s.wallets.Create(ctx, w); err != nil && !errors.Is(err, store.ErrWalletExists) {
		log.WarnContext(ctx, "could not link wallet", "error", err)
	}
}

// chainFor prefers the provider's chain name and otherwise guesses from the
// address format.
func chainFor(chain, address string) domain.Chain {
	if chain == "" && !strings.HasPrefix(address, "0x") {
		return domain.ChainSolana
	}
	return domain.ChainFromProvider(chain)
}

func (s *Service) issue(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	access, err := s.tokens.GenerateToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	pair := &TokenPair{AccessToken: access, RefreshToken: refresh}
	if claims, err := s.tokens.ValidateToken(ctx, access); err == nil {
		pair.ExpiresAt = claims.ExpiresAt
	}
	return pair, nil
}
