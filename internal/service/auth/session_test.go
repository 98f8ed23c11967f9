package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/integration/wallet"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/ethicbank/portal-api/internal/service"
	"github.com/ethicbank/portal-api/internal/service/auth"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUserStore is an in-memory store.UserStore.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[uuid.UUID]*domain.User{}}
}

func (m *memUserStore) Create(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
			return store.ErrEmailExists
		}
	}
	if u.Password != "" {
		hash, err := auth.HashPassword(u.Password, 4)
		if err != nil {
			return err
		}
		u.HashedPassword, u.Password = hash, ""
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserStore) find(match func(*domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.ID == id })
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.Email != "" && strings.EqualFold(u.Email, email) })
}

func (m *memUserStore) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.ExternalID == externalID })
}

func (m *memUserStore) Update(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return store.ErrUserNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *memUserStore) WithTx(*sql.Tx) store.UserStore { return m }

// memWalletStore is an in-memory store.WalletStore.
type memWalletStore struct {
	mu      sync.Mutex
	wallets []*domain.Wallet
	listErr error
}

func (m *memWalletStore) Create(ctx context.Context, w *domain.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets = append(m.wallets, w)
	return nil
}

func (m *memWalletStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Wallet, error) {
	return nil, store.ErrWalletNotFound
}

func (m *memWalletStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*domain.Wallet
	for _, w := range m.wallets {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memWalletStore) Update(ctx context.Context, w *domain.Wallet) error     { return nil }
func (m *memWalletStore) Delete(ctx context.Context, userID, id uuid.UUID) error { return nil }
func (m *memWalletStore) WithTx(*sql.Tx) store.WalletStore                       { return m }

// fakeProvider is a wallet auth provider registered in the registry.
type fakeProvider struct {
	configured bool
	claims     *wallet.Claims
	err        error
	enriched   bool
}

func (f *fakeProvider) Initialize(ctx context.Context) error { return nil }
func (f *fakeProvider) IsConfigured() bool                   { return f.configured }
func (f *fakeProvider) HealthCheck(ctx context.Context) registry.HealthResult {
	return registry.Healthy()
}

func (f *fakeProvider) VerifyToken(ctx context.Context, token string) (*wallet.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.claims
	return &cp, nil
}

func (f *fakeProvider) Enrich(ctx context.Context, claims *wallet.Claims) {
	f.enriched = true
	if claims.Address == "" {
		claims.Address = "0xabc0000000000000000000000000000000000001"
		claims.Chain = "ethereum"
	}
}

type fixture struct {
	svc     *auth.Service
	users   *memUserStore
	wallets *memWalletStore
	reg     *registry.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:   newMemUserStore(),
		wallets: &memWalletStore{},
		reg:     registry.New(),
	}
	svc, err := auth.NewService(f.users, f.wallets, newJWT(t), nil, f.reg, nil)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := auth.NewService(nil, &memWalletStore{}, newJWT(t), nil, nil, nil)
	assert.Error(t, err)
	_, err = auth.NewService(newMemUserStore(), nil, newJWT(t), nil, nil, nil)
	assert.Error(t, err)
	_, err = auth.NewService(newMemUserStore(), &memWalletStore{}, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, pair, err := f.svc.Register(ctx, "ana@example.org", "long enough password")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.False(t, pair.ExpiresAt.IsZero())

	_, _, err = f.svc.Register(ctx, "ANA@example.org", "long enough password")
	assert.ErrorIs(t, err, store.ErrEmailExists)

	got, _, err := f.svc.Login(ctx, "ana@example.org", "long enough password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Register(context.Background(), "ana@example.org", "short")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _, err := f.svc.Register(ctx, "ana@example.org", "long enough password")
	require.NoError(t, err)

	walletOnly, err := domain.NewExternalUser("privy", "did:privy:1", "wallet@example.org")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, walletOnly))

	tests := []struct {
		name, email, password string
	}{
		{"unknown_email", "nobody@example.org", "long enough password"},
		{"wrong_password", "ana@example.org", "not the password!"},
		{"wallet_only_account", "wallet@example.org", "long enough password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.svc.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		})
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, pair, err := f.svc.Register(ctx, "ana@example.org", "long enough password")
	require.NoError(t, err)

	next, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	_, err = f.svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)

	require.NoError(t, f.users.Delete(ctx, user.ID))
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestWalletLogin_ProvisionsUserAndWallet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.reg.Register(wallet.ProviderDynamic, &fakeProvider{
		configured: true,
		claims: &wallet.Claims{
			Provider: wallet.ProviderDynamic,
			UserID:   "dyn-user-1",
			Email:    "new@example.org",
			Address:  "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
			Chain:    "SOL",
		},
	})

	user, pair, err := f.svc.WalletLogin(ctx, "Dynamic", "provider-token")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, "dynamic:dyn-user-1", user.ExternalID)
	assert.False(t, user.HasPassword())

	wallets, err := f.wallets.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, domain.ChainSolana, wallets[0].Chain)
	assert.True(t, wallets[0].IsPrimary)

	again, _, err := f.svc.WalletLogin(ctx, "dynamic", "provider-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	wallets, _ = f.wallets.ListByUser(ctx, user.ID)
	assert.Len(t, wallets, 1, "wallet is linked once")
}

func TestWalletLogin_LinksExistingEmailAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	existing, _, err := f.svc.Register(ctx, "ana@example.org", "long enough password")
	require.NoError(t, err)

	provider := &fakeProvider{
		configured: true,
		claims:     &wallet.Claims{UserID: "did:privy:abc", Email: "ana@example.org"},
	}
	f.reg.Register(wallet.ProviderPrivy, provider)

	user, _, err := f.svc.WalletLogin(ctx, "privy", "tok")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.True(t, provider.enriched)

	stored, err := f.users.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "privy:did:privy:abc", stored.ExternalID)
	assert.True(t, stored.HasPassword())
}

func TestWalletLogin_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.reg.Register(wallet.ProviderDynamic, &fakeProvider{configured: false})
	f.reg.Register(wallet.ProviderPrivy, &fakeProvider{configured: true, err: wallet.ErrInvalidToken})

	_, _, err := f.svc.WalletLogin(ctx, "metamask", "tok")
	assert.ErrorIs(t, err, auth.ErrUnknownProvider)

	_, _, err = f.svc.WalletLogin(ctx, "privy", "")
	assert.ErrorIs(t, err, auth.ErrMissingToken)

	_, _, err = f.svc.WalletLogin(ctx, "dynamic", "tok")
	assert.ErrorIs(t, err, service.ErrUnavailable)

	_, _, err = f.svc.WalletLogin(ctx, "privy", "tok")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	upstream := errors.New("jwks unreachable")
	f.reg.Register(wallet.ProviderPrivy, &fakeProvider{configured: true, err: upstream})
	_, _, err = f.svc.WalletLogin(ctx, "privy", "tok")
	assert.ErrorIs(t, err, upstream)
}

func TestWalletLogin_WalletLinkFailureDoesNotBlockLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallets.listErr = errors.New("db down")
	f.reg.Register(wallet.ProviderDynamic, &fakeProvider{
		configured: true,
		claims:     &wallet.Claims{UserID: "dyn-2", Address: "0xabc0000000000000000000000000000000000002"},
	})

	_, pair, err := f.svc.WalletLogin(ctx, "dynamic", "tok")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestWalletLogin_NoRegistry(t *testing.T) {
	svc, err := auth.NewService(newMemUserStore(), &memWalletStore{}, newJWT(t), nil, nil, nil)
	require.NoError(t, err)
	_, _, err = svc.WalletLogin(context.Background(), "privy", "tok")
	assert.ErrorIs(t, err, service.ErrUnavailable)
}
