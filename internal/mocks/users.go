package mocks

import (
	"context"
	"database/sql"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// UserStore mocks store.UserStore.
type UserStore struct {
	mock.Mock
}

var _ store.UserStore = (*UserStore)(nil)

func (m *UserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserStore) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	args := m.Called(ctx, externalID)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// WithTx returns the mock itself so expectations carry over.
func (m *UserStore) WithTx(*sql.Tx) store.UserStore {
	return m
}

func userOrNil(v any) *domain.User {
	u, _ := v.(*domain.User)
	return u
}

// WalletStore mocks store.WalletStore.
type WalletStore struct {
	mock.Mock
}

var _ store.WalletStore = (*WalletStore)(nil)

func (m *WalletStore) Create(ctx context.Context, w *domain.Wallet) error {
	return m.Called(ctx, w).Error(0)
}

func (m *WalletStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, id)
	w, _ := args.Get(0).(*domain.Wallet)
	return w, args.Error(1)
}

func (m *WalletStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	ws, _ := args.Get(0).([]*domain.Wallet)
	return ws, args.Error(1)
}

func (m *WalletStore) Update(ctx context.Context, w *domain.Wallet) error {
	return m.Called(ctx, w).Error(0)
}

func (m *WalletStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *WalletStore) WithTx(*sql.Tx) store.WalletStore {
	return m
}
