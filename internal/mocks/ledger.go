package mocks

import (
	"context"
	"database/sql"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// TransactionStore mocks store.TransactionStore.
type TransactionStore struct {
	mock.Mock
}

var _ store.TransactionStore = (*TransactionStore)(nil)

func (m *TransactionStore) Create(ctx context.Context, tx *domain.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *TransactionStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, id)
	t, _ := args.Get(0).(*domain.Transaction)
	return t, args.Error(1)
}

func (m *TransactionStore) ListByUser(ctx context.Context, userID uuid.UUID, page store.Page) ([]*domain.Transaction, error) {
	args := m.Called(ctx, userID, page)
	ts, _ := args.Get(0).([]*domain.Transaction)
	return ts, args.Error(1)
}

func (m *TransactionStore) UpdateStatus(ctx context.Context, tx *domain.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *TransactionStore) WithTx(*sql.Tx) store.TransactionStore {
	return m
}

// InvestmentStore mocks store.InvestmentStore.
type InvestmentStore struct {
	mock.Mock
}

var _ store.InvestmentStore = (*InvestmentStore)(nil)

func (m *InvestmentStore) Create(ctx context.Context, inv *domain.Investment) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *InvestmentStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Investment, error) {
	args := m.Called(ctx, userID, id)
	inv, _ := args.Get(0).(*domain.Investment)
	return inv, args.Error(1)
}

func (m *InvestmentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Investment, error) {
	args := m.Called(ctx, userID)
	invs, _ := args.Get(0).([]*domain.Investment)
	return invs, args.Error(1)
}

func (m *InvestmentStore) Update(ctx context.Context, inv *domain.Investment) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *InvestmentStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

// SavingsGoalStore mocks store.SavingsGoalStore.
type SavingsGoalStore struct {
	mock.Mock
}

var _ store.SavingsGoalStore = (*SavingsGoalStore)(nil)

func (m *SavingsGoalStore) Create(ctx context.Context, g *domain.SavingsGoal) error {
	return m.Called(ctx, g).Error(0)
}

func (m *SavingsGoalStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.SavingsGoal, error) {
	args := m.Called(ctx, userID, id)
	g, _ := args.Get(0).(*domain.SavingsGoal)
	return g, args.Error(1)
}

func (m *SavingsGoalStore) GetForUpdate(ctx context.Context, userID, id uuid.UUID) (*domain.SavingsGoal, error) {
	args := m.Called(ctx, userID, id)
	g, _ := args.Get(0).(*domain.SavingsGoal)
	return g, args.Error(1)
}

func (m *SavingsGoalStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SavingsGoal, error) {
	args := m.Called(ctx, userID)
	gs, _ := args.Get(0).([]*domain.SavingsGoal)
	return gs, args.Error(1)
}

func (m *SavingsGoalStore) Update(ctx context.Context, g *domain.SavingsGoal) error {
	return m.Called(ctx, g).Error(0)
}

func (m *SavingsGoalStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *SavingsGoalStore) WithTx(*sql.Tx) store.SavingsGoalStore {
	return m
}

// RewardStore mocks store.RewardStore.
type RewardStore struct {
	mock.Mock
}

var _ store.RewardStore = (*RewardStore)(nil)

func (m *RewardStore) Create(ctx context.Context, r *domain.Reward) error {
	return m.Called(ctx, r).Error(0)
}

func (m *RewardStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Reward, error) {
	args := m.Called(ctx, userID, id)
	r, _ := args.Get(0).(*domain.Reward)
	return r, args.Error(1)
}

func (m *RewardStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Reward, error) {
	args := m.Called(ctx, userID)
	rs, _ := args.Get(0).([]*domain.Reward)
	return rs, args.Error(1)
}

func (m *RewardStore) Redeem(ctx context.Context, r *domain.Reward) error {
	return m.Called(ctx, r).Error(0)
}

func (m *RewardStore) WithTx(*sql.Tx) store.RewardStore {
	return m
}

// NotificationStore mocks store.NotificationStore.
type NotificationStore struct {
	mock.Mock
}

var _ store.NotificationStore = (*NotificationStore)(nil)

func (m *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *NotificationStore) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page store.Page) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, page)
	ns, _ := args.Get(0).([]*domain.Notification)
	return ns, args.Error(1)
}

func (m *NotificationStore) MarkRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, userID, id)
	n, _ := args.Get(0).(*domain.Notification)
	return n, args.Error(1)
}

// ChatStore mocks store.ChatStore.
type ChatStore struct {
	mock.Mock
}

var _ store.ChatStore = (*ChatStore)(nil)

func (m *ChatStore) Create(ctx context.Context, msg *domain.ChatMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *ChatStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	args := m.Called(ctx, userID, limit)
	ms, _ := args.Get(0).([]*domain.ChatMessage)
	return ms, args.Error(1)
}
