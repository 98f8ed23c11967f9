package store

import (
	"context"
	"database/sql"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/google/uuid"
)

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

// DefaultPageLimit applies when Page.Limit is zero; MaxPageLimit caps it.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// TransactionStore persists money movements, newest first.
type TransactionStore interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page Page) ([]*domain.Transaction, error)
	// UpdateStatus persists a settlement and the external reference.
	UpdateStatus(ctx context.Context, tx *domain.Transaction) error
	WithTx(tx *sql.Tx) TransactionStore
}

// InvestmentStore persists investment positions.
type InvestmentStore interface {
	Create(ctx context.Context, inv *domain.Investment) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Investment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Investment, error)
	Update(ctx context.Context, inv *domain.Investment) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// SavingsGoalStore persists savings goals.
type SavingsGoalStore interface {
	Create(ctx context.Context, g *domain.SavingsGoal) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.SavingsGoal, error)
	// GetForUpdate locks the goal row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID, id uuid.UUID) (*domain.SavingsGoal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SavingsGoal, error)
	Update(ctx context.Context, g *domain.SavingsGoal) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	WithTx(tx *sql.Tx) SavingsGoalStore
}

// RewardStore persists loyalty rewards.
type RewardStore interface {
	Create(ctx context.Context, r *domain.Reward) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Reward, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Reward, error)
	// Redeem marks the reward redeemed. It fails with
	// domain.ErrRewardAlreadyRedeemed when it already was.
	Redeem(ctx context.Context, r *domain.Reward) error
	WithTx(tx *sql.Tx) RewardStore
}

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page Page) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error)
}

// ChatStore persists chat history.
type ChatStore interface {
	Create(ctx context.Context, m *domain.ChatMessage) error
	// ListRecent returns up to limit of the user's latest messages in
	// chronological order.
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ChatMessage, error)
}
