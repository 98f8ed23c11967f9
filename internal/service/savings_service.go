package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/events"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SavingsService manages savings goals.
type SavingsService interface {
	CreateGoal(ctx context.Context, userID uuid.UUID, name string, target decimal.Decimal, currency string, deadline *time.Time) (*domain.SavingsGoal, error)
	GetGoal(ctx context.Context, userID, id uuid.UUID) (*domain.SavingsGoal, error)
	ListGoals(ctx context.Context, userID uuid.UUID) ([]*domain.SavingsGoal, error)
	// Deposit adds amount to the goal under a row lock. The deposit that
	// first reaches the target emits savings.goal_reached.
	Deposit(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (*domain.SavingsGoal, error)
	DeleteGoal(ctx context.Context, userID, id uuid.UUID) error
}

type savingsService struct {
	goals   store.SavingsGoalStore
	db      *sql.DB
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewSavingsService creates a SavingsService.
func NewSavingsService(goals store.SavingsGoalStore, db *sql.DB, emitter events.EventEmitter, logger *slog.Logger) (SavingsService, error) {
	if goals == nil {
		return nil, errors.New("goals cannot be nil")
	}
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &savingsService{
		goals:   goals,
		db:      db,
		emitter: emitter,
		logger:  logger.With("component", "savings_service"),
	}, nil
}

func (s *savingsService) CreateGoal(ctx context.Context, userID uuid.UUID, name string, target decimal.Decimal, currency string, deadline *time.Time) (*domain.SavingsGoal, error) {
	goal, err := domain.NewSavingsGoal(userID, name, target, currency, deadline)
	if err != nil {
		return nil, err
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, NewServiceError("create_goal", "failed to save goal", err)
	}
	s.logger.InfoContext(ctx, "savings goal created", "goal_id", goal.ID, "user_id", userID)
	return goal, nil
}

func (s *savingsService) GetGoal(ctx context.Context, userID, id uuid.UUID) (*domain.SavingsGoal, error) {
	goal, err := s.goals.GetByID(ctx, userID, id)
	if err != nil {
		return nil, NewServiceError("get_goal", "failed to retrieve goal", err)
	}
	return goal, nil
}

func (s *savingsService) ListGoals(ctx context.Context, userID uuid.UUID) ([]*domain.SavingsGoal, error) {
	goals, err := s.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_goals", "failed to list goals", err)
	}
	return goals, nil
}

func (s *savingsService) Deposit(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (*domain.SavingsGoal, error) {
	var (
		goal    *domain.SavingsGoal
		reached bool
	)
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txGoals := s.goals.WithTx(tx)

		g, err := txGoals.GetForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		if reached, err = g.Deposit(amount); err != nil {
			return err
		}
		if err := txGoals.Update(ctx, g); err != nil {
			return err
		}
		goal = g
		return nil
	})
	if err != nil {
		return nil, NewServiceError("deposit", "failed to deposit into goal", err)
	}

	s.logger.InfoContext(ctx, "savings deposit recorded",
		"goal_id", id,
		"user_id", userID,
		"reached", reached)

	if reached {
		emit(ctx, s.emitter, s.logger, events.TypeSavingsGoalReached, userID, events.SavingsGoalReached{
			GoalID:   goal.ID,
			Name:     goal.Name,
			Target:   goal.TargetAmount,
			Currency: goal.Currency,
		})
	}
	return goal, nil
}

func (s *savingsService) DeleteGoal(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.goals.Delete(ctx, userID, id); err != nil {
		return NewServiceError("delete_goal", "failed to delete goal", err)
	}
	return nil
}
