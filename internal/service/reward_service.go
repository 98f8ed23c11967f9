package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
)

// RewardSummary is a user's reward list with the unredeemed point total.
type RewardSummary struct {
	Rewards         []*domain.Reward `json:"rewards"`
	AvailablePoints int              `json:"available_points"`
}

// RewardService exposes loyalty rewards.
type RewardService interface {
	ListRewards(ctx context.Context, userID uuid.UUID) (*RewardSummary, error)
	// Redeem fails with domain.ErrRewardAlreadyRedeemed for a reward that
	// was already redeemed.
	Redeem(ctx context.Context, userID, id uuid.UUID) (*domain.Reward, error)
}

type rewardService struct {
	rewards store.RewardStore
	logger  *slog.Logger
}

// NewRewardService creates a RewardService.
func NewRewardService(rewards store.RewardStore, logger *slog.Logger) (RewardService, error) {
	if rewards == nil {
		return nil, errors.New("rewards cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &rewardService{rewards: rewards, logger: logger.With("component", "reward_service")}, nil
}

func (s *rewardService) ListRewards(ctx context.Context, userID uuid.UUID) (*RewardSummary, error) {
	rewards, err := s.rewards.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_rewards", "failed to list rewards", err)
	}
	summary := &RewardSummary{Rewards: rewards}
	for _, r := range rewards {
		if r.RedeemedAt == nil {
			summary.AvailablePoints += r.Points
		}
	}
	return summary, nil
}

func (s *rewardService) Redeem(ctx context.Context, userID, id uuid.UUID) (*domain.Reward, error) {
	reward, err := s.rewards.GetByID(ctx, userID, id)
	if err != nil {
		return nil, NewServiceError("redeem_reward", "failed to retrieve reward", err)
	}
	if err := s.rewards.Redeem(ctx, reward); err != nil {
		return nil, NewServiceError("redeem_reward", "failed to redeem reward", err)
	}
	s.logger.InfoContext(ctx, "reward redeemed", "reward_id", id, "user_id", userID, "points", reward.Points)
	return reward, nil
}
