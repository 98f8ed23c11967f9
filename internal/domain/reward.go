package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Reward validation errors
var (
	ErrEmptyRewardID     = validationError("reward ID cannot be empty")
	ErrEmptyRewardUserID = validationError("reward user ID cannot be empty")
	ErrInvalidPoints     = validationError("reward points must be positive")
	ErrEmptyRewardReason = validationError("reward reason cannot be empty")
)

// ErrRewardAlreadyRedeemed is returned when redeeming twice.
var ErrRewardAlreadyRedeemed = errors.New("reward already redeemed")

// Reason codes for automatically granted rewards.
const (
	RewardReasonGoalReached = "savings_goal_reached"
	RewardReasonSignup      = "signup"
)

// GoalReachedPoints is awarded when a savings goal is reached.
const GoalReachedPoints = 100

// Reward is a loyalty point grant.
type Reward struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Points     int        `json:"points"`
	Reason     string     `json:"reason"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewReward creates an unredeemed reward.
func NewReward(userID uuid.UUID, points int, reason string) (*Reward, error) {
	r := &Reward{
		ID:        uuid.New(),
		UserID:    userID,
		Points:    points,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks if the Reward has valid data.
func (r *Reward) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRewardID
	}
	if r.UserID == uuid.Nil {
		return ErrEmptyRewardUserID
	}
	if r.Points <= 0 {
		return ErrInvalidPoints
	}
	if r.Reason == "" {
		return ErrEmptyRewardReason
	}
	return nil
}

// Redeem marks the reward as used.
func (r *Reward) Redeem() error {
	if r.RedeemedAt != nil {
		return ErrRewardAlreadyRedeemed
	}
	now := time.Now().UTC()
	r.RedeemedAt = &now
	return nil
}
