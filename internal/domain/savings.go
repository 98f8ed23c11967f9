package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Savings goal validation errors
var (
	ErrEmptySavingsGoalID     = validationError("savings goal ID cannot be empty")
	ErrEmptySavingsGoalUserID = validationError("savings goal user ID cannot be empty")
	ErrEmptySavingsGoalName   = validationError("savings goal name cannot be empty")
	ErrNegativeSavings        = validationError("current amount cannot be negative")
	ErrDeadlineInPast         = validationError("deadline must be in the future")
)

// SavingsGoal tracks progress toward a target amount.
type SavingsGoal struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Currency      string          `json:"currency"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	ReachedAt     *time.Time      `json:"reached_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewSavingsGoal creates an empty goal.
func NewSavingsGoal(userID uuid.UUID, name string, target decimal.Decimal, currency string, deadline *time.Time) (*SavingsGoal, error) {
	now := time.Now().UTC()
	if deadline != nil && !deadline.After(now) {
		return nil, ErrDeadlineInPast
	}
	g := &SavingsGoal{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          strings.TrimSpace(name),
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		Currency:      strings.ToUpper(strings.TrimSpace(currency)),
		Deadline:      deadline,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks if the SavingsGoal has valid data.
func (g *SavingsGoal) Validate() error {
	if g.ID == uuid.Nil {
		return ErrEmptySavingsGoalID
	}
	if g.UserID == uuid.Nil {
		return ErrEmptySavingsGoalUserID
	}
	if g.Name == "" {
		return ErrEmptySavingsGoalName
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.IsNegative() {
		return ErrNegativeSavings
	}
	if !validCurrency(g.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// Reached reports whether the target has been met.
func (g *SavingsGoal) Reached() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// Deposit adds amount to the goal. It reports true exactly once: on the
// deposit that first reaches the target.
func (g *SavingsGoal) Deposit(amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, ErrInvalidAmount
	}
	wasReached := g.ReachedAt != nil
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	now := time.Now().UTC()
	g.UpdatedAt = now
	if !wasReached && g.Reached() {
		g.ReachedAt = &now
		return true, nil
	}
	return false, nil
}

// Progress returns completion as a percentage capped at 100.
func (g *SavingsGoal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	p := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
	if p.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return p
}
