package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/events"
	"github.com/ethicbank/portal-api/internal/store"
)

// Notifier reacts to domain events: it writes in-app notifications and
// grants the savings goal reward.
type Notifier struct {
	notifications store.NotificationStore
	rewards       store.RewardStore
	logger        *slog.Logger
}

var _ events.EventHandler = (*Notifier)(nil)

// NewNotifier creates the event handler.
func NewNotifier(notifications store.NotificationStore, rewards store.RewardStore, logger *slog.Logger) (*Notifier, error) {
	if notifications == nil {
		return nil, errors.New("notifications cannot be nil")
	}
	if rewards == nil {
		return nil, errors.New("rewards cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		notifications: notifications,
		rewards:       rewards,
		logger:        logger.With("component", "notifier"),
	}, nil
}

// HandleEvent implements events.EventHandler. Unknown event types are
// ignored.
func (n *Notifier) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeTransactionCreated:
		return n.transactionCreated(ctx, event)
	case events.TypeSavingsGoalReached:
		return n.goalReached(ctx, event)
	default:
		return nil
	}
}

func (n *Notifier) transactionCreated(ctx context.Context, event *events.Event) error {
	var p events.TransactionCreated
	if err := event.UnmarshalPayload(&p); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}

	title := fmt.Sprintf("New %s", humanize(p.Type))
	body := fmt.Sprintf("%s %s is pending.", p.Amount.StringFixed(2), p.Currency)
	return n.notify(ctx, event, domain.NotificationTransaction, title, body)
}

func (n *Notifier) goalReached(ctx context.Context, event *events.Event) error {
	var p events.SavingsGoalReached
	if err := event.UnmarshalPayload(&p); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}

	reward, err := domain.NewReward(event.UserID, domain.GoalReachedPoints, domain.RewardReasonGoalReached)
	if err != nil {
		return err
	}
	if err := n.rewards.Create(ctx, reward); err != nil {
		return fmt.Errorf("grant goal reward: %w", err)
	}
	n.logger.InfoContext(ctx, "reward granted",
		"user_id", event.UserID,
		"reward_id", reward.ID,
		"goal_id", p.GoalID)

	body := fmt.Sprintf("You reached %s %s for %q and earned %d points.",
		p.Target.StringFixed(2), p.Currency, p.Name, reward.Points)
	return n.notify(ctx, event, domain.NotificationSavings, "Savings goal reached", body)
}

func (n *Notifier) notify(ctx context.Context, event *events.Event, kind, title, body string) error {
	note, err := domain.NewNotification(event.UserID, kind, title, body)
	if err != nil {
		return err
	}
	if err := n.notifications.Create(ctx, note); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	n.logger.DebugContext(ctx, "notification created",
		"notification_id", note.ID,
		"user_id", event.UserID,
		"event_id", event.ID)
	return nil
}

func humanize(txType string) string {
	switch domain.TransactionType(txType) {
	case domain.TransactionCardPayment:
		return "card payment"
	case "":
		return "transaction"
	default:
		return txType
	}
}
