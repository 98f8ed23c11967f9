package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	TypeTransactionCreated = "transaction.created"
	TypeSavingsGoalReached = "savings.goal_reached"
)

// Event is a domain event with a JSON payload.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	UserID    uuid.UUID       `json:"user_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an event of eventType for userID.
func NewEvent(eventType string, userID uuid.UUID, payload any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// TransactionCreated is the payload of TypeTransactionCreated.
type TransactionCreated struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

// SavingsGoalReached is the payload of TypeSavingsGoalReached.
type SavingsGoalReached struct {
	GoalID   uuid.UUID       `json:"goal_id"`
	Name     string          `json:"name"`
	Target   decimal.Decimal `json:"target"`
	Currency string          `json:"currency"`
}

// EventHandler processes events. Handlers receive every event and must
// ignore types they do not handle.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter publishes events to handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}
