package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification validation errors
var (
	ErrEmptyNotificationID     = validationError("notification ID cannot be empty")
	ErrEmptyNotificationUserID = validationError("notification user ID cannot be empty")
	ErrEmptyNotificationTitle  = validationError("notification title cannot be empty")
)

// Notification kinds
const (
	NotificationTransaction = "transaction"
	NotificationSavings     = "savings"
	NotificationReward      = "reward"
	NotificationKYC         = "kyc"
)

// Notification is an in-app message to a user.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewNotification creates an unread notification.
func NewNotification(userID uuid.UUID, kind, title, body string) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate checks if the Notification has valid data.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}
	if n.UserID == uuid.Nil {
		return ErrEmptyNotificationUserID
	}
	if n.Title == "" {
		return ErrEmptyNotificationTitle
	}
	return nil
}

// MarkRead sets ReadAt once; later calls keep the first timestamp.
func (n *Notification) MarkRead() {
	if n.ReadAt == nil {
		now := time.Now().UTC()
		n.ReadAt = &now
	}
}
