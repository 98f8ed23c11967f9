package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatRole is the author of a chat message.
type ChatRole string

// Chat roles
const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// MaxChatMessageLength bounds a single chat message.
const MaxChatMessageLength = 4000

// Chat message validation errors
var (
	ErrEmptyChatMessageID = validationError("chat message ID cannot be empty")
	ErrEmptyChatUserID    = validationError("chat message user ID cannot be empty")
	ErrInvalidChatRole    = validationError("invalid chat role")
	ErrChatMessageTooLong = validationError("chat message is too long")
)

// ChatMessage is one turn of a user's conversation with the assistant.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatMessage creates a validated chat message.
func NewChatMessage(userID uuid.UUID, role ChatRole, content string) (*ChatMessage, error) {
	m := &ChatMessage{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      role,
		Content:   strings.TrimSpace(content),
		CreatedAt: time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks if the ChatMessage has valid data.
func (m *ChatMessage) Validate() error {
	if m.ID == uuid.Nil {
		return ErrEmptyChatMessageID
	}
	if m.UserID == uuid.Nil {
		return ErrEmptyChatUserID
	}
	if m.Role != ChatRoleUser && m.Role != ChatRoleAssistant {
		return ErrInvalidChatRole
	}
	if m.Content == "" {
		return ErrEmptyContent
	}
	if len(m.Content) > MaxChatMessageLength {
		return ErrChatMessageTooLong
	}
	return nil
}
