package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/integration/chat"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
)

// Replier produces the assistant's answer to message given prior history.
type Replier interface {
	Reply(ctx context.Context, history []domain.ChatMessage, message string) (string, error)
}

// ChatService runs the in-app assistant conversation.
type ChatService interface {
	// Send stores the user's message, asks the assistant and stores the
	// reply. The user's message is kept even when the assistant fails.
	Send(ctx context.Context, userID uuid.UUID, message string) (*domain.ChatMessage, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ChatMessage, error)
}

type chatService struct {
	messages   store.ChatStore
	registry   *registry.Registry
	maxHistory int
	logger     *slog.Logger
}

// NewChatService creates a ChatService. The assistant is looked up in reg
// under chat.Name on every call, so it may be configured later.
func NewChatService(messages store.ChatStore, reg *registry.Registry, maxHistory int, logger *slog.Logger) (ChatService, error) {
	if messages == nil {
		return nil, errors.New("messages cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{
		messages:   messages,
		registry:   reg,
		maxHistory: maxHistory,
		logger:     logger.With("component", "chat_service"),
	}, nil
}

func (s *chatService) Send(ctx context.Context, userID uuid.UUID, message string) (*domain.ChatMessage, error) {
	userMsg, err := domain.NewChatMessage(userID, domain.ChatRoleUser, message)
	if err != nil {
		return nil, err
	}

	replier, err := LookupConfigured[Replier](s.registry, chat.Name)
	if err != nil {
		return nil, err
	}

	recent, err := s.messages.ListRecent(ctx, userID, s.maxHistory)
	if err != nil {
		return nil, NewServiceError("chat", "failed to load history", err)
	}
	history := make([]domain.ChatMessage, 0, len(recent))
	for _, m := range recent {
		history = append(history, *m)
	}

	if err := s.messages.Create(ctx, userMsg); err != nil {
		return nil, NewServiceError("chat", "failed to save message", err)
	}

	text, err := replier.Reply(ctx, history, userMsg.Content)
	if err != nil {
		s.logger.WarnContext(ctx, "assistant reply failed", "error", err, "user_id", userID)
		return nil, err
	}

	reply, err := domain.NewChatMessage(userID, domain.ChatRoleAssistant, text)
	if err != nil {
		return nil, err
	}
	if err := s.messages.Create(ctx, reply); err != nil {
		return nil, NewServiceError("chat", "failed to save reply", err)
	}
	return reply, nil
}

func (s *chatService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	page := store.Page{Limit: limit}.Normalize()
	msgs, err := s.messages.ListRecent(ctx, userID, page.Limit)
	if err != nil {
		return nil, NewServiceError("chat_history", "failed to load history", err)
	}
	return msgs, nil
}
