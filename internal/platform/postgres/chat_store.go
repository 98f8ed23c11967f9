package postgres

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
)

const chatColumns = `id, user_id, role, content, created_at`

// PostgresChatStore implements store.ChatStore.
type PostgresChatStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChatStore creates a chat history store.
func NewPostgresChatStore(db store.DBTX, logger *slog.Logger) *PostgresChatStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresChatStore{db: db, logger: logger.With("component", "chat_store")}
}

var _ store.ChatStore = (*PostgresChatStore)(nil)

// Create implements store.ChatStore.
func (s *PostgresChatStore) Create(ctx context.Context, m *domain.ChatMessage) error {
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (`+chatColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.UserID, m.Role, m.Content, m.CreatedAt)
	return MapError(err, nil)
}

// ListRecent implements store.ChatStore.
func (s *PostgresChatStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	if limit <= 0 {
		return []*domain.ChatMessage{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+chatColumns+` FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.ChatMessage{}
	for rows.Next() {
		var m domain.ChatMessage
		var role string
		if err := rows.Scan(&m.ID, &m.UserID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = domain.ChatRole(role)
		m.CreatedAt = m.CreatedAt.UTC()
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}
