package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
)

const notificationColumns = `id, user_id, kind, title, body, read_at, created_at`

// PostgresNotificationStore implements store.NotificationStore.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a notification store.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNotificationStore{db: db, logger: logger.With("component", "notification_store")}
}

var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// Create implements store.NotificationStore.
func (s *PostgresNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, n.Kind, n.Title, n.Body, nullTime(n.ReadAt), n.CreatedAt)
	return MapError(err, store.ErrNotificationNotFound)
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	var readAt sql.NullTime
	if err := row.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &readAt, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.ReadAt = timePtr(readAt)
	n.CreatedAt = n.CreatedAt.UTC()
	return &n, nil
}

// ListByUser implements store.NotificationStore.
func (s *PostgresNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page store.Page) ([]*domain.Notification, error) {
	page = page.Normalize()
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1 AND ($2 = FALSE OR read_at IS NULL)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, userID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead implements store.NotificationStore. Marking an already read
// notification keeps the original read time.
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns, id, userID)
	n, err := scanNotification(row)
	if err != nil {
		return nil, MapError(err, store.ErrNotificationNotFound)
	}
	return n, nil
}
