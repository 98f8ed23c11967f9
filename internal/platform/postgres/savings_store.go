package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
)

const savingsColumns = `id, user_id, name, target_amount, current_amount, currency, deadline, reached_at, created_at, updated_at`

// PostgresSavingsGoalStore implements store.SavingsGoalStore.
type PostgresSavingsGoalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSavingsGoalStore creates a savings goal store.
func NewPostgresSavingsGoalStore(db store.DBTX, logger *slog.Logger) *PostgresSavingsGoalStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSavingsGoalStore{db: db, logger: logger.With("component", "savings_store")}
}

var _ store.SavingsGoalStore = (*PostgresSavingsGoalStore)(nil)

// WithTx implements store.SavingsGoalStore.
func (s *PostgresSavingsGoalStore) WithTx(tx *sql.Tx) store.SavingsGoalStore {
	return &PostgresSavingsGoalStore{db: tx, logger: s.logger}
}

// Create implements store.SavingsGoalStore.
func (s *PostgresSavingsGoalStore) Create(ctx context.Context, g *domain.SavingsGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO savings_goals (`+savingsColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		g.ID, g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, g.Currency,
		nullTime(g.Deadline), nullTime(g.ReachedAt), g.CreatedAt, g.UpdatedAt)
	return MapError(err, store.ErrSavingsGoalNotFound)
}

func scanSavingsGoal(row rowScanner) (*domain.SavingsGoal, error) {
	var g domain.SavingsGoal
	var deadline, reached sql.NullTime
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Currency,
		&deadline, &reached, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.Deadline = timePtr(deadline)
	g.ReachedAt = timePtr(reached)
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return &g, nil
}

func (s *PostgresSavingsGoalStore) get(ctx context.Context, userID, id uuid.UUID, suffix string) (*domain.SavingsGoal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+savingsColumns+` FROM savings_goals WHERE id = $1 AND user_id = $2`+suffix, id, userID)
	g, err := scanSavingsGoal(row)
	if err != nil {
		return nil, MapError(err, store.ErrSavingsGoalNotFound)
	}
	return g, nil
}

// GetByID implements store.SavingsGoalStore.
func (s *PostgresSavingsGoalStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.SavingsGoal, error) {
	return s.get(ctx, userID, id, "")
}

// GetForUpdate implements store.SavingsGoalStore.
func (s *PostgresSavingsGoalStore) GetForUpdate(ctx context.Context, userID, id uuid.UUID) (*domain.SavingsGoal, error) {
	return s.get(ctx, userID, id, " FOR UPDATE")
}

// ListByUser implements store.SavingsGoalStore.
func (s *PostgresSavingsGoalStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SavingsGoal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+savingsColumns+` FROM savings_goals WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.SavingsGoal{}
	for rows.Next() {
		g, err := scanSavingsGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Update implements store.SavingsGoalStore.
func (s *PostgresSavingsGoalStore) Update(ctx context.Context, g *domain.SavingsGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE savings_goals
		SET name = $3, target_amount = $4, current_amount = $5, deadline = $6, reached_at = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2`,
		g.ID, g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, nullTime(g.Deadline), nullTime(g.ReachedAt), g.UpdatedAt)
	if err != nil {
		return MapError(err, store.ErrSavingsGoalNotFound)
	}
	return CheckRowsAffected(res, store.ErrSavingsGoalNotFound)
}

// Delete implements store.SavingsGoalStore.
func (s *PostgresSavingsGoalStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM savings_goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return MapError(err, store.ErrSavingsGoalNotFound)
	}
	return CheckRowsAffected(res, store.ErrSavingsGoalNotFound)
}
