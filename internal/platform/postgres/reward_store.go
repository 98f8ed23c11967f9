package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
)

const rewardColumns = `id, user_id, points, reason, redeemed_at, created_at`

// PostgresRewardStore implements store.RewardStore.
type PostgresRewardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRewardStore creates a reward store.
func NewPostgresRewardStore(db store.DBTX, logger *slog.Logger) *PostgresRewardStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRewardStore{db: db, logger: logger.With("component", "reward_store")}
}

var _ store.RewardStore = (*PostgresRewardStore)(nil)

// WithTx implements store.RewardStore.
func (s *PostgresRewardStore) WithTx(tx *sql.Tx) store.RewardStore {
	return &PostgresRewardStore{db: tx, logger: s.logger}
}

// Create implements store.RewardStore.
func (s *PostgresRewardStore) Create(ctx context.Context, r *domain.Reward) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rewards (`+rewardColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.UserID, r.Points, r.Reason, nullTime(r.RedeemedAt), r.CreatedAt)
	return MapError(err, store.ErrRewardNotFound)
}

func scanReward(row rowScanner) (*domain.Reward, error) {
	var r domain.Reward
	var redeemed sql.NullTime
	if err := row.Scan(&r.ID, &r.UserID, &r.Points, &r.Reason, &redeemed, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.RedeemedAt = timePtr(redeemed)
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

// GetByID implements store.RewardStore.
func (s *PostgresRewardStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Reward, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+rewardColumns+` FROM rewards WHERE id = $1 AND user_id = $2`, id, userID)
	r, err := scanReward(row)
	if err != nil {
		return nil, MapError(err, store.ErrRewardNotFound)
	}
	return r, nil
}

// ListByUser implements store.RewardStore.
func (s *PostgresRewardStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Reward, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+rewardColumns+` FROM rewards WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.Reward{}
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Redeem implements store.RewardStore. The conditional update makes
// concurrent redemptions of the same reward succeed at most once.
func (s *PostgresRewardStore) Redeem(ctx context.Context, r *domain.Reward) error {
	if err := r.Redeem(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE rewards SET redeemed_at = $3
		WHERE id = $1 AND user_id = $2 AND redeemed_at IS NULL`,
		r.ID, r.UserID, nullTime(r.RedeemedAt))
	if err != nil {
		return MapError(err, store.ErrRewardNotFound)
	}
	if err := CheckRowsAffected(res, domain.ErrRewardAlreadyRedeemed); err != nil {
		r.RedeemedAt = nil
		return err
	}
	return nil
}
