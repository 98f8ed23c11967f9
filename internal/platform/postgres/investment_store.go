package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
)

const investmentColumns = `id, user_id, asset, category, units, cost_basis, currency, created_at, updated_at`

// PostgresInvestmentStore implements store.InvestmentStore.
type PostgresInvestmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInvestmentStore creates an investment store.
func NewPostgresInvestmentStore(db store.DBTX, logger *slog.Logger) *PostgresInvestmentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresInvestmentStore{db: db, logger: logger.With("component", "investment_store")}
}

var _ store.InvestmentStore = (*PostgresInvestmentStore)(nil)

// Create implements store.InvestmentStore.
func (s *PostgresInvestmentStore) Create(ctx context.Context, inv *domain.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO investments (`+investmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.ID, inv.UserID, inv.Asset, inv.Category, inv.Units, inv.CostBasis, inv.Currency,
		inv.CreatedAt, inv.UpdatedAt)
	return MapError(err, store.ErrInvestmentNotFound)
}

func scanInvestment(row rowScanner) (*domain.Investment, error) {
	var inv domain.Investment
	var category string
	if err := row.Scan(&inv.ID, &inv.UserID, &inv.Asset, &category, &inv.Units, &inv.CostBasis,
		&inv.Currency, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	inv.Category = domain.ImpactCategory(category)
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return &inv, nil
}

// GetByID implements store.InvestmentStore.
func (s *PostgresInvestmentStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Investment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE id = $1 AND user_id = $2`, id, userID)
	inv, err := scanInvestment(row)
	if err != nil {
		return nil, MapError(err, store.ErrInvestmentNotFound)
	}
	return inv, nil
}

// ListByUser implements store.InvestmentStore.
func (s *PostgresInvestmentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Investment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.Investment{}
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Update implements store.InvestmentStore.
func (s *PostgresInvestmentStore) Update(ctx context.Context, inv *domain.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	inv.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE investments SET units = $3, cost_basis = $4, category = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2`,
		inv.ID, inv.UserID, inv.Units, inv.CostBasis, inv.Category, inv.UpdatedAt)
	if err != nil {
		return MapError(err, store.ErrInvestmentNotFound)
	}
	return CheckRowsAffected(res, store.ErrInvestmentNotFound)
}

// Delete implements store.InvestmentStore.
func (s *PostgresInvestmentStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM investments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return MapError(err, store.ErrInvestmentNotFound)
	}
	return CheckRowsAffected(res, store.ErrInvestmentNotFound)
}
