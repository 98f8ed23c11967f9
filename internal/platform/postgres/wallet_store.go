package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
)

const walletColumns = `id, user_id, address, chain, provider, label, is_primary, created_at, updated_at`

// PostgresWalletStore implements store.WalletStore.
type PostgresWalletStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWalletStore creates a wallet store.
func NewPostgresWalletStore(db store.DBTX, logger *slog.Logger) *PostgresWalletStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresWalletStore{db: db, logger: logger.With("component", "wallet_store")}
}

var _ store.WalletStore = (*PostgresWalletStore)(nil)

// WithTx implements store.WalletStore.
func (s *PostgresWalletStore) WithTx(tx *sql.Tx) store.WalletStore {
	return &PostgresWalletStore{db: tx, logger: s.logger}
}

// Create implements store.WalletStore.
func (s *PostgresWalletStore) Create(ctx context.Context, w *domain.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.IsPrimary {
		if err := s.clearPrimary(ctx, w.UserID, w.ID); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallets (`+walletColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		w.ID, w.UserID, w.Address, w.Chain, w.Provider, w.Label, w.IsPrimary, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "failed to link wallet",
			"user_id", w.UserID, "chain", w.Chain, "error", err)
		return MapError(err, store.ErrWalletNotFound)
	}
	return nil
}

func scanWallet(row rowScanner) (*domain.Wallet, error) {
	var w domain.Wallet
	var chain, provider string
	if err := row.Scan(&w.ID, &w.UserID, &w.Address, &chain, &provider, &w.Label, &w.IsPrimary,
		&w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Chain = domain.Chain(chain)
	w.Provider = domain.WalletProvider(provider)
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return &w, nil
}

// GetByID implements store.WalletStore.
func (s *PostgresWalletStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Wallet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = $1 AND user_id = $2`, id, userID)
	w, err := scanWallet(row)
	if err != nil {
		return nil, MapError(err, store.ErrWalletNotFound)
	}
	return w, nil
}

// ListByUser implements store.WalletStore. The primary wallet comes first.
func (s *PostgresWalletStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+walletColumns+` FROM wallets
		WHERE user_id = $1
		ORDER BY is_primary DESC, created_at ASC`, userID)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	wallets := []*domain.Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (s *PostgresWalletStore) clearPrimary(ctx context.Context, userID, keep uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE wallets SET is_primary = FALSE, updated_at = NOW()
		 WHERE user_id = $1 AND id <> $2 AND is_primary`, userID, keep)
	return MapError(err, nil)
}

// Update implements store.WalletStore.
func (s *PostgresWalletStore) Update(ctx context.Context, w *domain.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.IsPrimary {
		if err := s.clearPrimary(ctx, w.UserID, w.ID); err != nil {
			return err
		}
	}
	w.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE wallets SET label = $3, is_primary = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2`,
		w.ID, w.UserID, w.Label, w.IsPrimary, w.UpdatedAt)
	if err != nil {
		return MapError(err, store.ErrWalletNotFound)
	}
	return CheckRowsAffected(res, store.ErrWalletNotFound)
}

// Delete implements store.WalletStore.
func (s *PostgresWalletStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wallets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return MapError(err, store.ErrWalletNotFound)
	}
	return CheckRowsAffected(res, store.ErrWalletNotFound)
}
