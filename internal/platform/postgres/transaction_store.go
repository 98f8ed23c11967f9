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

const transactionColumns = `id, user_id, wallet_id, type, status, amount, currency, description, external_ref, created_at, updated_at`

// PostgresTransactionStore implements store.TransactionStore.
type PostgresTransactionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTransactionStore creates a transaction store.
func NewPostgresTransactionStore(db store.DBTX, logger *slog.Logger) *PostgresTransactionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTransactionStore{db: db, logger: logger.With("component", "transaction_store")}
}

var _ store.TransactionStore = (*PostgresTransactionStore)(nil)

// WithTx implements store.TransactionStore.
func (s *PostgresTransactionStore) WithTx(tx *sql.Tx) store.TransactionStore {
	return &PostgresTransactionStore{db: tx, logger: s.logger}
}

// Create implements store.TransactionStore.
func (s *PostgresTransactionStore) Create(ctx context.Context, t *domain.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.UserID, nullUUID(t.WalletID), t.Type, t.Status, t.Amount, t.Currency,
		t.Description, t.ExternalRef, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "failed to record transaction",
			"transaction_id", t.ID, "user_id", t.UserID, "error", err)
		return MapError(err, store.ErrTransactionNotFound)
	}
	return nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var walletID uuid.NullUUID
	var txType, status string
	if err := row.Scan(&t.ID, &t.UserID, &walletID, &txType, &status, &t.Amount, &t.Currency,
		&t.Description, &t.ExternalRef, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.WalletID = uuidPtr(walletID)
	t.Type = domain.TransactionType(txType)
	t.Status = domain.TransactionStatus(status)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// GetByID implements store.TransactionStore.
func (s *PostgresTransactionStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, MapError(err, store.ErrTransactionNotFound)
	}
	return t, nil
}

// ListByUser implements store.TransactionStore.
func (s *PostgresTransactionStore) ListByUser(ctx context.Context, userID uuid.UUID, page store.Page) ([]*domain.Transaction, error) {
	page = page.Normalize()
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, MapError(err, nil)
	}
	defer func() { _ = rows.Close() }()

	txs := []*domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// UpdateStatus implements store.TransactionStore.
func (s *PostgresTransactionStore) UpdateStatus(ctx context.Context, t *domain.Transaction) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET status = $3, external_ref = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2`,
		t.ID, t.UserID, t.Status, t.ExternalRef, t.UpdatedAt)
	if err != nil {
		return MapError(err, store.ErrTransactionNotFound)
	}
	return CheckRowsAffected(res, store.ErrTransactionNotFound)
}
