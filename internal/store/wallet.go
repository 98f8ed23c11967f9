package store

import (
	"context"
	"database/sql"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/google/uuid"
)

// WalletStore persists linked wallets. Reads and writes are scoped to the
// owning user; another user's wallet is reported as ErrWalletNotFound.
type WalletStore interface {
	// Create links a wallet. Returns ErrWalletExists when the address is
	// already linked on the same chain.
	Create(ctx context.Context, w *domain.Wallet) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Wallet, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error)
	// Update changes the label and primary flag. Marking a wallet primary
	// clears the flag on the user's other wallets.
	Update(ctx context.Context, w *domain.Wallet) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	WithTx(tx *sql.Tx) WalletStore
}
