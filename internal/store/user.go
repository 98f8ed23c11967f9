package store

import (
	"context"
	"database/sql"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/google/uuid"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. A plaintext Password, when set, is hashed by
	// the implementation. Returns ErrEmailExists or ErrExternalIDExists on
	// conflicts.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByExternalID looks up a wallet provider identity ("provider:subject").
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)

	// Update persists profile and KYC fields. A plaintext Password, when
	// set, replaces the stored hash.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes the user and, by cascade, everything they own.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
