package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, email, display_name, hashed_password, external_id, kyc_status, kyc_applicant_id, created_at, updated_at`

// PostgresUserStore implements store.UserStore.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// NewPostgresUserStore creates a user store. bcryptCost outside bcrypt's
// valid range falls back to bcrypt.DefaultCost.
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{db: db, bcryptCost: bcryptCost, logger: logger.With("component", "user_store")}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, bcryptCost: s.bcryptCost, logger: s.logger}
}

func (s *PostgresUserStore) hashPassword(u *domain.User) error {
	if u.Password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.HashedPassword = string(hash)
	u.Password = ""
	return nil
}

// Create implements store.UserStore.
func (s *PostgresUserStore) Create(ctx context.Context, u *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := u.Validate(); err != nil {
		return err
	}
	if err := s.hashPassword(u); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, nullString(strings.ToLower(u.Email)), u.DisplayName, nullString(u.HashedPassword),
		nullString(u.ExternalID), u.KYCStatus, nullString(u.KYCApplicantID), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err, store.ErrUserNotFound)
		log.WarnContext(ctx, "failed to create user", "user_id", u.ID, "error", err)
		return mapped
	}

	log.InfoContext(ctx, "user created", "user_id", u.ID)
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var email, hashed, externalID, applicantID sql.NullString
	var kyc string
	if err := row.Scan(&u.ID, &email, &u.DisplayName, &hashed, &externalID, &kyc, &applicantID,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Email = email.String
	u.HashedPassword = hashed.String
	u.ExternalID = externalID.String
	u.KYCStatus = domain.KYCStatus(kyc)
	u.KYCApplicantID = applicantID.String
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func (s *PostgresUserStore) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if err != nil {
		return nil, MapError(err, store.ErrUserNotFound)
	}
	return u, nil
}

// GetByID implements store.UserStore.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, `id = $1`, id)
}

// GetByEmail implements store.UserStore.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, `LOWER(email) = $1`, strings.ToLower(strings.TrimSpace(email)))
}

// GetByExternalID implements store.UserStore.
func (s *PostgresUserStore) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return s.getOne(ctx, `external_id = $1`, externalID)
}

// Update implements store.UserStore.
func (s *PostgresUserStore) Update(ctx context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if err := s.hashPassword(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2, display_name = $3, hashed_password = $4, external_id = $5,
		    kyc_status = $6, kyc_applicant_id = $7, updated_at = $8
		WHERE id = $1`,
		u.ID, nullString(strings.ToLower(u.Email)), u.DisplayName, nullString(u.HashedPassword),
		nullString(u.ExternalID), u.KYCStatus, nullString(u.KYCApplicantID), u.UpdatedAt,
	)
	if err != nil {
		return MapError(err, store.ErrUserNotFound)
	}
	return CheckRowsAffected(res, store.ErrUserNotFound)
}

// Delete implements store.UserStore.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return MapError(err, store.ErrUserNotFound)
	}
	return CheckRowsAffected(res, store.ErrUserNotFound)
}
