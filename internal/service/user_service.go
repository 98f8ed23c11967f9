package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
)

// ProfileUpdate carries the user-editable profile fields. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	DisplayName *string
	Email       *string
	Password    *string
}

// UserService manages the signed-in user's account.
type UserService interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)
	// SetKYC records the applicant and review state reported by the KYC
	// provider.
	SetKYC(ctx context.Context, userID uuid.UUID, applicantID string, status domain.KYCStatus) (*domain.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	users  store.UserStore
	db     *sql.DB
	logger *slog.Logger
}

// NewUserService creates a UserService. Updates run in a transaction on db.
func NewUserService(users store.UserStore, db *sql.DB, logger *slog.Logger) (UserService, error) {
	if users == nil {
		return nil, errors.New("users cannot be nil")
	}
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		users:  users,
		db:     db,
		logger: logger.With("component", "user_service"),
	}, nil
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get_user", "failed to retrieve user", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error) {
	return s.modify(ctx, "update_profile", userID, func(u *domain.User) error {
		if update.DisplayName != nil {
			u.DisplayName = strings.TrimSpace(*update.DisplayName)
		}
		if update.Email != nil {
			u.Email = strings.TrimSpace(*update.Email)
		}
		if update.Password != nil {
			u.Password = *update.Password
		}
		return u.Validate()
	})
}

func (s *userService) SetKYC(ctx context.Context, userID uuid.UUID, applicantID string, status domain.KYCStatus) (*domain.User, error) {
	return s.modify(ctx, "set_kyc", userID, func(u *domain.User) error {
		if applicantID != "" {
			u.KYCApplicantID = applicantID
		}
		u.KYCStatus = status
		return u.Validate()
	})
}

// modify loads the user, applies fn and saves it in one transaction.
func (s *userService) modify(ctx context.Context, op string, userID uuid.UUID, fn func(*domain.User) error) (*domain.User, error) {
	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)

		user, err := txUsers.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}
		user.UpdatedAt = time.Now().UTC()
		if err := txUsers.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrValidation) && !store.IsDuplicateError(err) {
			s.logger.ErrorContext(ctx, "failed to update user", "error", err, "user_id", userID, "operation", op)
		}
		return nil, NewServiceError(op, "failed to update user", err)
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", userID, "operation", op)
	return updated, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if !store.IsNotFoundError(err) {
			s.logger.ErrorContext(ctx, "failed to delete user", "error", err, "user_id", userID)
		}
		return NewServiceError("delete_user", "failed to delete user", err)
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}
