package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/mocks"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	"github.com/ethicbank/portal-api/internal/service"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func existingUser(id uuid.UUID) *domain.User {
	return &domain.User{
		ID:             id,
		Email:          "user@example.com",
		HashedPassword: "hashed_password123",
		KYCStatus:      domain.KYCStatusNone,
		CreatedAt:      time.Now().Add(-24 * time.Hour),
		UpdatedAt:      time.Now().Add(-24 * time.Hour),
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	userID := uuid.New()

	t.Run("successful update", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		users := new(mocks.UserStore)
		user := existingUser(userID)
		users.On("GetByID", mock.Anything, userID).Return(user, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == userID &&
				u.Email == "new@example.com" &&
				u.DisplayName == "Ana" &&
				u.HashedPassword == "hashed_password123"
		})).Return(nil)

		svc, err := service.NewUserService(users, db, log)
		require.NoError(t, err)

		name, email := "  Ana ", "new@example.com"
		updated, err := svc.UpdateProfile(context.Background(), userID, service.ProfileUpdate{
			DisplayName: &name,
			Email:       &email,
		})
		require.NoError(t, err)
		assert.Equal(t, "Ana", updated.DisplayName)
		users.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid email rolls back", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		users := new(mocks.UserStore)
		users.On("GetByID", mock.Anything, userID).Return(existingUser(userID), nil)

		svc, err := service.NewUserService(users, db, log)
		require.NoError(t, err)

		bad := "not-an-email"
		_, err = svc.UpdateProfile(context.Background(), userID, service.ProfileUpdate{Email: &bad})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("duplicate email is returned unwrapped", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		users := new(mocks.UserStore)
		users.On("GetByID", mock.Anything, userID).Return(existingUser(userID), nil)
		users.On("Update", mock.Anything, mock.Anything).Return(store.ErrEmailExists)

		svc, err := service.NewUserService(users, db, log)
		require.NoError(t, err)

		email := "taken@example.com"
		_, err = svc.UpdateProfile(context.Background(), userID, service.ProfileUpdate{Email: &email})
		assert.Equal(t, store.ErrEmailExists, err)
	})
}

func TestUserService_SetKYC(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	userID := uuid.New()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	users := new(mocks.UserStore)
	users.On("GetByID", mock.Anything, userID).Return(existingUser(userID), nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.KYCApplicantID == "app_1" && u.KYCStatus == domain.KYCStatusPending
	})).Return(nil)

	svc, err := service.NewUserService(users, db, log)
	require.NoError(t, err)

	user, err := svc.SetKYC(context.Background(), userID, "app_1", domain.KYCStatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStatusPending, user.KYCStatus)
	users.AssertExpectations(t)
}

func TestUserService_GetAndDelete(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	users := new(mocks.UserStore)
	users.On("GetByID", mock.Anything, userID).Return(nil, store.ErrUserNotFound)
	users.On("Delete", mock.Anything, userID).Return(errors.New("connection reset"))

	svc, err := service.NewUserService(users, db, log)
	require.NoError(t, err)

	_, err = svc.GetUser(context.Background(), userID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	err = svc.DeleteUser(context.Background(), userID)
	var svcErr *service.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "delete_user", svcErr.Operation)
}

func TestNewUserService_RequiresDependencies(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = service.NewUserService(nil, db, nil)
	assert.Error(t, err)
	_, err = service.NewUserService(new(mocks.UserStore), nil, nil)
	assert.Error(t, err)
}
