package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/service/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        15,
		RefreshTokenLifetimeMinutes: 60 * 24,
		BCryptCost:                  4,
	}
}

func newJWT(t *testing.T, opts ...auth.JWTOption) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(testAuthConfig(), opts...)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_Validation(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = "short"
	_, err := auth.NewJWTService(cfg)
	assert.ErrorContains(t, err, "at least 32")

	cfg = testAuthConfig()
	cfg.TokenLifetimeMinutes = 0
	_, err = auth.NewJWTService(cfg)
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newJWT(t, auth.WithTimeFunc(func() time.Time { return now }))
	userID := uuid.New()

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)
	assert.Equal(t, now.Add(15*time.Minute), claims.ExpiresAt.UTC())
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newJWT(t)
	userID := uuid.New()

	token, err := svc.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, auth.TokenTypeRefresh, claims.TokenType)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	ctx := context.Background()
	svc := newJWT(t)
	userID := uuid.New()

	access, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, refresh)
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)
	_, err = svc.ValidateRefreshToken(ctx, access)
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)
}

func TestValidateToken_Expiry(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issued

	svc := newJWT(t, auth.WithTimeFunc(func() time.Time { return now }))
	access, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(ctx, uuid.New())
	require.NoError(t, err)

	now = issued.Add(16 * time.Minute)
	_, err = svc.ValidateToken(ctx, access)
	assert.NoError(t, err, "within clock skew")

	now = issued.Add(18 * time.Minute)
	_, err = svc.ValidateToken(ctx, access)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)

	now = issued.Add(25 * time.Hour)
	_, err = svc.ValidateRefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, auth.ErrExpiredRefreshToken)
}

func TestValidateToken_NotYetValid(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issued

	svc := newJWT(t, auth.WithTimeFunc(func() time.Time { return now }))
	token, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	now = issued.Add(-10 * time.Minute)
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, auth.ErrTokenNotYetValid)
}

func TestValidateToken_Rejections(t *testing.T) {
	ctx := context.Background()
	svc := newJWT(t)

	_, err := svc.ValidateToken(ctx, "")
	assert.ErrorIs(t, err, auth.ErrMissingToken)

	_, err = svc.ValidateToken(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.ValidateRefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	other := testAuthConfig()
	other.JWTSecret = "another-secret-that-is-at-least-32-chars"
	foreign, err := auth.NewJWTService(other)
	require.NoError(t, err)
	token, err := foreign.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery", 4)
	require.NoError(t, err)

	v := auth.NewBcryptVerifier()
	assert.NoError(t, v.Compare(hash, "correct horse battery"))
	assert.Error(t, v.Compare(hash, "wrong"))
}
