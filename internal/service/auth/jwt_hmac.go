package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultClockSkew = 2 * time.Minute

// hmacJWTService signs tokens with HMAC-SHA256.
type hmacJWTService struct {
	signingKey      []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	timeFunc        func() time.Time
	clockSkew       time.Duration
}

type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"uid"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

var _ JWTService = (*hmacJWTService)(nil)

// JWTOption customizes the JWT service.
type JWTOption func(*hmacJWTService)

// WithTimeFunc overrides the clock used for issuing and validating tokens.
func WithTimeFunc(fn func() time.Time) JWTOption {
	return func(s *hmacJWTService) { s.timeFunc = fn }
}

// WithClockSkew sets the tolerated clock drift during validation.
func WithClockSkew(d time.Duration) JWTOption {
	return func(s *hmacJWTService) { s.clockSkew = d }
}

// NewJWTService creates an HMAC JWT service from cfg.
func NewJWTService(cfg config.AuthConfig, opts ...JWTOption) (JWTService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if cfg.TokenLifetimeMinutes <= 0 || cfg.RefreshTokenLifetimeMinutes <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}

	s := &hmacJWTService{
		signingKey:      []byte(cfg.JWTSecret),
		accessLifetime:  time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		refreshLifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
		timeFunc:        time.Now,
		clockSkew:       defaultClockSkew,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.generate(ctx, userID, TokenTypeAccess, s.accessLifetime)
}

func (s *hmacJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.generate(ctx, userID, TokenTypeRefresh, s.refreshLifetime)
}

func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(ctx, tokenString, TokenTypeAccess)
}

func (s *hmacJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(ctx, tokenString, TokenTypeRefresh)
}

func (s *hmacJWTService) generate(ctx context.Context, userID uuid.UUID, tokenType string, lifetime time.Duration) (string, error) {
	now := s.timeFunc()
	claims := jwtCustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign token",
			"error", err,
			"user_id", userID,
			"token_type", tokenType)
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *hmacJWTService) validate(ctx context.Context, tokenString, wantType string) (*Claims, error) {
	invalid, expired := ErrInvalidToken, ErrExpiredToken
	if wantType == TokenTypeRefresh {
		invalid, expired = ErrInvalidRefreshToken, ErrExpiredRefreshToken
	}
	if tokenString == "" {
		if wantType == TokenTypeAccess {
			return nil, ErrMissingToken
		}
		return nil, invalid
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(s.timeFunc),
		jwt.WithIssuedAt(),
	)
	var claims jwtCustomClaims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	})
	if err != nil {
		log := logger.FromContext(ctx)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token expired", "token_type", wantType)
			return nil, expired
		case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token rejected", "token_type", wantType, "error", err)
			return nil, fmt.Errorf("%w: %v", invalid, err)
		}
	}

	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	if claims.UserID == uuid.Nil || claims.Subject != claims.UserID.String() {
		return nil, invalid
	}

	out := &Claims{
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
