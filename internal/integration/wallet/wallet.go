// Package wallet defines the contract shared by wallet authentication
// providers.
package wallet

import (
	"context"
	"errors"
)

// Provider names as registered in the service registry.
const (
	ProviderPrivy   = "privy"
	ProviderDynamic = "dynamic"
)

// ErrInvalidToken is returned when a provider token fails verification.
var ErrInvalidToken = errors.New("invalid wallet token")

// Claims is the identity extracted from a verified provider token.
type Claims struct {
	Provider  string
	UserID    string
	SessionID string
	Email     string
	Address   string
	Chain     string
}

// Verifier verifies provider-issued session tokens.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (*Claims, error)
}

// IsKnownProvider reports whether name is a supported wallet auth provider.
func IsKnownProvider(name string) bool {
	return name == ProviderPrivy || name == ProviderDynamic
}
