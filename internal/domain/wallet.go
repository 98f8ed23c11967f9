package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wallet validation errors
var (
	ErrEmptyWalletID      = validationError("wallet ID cannot be empty")
	ErrEmptyWalletUserID  = validationError("wallet user ID cannot be empty")
	ErrEmptyWalletAddress = validationError("wallet address cannot be empty")
	ErrInvalidChain       = validationError("invalid chain")
	ErrInvalidProvider    = validationError("invalid wallet provider")
)

// Chain identifies the network a wallet lives on.
type Chain string

// Supported chains
const (
	ChainEthereum Chain = "ethereum"
	ChainSolana   Chain = "solana"
	ChainPolygon  Chain = "polygon"
)

// WalletProvider records how a wallet was linked.
type WalletProvider string

// Wallet providers
const (
	WalletProviderPrivy    WalletProvider = "privy"
	WalletProviderDynamic  WalletProvider = "dynamic"
	WalletProviderExternal WalletProvider = "external"
)

// Wallet is a blockchain address linked to a user.
type Wallet struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Address   string         `json:"address"`
	Chain     Chain          `json:"chain"`
	Provider  WalletProvider `json:"provider"`
	Label     string         `json:"label,omitempty"`
	IsPrimary bool           `json:"is_primary"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewWallet creates a validated wallet.
func NewWallet(userID uuid.UUID, address string, chain Chain, provider WalletProvider) (*Wallet, error) {
	now := time.Now().UTC()
	w := &Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Address:   strings.TrimSpace(address),
		Chain:     Chain(strings.ToLower(string(chain))),
		Provider:  provider,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if w.Provider == "" {
		w.Provider = WalletProviderExternal
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks if the Wallet has valid data.
func (w *Wallet) Validate() error {
	if w.ID == uuid.Nil {
		return ErrEmptyWalletID
	}
	if w.UserID == uuid.Nil {
		return ErrEmptyWalletUserID
	}
	if w.Address == "" {
		return ErrEmptyWalletAddress
	}
	switch w.Chain {
	case ChainEthereum, ChainSolana, ChainPolygon:
	default:
		return ErrInvalidChain
	}
	switch w.Provider {
	case WalletProviderPrivy, WalletProviderDynamic, WalletProviderExternal:
	default:
		return ErrInvalidProvider
	}
	return nil
}

// ChainFromProvider maps the chain names used by wallet providers
// ("eip155", "ethereum", "solana") to a Chain.
func ChainFromProvider(name string) Chain {
	switch strings.ToLower(name) {
	case "solana", "sol":
		return ChainSolana
	case "polygon", "matic":
		return ChainPolygon
	default:
		return ChainEthereum
	}
}
