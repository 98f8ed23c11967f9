package api

import (
	"time"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/integration/jupiter"
	"github.com/ethicbank/portal-api/internal/integration/stripe"
	"github.com/ethicbank/portal-api/internal/service/auth"
	"github.com/google/uuid"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the body of POST /api/auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// WalletLoginRequest exchanges a wallet provider token for a portal session.
type WalletLoginRequest struct {
	Provider string `json:"provider" validate:"required"`
	Token    string `json:"token"    validate:"required"`
}

// AuthResponse is returned by every endpoint that opens a session.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	// ExpiresAt is the RFC 3339 expiry of the access token.
	ExpiresAt string       `json:"expires_at"`
	User      *domain.User `json:"user,omitempty"`
}

func newAuthResponse(user *domain.User, pair *auth.TokenPair) AuthResponse {
	resp := AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt.UTC().Format(time.RFC3339),
		User:         user,
	}
	if user != nil {
		resp.UserID = user.ID
	}
	return resp
}

// UpdateProfileRequest is the body of PATCH /api/me. Omitted fields are
// unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Password    *string `json:"password"     validate:"omitempty,min=12,max=72"`
}

// CreateWalletRequest links a wallet address.
type CreateWalletRequest struct {
	Address   string `json:"address"    validate:"required,max=128"`
	Chain     string `json:"chain"      validate:"required,oneof=ethereum solana polygon"`
	Label     string `json:"label"      validate:"max=64"`
	IsPrimary bool   `json:"is_primary"`
}

// UpdateWalletRequest changes a wallet's label or primary flag.
type UpdateWalletRequest struct {
	Label     *string `json:"label"      validate:"omitempty,max=64"`
	IsPrimary *bool   `json:"is_primary"`
}

// CreateTransactionRequest records a transaction. Amount is a decimal string.
type CreateTransactionRequest struct {
	Type        string     `json:"type"         validate:"required,oneof=deposit withdrawal transfer swap card_payment"`
	Amount      string     `json:"amount"       validate:"required"`
	Currency    string     `json:"currency"     validate:"required"`
	Description string     `json:"description"  validate:"max=280"`
	WalletID    *uuid.UUID `json:"wallet_id"`
	ExternalRef string     `json:"external_ref" validate:"max=128"`
}

// SettleTransactionRequest completes or fails a pending transaction.
type SettleTransactionRequest struct {
	Status string `json:"status" validate:"required,oneof=completed failed"`
}

// CreateInvestmentRequest records an investment position.
type CreateInvestmentRequest struct {
	Asset     string `json:"asset"      validate:"required,max=64"`
	Category  string `json:"category"`
	Units     string `json:"units"      validate:"required"`
	CostBasis string `json:"cost_basis" validate:"required"`
	Currency  string `json:"currency"   validate:"required"`
}

// UpdateInvestmentRequest adjusts a position. Omitted fields are unchanged.
type UpdateInvestmentRequest struct {
	Category  *string `json:"category"`
	Units     *string `json:"units"`
	CostBasis *string `json:"cost_basis"`
}

// CreateSavingsGoalRequest opens a savings goal.
type CreateSavingsGoalRequest struct {
	Name         string     `json:"name"          validate:"required,max=100"`
	TargetAmount string     `json:"target_amount" validate:"required"`
	Currency     string     `json:"currency"      validate:"required"`
	Deadline     *time.Time `json:"deadline"`
}

// DepositRequest adds money to a savings goal.
type DepositRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// SavingsGoalResponse adds progress to the stored goal.
type SavingsGoalResponse struct {
	*domain.SavingsGoal
	Progress string `json:"progress"`
	Reached  bool   `json:"reached"`
}

func newSavingsGoalResponse(g *domain.SavingsGoal) SavingsGoalResponse {
	return SavingsGoalResponse{
		SavingsGoal: g,
		Progress:    g.Progress().StringFixed(4),
		Reached:     g.Reached(),
	}
}

// SwapQuoteRequest prices a token swap. Amount is in the input token's
// smallest unit.
type SwapQuoteRequest struct {
	InputMint   string `json:"input_mint"   validate:"required"`
	OutputMint  string `json:"output_mint"  validate:"required"`
	Amount      uint64 `json:"amount"       validate:"required,gt=0"`
	SlippageBps int    `json:"slippage_bps" validate:"gte=0,lte=10000"`
}

// SwapTransactionRequest builds the unsigned transaction for a quote.
type SwapTransactionRequest struct {
	Quote         *jupiter.Quote `json:"quote"           validate:"required"`
	UserPublicKey string         `json:"user_public_key" validate:"required"`
}

// IssueCardRequest creates a cardholder and issues a virtual card.
type IssueCardRequest struct {
	Name     string         `json:"name"     validate:"required,max=100"`
	Billing  stripe.Address `json:"billing"`
	Currency string         `json:"currency" validate:"required,len=3"`
}

// IssueCardResponse is the issued card and its cardholder.
type IssueCardResponse struct {
	CardholderID string       `json:"cardholder_id"`
	Card         *stripe.Card `json:"card"`
}

// PaymentIntentRequest starts a card payment. Amount is a decimal string in
// major units.
type PaymentIntentRequest struct {
	Amount      string `json:"amount"      validate:"required"`
	Currency    string `json:"currency"    validate:"required,len=3"`
	Description string `json:"description" validate:"max=280"`
}

// RampQuoteRequest prices buying crypto with fiat.
type RampQuoteRequest struct {
	CurrencyCode string `json:"currency_code" validate:"required"`
	BaseCurrency string `json:"base_currency" validate:"required"`
	BaseAmount   string `json:"base_amount"   validate:"required"`
}

// RampURLRequest asks for a signed on-ramp widget URL.
type RampURLRequest struct {
	CurrencyCode       string `json:"currency_code"        validate:"required"`
	WalletAddress      string `json:"wallet_address"       validate:"required"`
	BaseCurrencyCode   string `json:"base_currency_code"`
	BaseCurrencyAmount string `json:"base_currency_amount"`
	RedirectURL        string `json:"redirect_url"         validate:"omitempty,url"`
}

// RampURLResponse carries the signed widget URL.
type RampURLResponse struct {
	URL string `json:"url"`
}

// KYCResponse reports the user's verification state.
type KYCResponse struct {
	ApplicantID  string           `json:"applicant_id"`
	KYCStatus    domain.KYCStatus `json:"kyc_status"`
	ReviewStatus string           `json:"review_status,omitempty"`
	ReviewAnswer string           `json:"review_answer,omitempty"`
}

// KYCTokenResponse authorizes the verification SDK.
type KYCTokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// ChatRequest is a message to the assistant.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}
