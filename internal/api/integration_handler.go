package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/integration/jupiter"
	"github.com/ethicbank/portal-api/internal/integration/moonpay"
	"github.com/ethicbank/portal-api/internal/integration/stripe"
	"github.com/ethicbank/portal-api/internal/integration/sumsub"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/ethicbank/portal-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type swapper interface {
	Quote(ctx context.Context, req jupiter.QuoteRequest) (*jupiter.Quote, error)
	SwapTransaction(ctx context.Context, quote *jupiter.Quote, userPublicKey string) (*jupiter.Swap, error)
}

type cardIssuer interface {
	CreateCardholder(ctx context.Context, p stripe.CardholderParams) (*stripe.Cardholder, error)
	IssueCard(ctx context.Context, cardholderID, currency string) (*stripe.Card, error)
	CreatePaymentIntent(ctx context.Context, amount int64, currency, idempotencyKey string, metadata map[string]string) (*stripe.PaymentIntent, error)
}

type ramp interface {
	BuyQuote(ctx context.Context, currencyCode, baseCurrency string, baseAmount decimal.Decimal) (*moonpay.BuyQuote, error)
	SignedWidgetURL(p moonpay.WidgetParams) (string, error)
}

type kycProvider interface {
	CreateApplicant(ctx context.Context, externalUserID string) (*sumsub.Applicant, error)
	AccessToken(ctx context.Context, externalUserID string) (*sumsub.AccessToken, error)
	ApplicantStatus(ctx context.Context, applicantID string) (*sumsub.ApplicantStatus, error)
}

// IntegrationHandler exposes vendor integrations resolved from the service
// registry on every request. A vendor that is missing or not configured
// answers 503.
type IntegrationHandler struct {
	registry *registry.Registry
	users    service.UserService
	logger   *slog.Logger
}

// NewIntegrationHandler creates an IntegrationHandler.
func NewIntegrationHandler(reg *registry.Registry, users service.UserService, logger *slog.Logger) *IntegrationHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for IntegrationHandler")
	}
	return &IntegrationHandler{
		registry: reg,
		users:    users,
		logger:   logger.With(slog.String("component", "integration_handler")),
	}
}

// SwapQuote handles POST /api/swap/quote.
func (h *IntegrationHandler) SwapQuote(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	var req SwapQuoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	swaps, err := service.LookupConfigured[swapper](h.registry, jupiter.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	quote, err := swaps.Quote(r.Context(), jupiter.QuoteRequest{
		InputMint:   req.InputMint,
		OutputMint:  req.OutputMint,
		Amount:      req.Amount,
		SlippageBps: req.SlippageBps,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get swap quote")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, quote)
}

// SwapTransaction handles POST /api/swap/transaction.
func (h *IntegrationHandler) SwapTransaction(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	var req SwapTransactionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	swaps, err := service.LookupConfigured[swapper](h.registry, jupiter.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	swap, err := swaps.SwapTransaction(r.Context(), req.Quote, req.UserPublicKey)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build swap transaction")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, swap)
}

// IssueCard handles POST /api/cards. It creates a cardholder for the user
// and issues a virtual card to it.
func (h *IntegrationHandler) IssueCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req IssueCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	cards, err := service.LookupConfigured[cardIssuer](h.registry, stripe.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to issue card")
		return
	}

	holder, err := cards.CreateCardholder(r.Context(), stripe.CardholderParams{
		Name:    req.Name,
		Email:   user.Email,
		Billing: req.Billing,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create cardholder")
		return
	}
	card, err := cards.IssueCard(r.Context(), holder.ID, strings.ToLower(req.Currency))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to issue card")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("card issued",
		slog.String("cardholder_id", holder.ID),
		slog.String("card_id", card.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, IssueCardResponse{CardholderID: holder.ID, Card: card})
}

// CreatePaymentIntent handles POST /api/payments/intents. The optional
// Idempotency-Key header is forwarded to the processor.
func (h *IntegrationHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req PaymentIntentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	payments, err := service.LookupConfigured[cardIssuer](h.registry, stripe.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	metadata := map[string]string{"user_id": userID.String()}
	if req.Description != "" {
		metadata["description"] = req.Description
	}
	intent, err := payments.CreatePaymentIntent(r.Context(),
		domain.MinorUnits(amount),
		strings.ToLower(req.Currency),
		r.Header.Get("Idempotency-Key"),
		metadata)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create payment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, intent)
}

// RampQuote handles POST /api/ramp/quote.
func (h *IntegrationHandler) RampQuote(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	var req RampQuoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	amount, err := domain.ParseAmount(req.BaseAmount)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	onramp, err := service.LookupConfigured[ramp](h.registry, moonpay.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	quote, err := onramp.BuyQuote(r.Context(), strings.ToLower(req.CurrencyCode), strings.ToLower(req.BaseCurrency), amount)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get ramp quote")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, quote)
}

// RampURL handles POST /api/ramp/url.
func (h *IntegrationHandler) RampURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req RampURLRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	onramp, err := service.LookupConfigured[ramp](h.registry, moonpay.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build ramp URL")
		return
	}

	url, err := onramp.SignedWidgetURL(moonpay.WidgetParams{
		CurrencyCode:       strings.ToLower(req.CurrencyCode),
		WalletAddress:      req.WalletAddress,
		BaseCurrencyCode:   strings.ToLower(req.BaseCurrencyCode),
		BaseCurrencyAmount: req.BaseCurrencyAmount,
		Email:              user.Email,
		ExternalCustomerID: userID.String(),
		RedirectURL:        req.RedirectURL,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build ramp URL")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, RampURLResponse{URL: url})
}

// CreateKYCApplicant handles POST /api/kyc/applicant. A user who already has
// an applicant gets it back unchanged.
func (h *IntegrationHandler) CreateKYCApplicant(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	kyc, err := service.LookupConfigured[kycProvider](h.registry, sumsub.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start verification")
		return
	}
	if user.KYCApplicantID != "" {
		shared.RespondWithJSON(w, r, http.StatusOK, KYCResponse{ApplicantID: user.KYCApplicantID, KYCStatus: user.KYCStatus})
		return
	}

	applicant, err := kyc.CreateApplicant(r.Context(), userID.String())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start verification")
		return
	}
	user, err = h.users.SetKYC(r.Context(), userID, applicant.ID, domain.KYCStatusPending)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start verification")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, KYCResponse{ApplicantID: applicant.ID, KYCStatus: user.KYCStatus})
}

// KYCToken handles POST /api/kyc/token.
func (h *IntegrationHandler) KYCToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	kyc, err := service.LookupConfigured[kycProvider](h.registry, sumsub.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	token, err := kyc.AccessToken(r.Context(), userID.String())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create verification token")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, KYCTokenResponse{Token: token.Token, UserID: token.UserID})
}

// KYCStatus handles GET /api/kyc/status/{applicantId}. Only the user's own
// applicant can be queried; the review outcome is stored on the user.
func (h *IntegrationHandler) KYCStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	applicantID := chi.URLParam(r, "applicantId")
	kyc, err := service.LookupConfigured[kycProvider](h.registry, sumsub.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load verification status")
		return
	}
	if applicantID == "" || user.KYCApplicantID != applicantID {
		shared.RespondWithError(w, r, http.StatusNotFound, "Applicant not found")
		return
	}

	status, err := kyc.ApplicantStatus(r.Context(), applicantID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load verification status")
		return
	}

	kycStatus := kycStatusFromReview(status)
	if kycStatus != user.KYCStatus {
		if user, err = h.users.SetKYC(r.Context(), userID, applicantID, kycStatus); err != nil {
			HandleAPIError(w, r, err, "Failed to update verification status")
			return
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, KYCResponse{
		ApplicantID:  applicantID,
		KYCStatus:    user.KYCStatus,
		ReviewStatus: status.ReviewStatus,
		ReviewAnswer: status.ReviewAnswer,
	})
}

func kycStatusFromReview(s *sumsub.ApplicantStatus) domain.KYCStatus {
	switch {
	case s.Approved():
		return domain.KYCStatusApproved
	case s.ReviewAnswer == "RED":
		return domain.KYCStatusRejected
	default:
		return domain.KYCStatusPending
	}
}
