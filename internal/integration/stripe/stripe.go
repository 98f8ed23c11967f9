// Package stripe integrates Stripe for card issuing and payments. Requests use
// Stripe's form-encoded API directly.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/integration/vendor"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/google/uuid"
)

// Name is the registry name of the service.
const Name = "stripe"

// ErrInvalidParams is returned for requests rejected before reaching Stripe.
var ErrInvalidParams = errors.New("invalid stripe parameters")

// Address is a billing address.
type Address struct {
	Line1      string `json:"line1"       validate:"required"`
	City       string `json:"city"        validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country"     validate:"required,len=2"`
}

// CardholderParams describes a new issuing cardholder.
type CardholderParams struct {
	Name    string  `json:"name"    validate:"required"`
	Email   string  `json:"email"   validate:"omitempty,email"`
	Billing Address `json:"billing" validate:"required"`
}

// Cardholder is an issuing cardholder.
type Cardholder struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Card is an issued virtual card.
type Card struct {
	ID       string `json:"id"`
	Last4    string `json:"last4"`
	Brand    string `json:"brand"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// PaymentIntent is a pending payment.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Service wraps the Stripe API.
type Service struct {
	cfg    config.StripeConfig
	client *vendor.Client
}

// New creates the Stripe service.
func New(cfg config.StripeConfig, httpCfg config.VendorHTTPConfig, logger *slog.Logger, opts ...vendor.Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]vendor.Option{
		vendor.WithBearerToken(cfg.SecretKey),
		vendor.WithLogger(logger),
	}, opts...)
	return &Service{
		cfg:    cfg,
		client: vendor.New(Name, cfg.BaseURL, httpCfg, opts...),
	}
}

// IsConfigured reports whether the secret key and base URL are set.
func (s *Service) IsConfigured() bool {
	return !vendor.Missing(s.cfg.SecretKey, s.cfg.BaseURL)
}

// Initialize rejects publishable keys, which cannot call the server API.
func (s *Service) Initialize(ctx context.Context) error {
	if strings.HasPrefix(s.cfg.SecretKey, "pk_") {
		return errors.New("stripe secret key is a publishable key")
	}
	return nil
}

// HealthCheck reads the account balance, which requires a valid secret key.
func (s *Service) HealthCheck(ctx context.Context) registry.HealthResult {
	return registry.ResultFromError(s.client.Ping(ctx, "/v1/balance"))
}

// CreateCardholder registers an individual cardholder.
func (s *Service) CreateCardholder(ctx context.Context, p CardholderParams) (*Cardholder, error) {
	if !s.IsConfigured() {
		return nil, vendor.NotConfigured(Name)
	}
	if p.Name == "" || p.Billing.Line1 == "" || p.Billing.Country == "" {
		return nil, fmt.Errorf("%w: name and billing address are required", ErrInvalidParams)
	}

	form := url.Values{
		"type":                          {"individual"},
		"name":                          {p.Name},
		"billing[address][line1]":       {p.Billing.Line1},
		"billing[address][city]":        {p.Billing.City},
		"billing[address][postal_code]": {p.Billing.PostalCode},
		"billing[address][country]":     {strings.ToUpper(p.Billing.Country)},
	}
	if p.Email != "" {
		form.Set("email", p.Email)
	}

	var ch Cardholder
	if err := s.post(ctx, "/v1/issuing/cardholders", form, "", &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// IssueCard issues an active virtual card to cardholderID.
func (s *Service) IssueCard(ctx context.Context, cardholderID, currency string) (*Card, error) {
	if !s.IsConfigured() {
		return nil, vendor.NotConfigured(Name)
	}
	if cardholderID == "" || len(currency) != 3 {
		return nil, fmt.Errorf("%w: cardholder and 3-letter currency are required", ErrInvalidParams)
	}

	form := url.Values{
		"cardholder": {cardholderID},
		"currency":   {strings.ToLower(currency)},
		"type":       {"virtual"},
		"status":     {"active"},
	}
	var card Card
	if err := s.post(ctx, "/v1/issuing/cards", form, "", &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// CreatePaymentIntent starts a payment of amount minor units. An empty
// idempotencyKey gets a generated one.
func (s *Service) CreatePaymentIntent(ctx context.Context, amount int64, currency, idempotencyKey string, metadata map[string]string) (*PaymentIntent, error) {
	if !s.IsConfigured() {
		return nil, vendor.NotConfigured(Name)
	}
	if amount <= 0 || len(currency) != 3 {
		return nil, fmt.Errorf("%w: positive amount and 3-letter currency are required", ErrInvalidParams)
	}

	form := url.Values{
		"amount":                             {strconv.FormatInt(amount, 10)},
		"currency":                           {strings.ToLower(currency)},
		"automatic_payment_methods[enabled]": {"true"},
	}
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	var pi PaymentIntent
	if err := s.post(ctx, "/v1/payment_intents", form, idempotencyKey, &pi); err != nil {
		return nil, err
	}
	return &pi, nil
}

func (s *Service) post(ctx context.Context, path string, form url.Values, idempotencyKey string, out any) error {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	return s.client.Do(ctx, http.MethodPost, path, nil, out,
		vendor.Form(form),
		vendor.IdempotencyKey(idempotencyKey))
}
