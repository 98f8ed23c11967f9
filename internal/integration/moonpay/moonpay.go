// Package moonpay integrates the MoonPay fiat on-ramp.
package moonpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/integration/vendor"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/shopspring/decimal"
)

// Name is the registry name of the service.
const Name = "moonpay"

// ErrInvalidParams is returned for requests rejected before reaching MoonPay.
var ErrInvalidParams = errors.New("invalid moonpay parameters")

// BuyQuote prices a crypto purchase.
type BuyQuote struct {
	BaseCurrencyCode    string  `json:"baseCurrencyCode"`
	BaseCurrencyAmount  float64 `json:"baseCurrencyAmount"`
	QuoteCurrencyCode   string  `json:"quoteCurrencyCode"`
	QuoteCurrencyAmount float64 `json:"quoteCurrencyAmount"`
	QuoteCurrencyPrice  float64 `json:"quoteCurrencyPrice"`
	FeeAmount           float64 `json:"feeAmount"`
	NetworkFeeAmount    float64 `json:"networkFeeAmount"`
	TotalAmount         float64 `json:"totalAmount"`
}

// WidgetParams configures a buy widget session.
type WidgetParams struct {
	CurrencyCode       string `json:"currencyCode"       validate:"required"`
	WalletAddress      string `json:"walletAddress"      validate:"required"`
	BaseCurrencyCode   string `json:"baseCurrencyCode"`
	BaseCurrencyAmount string `json:"baseCurrencyAmount"`
	Email              string `json:"email"              validate:"omitempty,email"`
	ExternalCustomerID string `json:"externalCustomerId"`
	RedirectURL        string `json:"redirectURL"        validate:"omitempty,url"`
}

// Service wraps the MoonPay API and widget signing.
type Service struct {
	cfg    config.MoonpayConfig
	client *vendor.Client
}

// New creates the MoonPay service.
func New(cfg config.MoonpayConfig, httpCfg config.VendorHTTPConfig, logger *slog.Logger, opts ...vendor.Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]vendor.Option{vendor.WithLogger(logger)}, opts...)
	return &Service{
		cfg:    cfg,
		client: vendor.New(Name, cfg.BaseURL, httpCfg, opts...),
	}
}

// IsConfigured reports whether both keys and both URLs are set.
func (s *Service) IsConfigured() bool {
	return !vendor.Missing(s.cfg.APIKey, s.cfg.SecretKey, s.cfg.BaseURL, s.cfg.WidgetURL)
}

// Initialize validates the widget URL.
func (s *Service) Initialize(ctx context.Context) error {
	if s.cfg.WidgetURL == "" {
		return nil
	}
	u, err := url.Parse(s.cfg.WidgetURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid moonpay widget url %q", s.cfg.WidgetURL)
	}
	return nil
}

// HealthCheck calls the lightweight IP address endpoint.
func (s *Service) HealthCheck(ctx context.Context) registry.HealthResult {
	return registry.ResultFromError(s.client.Ping(ctx, "/v4/ip_address?apiKey="+url.QueryEscape(s.cfg.APIKey)))
}

// BuyQuote prices buying currencyCode with baseAmount of baseCurrency.
func (s *Service) BuyQuote(ctx context.Context, currencyCode, baseCurrency string, baseAmount decimal.Decimal) (*BuyQuote, error) {
	if !s.IsConfigured() {
		return nil, vendor.NotConfigured(Name)
	}
	if currencyCode == "" || baseCurrency == "" || !baseAmount.IsPositive() {
		return nil, fmt.Errorf("%w: currency, base currency and positive amount are required", ErrInvalidParams)
	}

	q := url.Values{
		"apiKey":             {s.cfg.APIKey},
		"baseCurrencyCode":   {strings.ToLower(baseCurrency)},
		"baseCurrencyAmount": {baseAmount.String()},
	}
	var quote BuyQuote
	path := "/v3/currencies/" + url.PathEscape(strings.ToLower(currencyCode)) + "/buy_quote"
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &quote, vendor.Query(q)); err != nil {
		return nil, err
	}
	return &quote, nil
}

// SignedWidgetURL returns a widget URL carrying the HMAC-SHA256 signature
// MoonPay requires when a wallet address is prefilled.
func (s *Service) SignedWidgetURL(p WidgetParams) (string, error) {
	if !s.IsConfigured() {
		return "", vendor.NotConfigured(Name)
	}
	if p.CurrencyCode == "" || p.WalletAddress == "" {
		return "", fmt.Errorf("%w: currency code and wallet address are required", ErrInvalidParams)
	}

	q := url.Values{
		"apiKey":        {s.cfg.APIKey},
		"currencyCode":  {strings.ToLower(p.CurrencyCode)},
		"walletAddress": {p.WalletAddress},
	}
	setIf(q, "baseCurrencyCode", strings.ToLower(p.BaseCurrencyCode))
	setIf(q, "baseCurrencyAmount", p.BaseCurrencyAmount)
	setIf(q, "email", p.Email)
	setIf(q, "externalCustomerId", p.ExternalCustomerID)
	setIf(q, "redirectURL", p.RedirectURL)

	query := "?" + q.Encode()
	q.Set("signature", Sign(s.cfg.SecretKey, query))

	return strings.TrimRight(s.cfg.WidgetURL, "/") + "?" + q.Encode(), nil
}

// Sign computes the base64 HMAC-SHA256 of query (including its leading '?').
func Sign(secret, query string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(query))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
