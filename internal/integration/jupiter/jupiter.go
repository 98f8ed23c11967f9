// Package jupiter integrates the Jupiter DEX aggregator used for token swaps.
package jupiter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/integration/vendor"
	"github.com/ethicbank/portal-api/internal/registry"
)

// Name is the registry name of the service.
const Name = "jupiter"

// ErrInvalidQuoteRequest is returned for malformed quote parameters.
var ErrInvalidQuoteRequest = errors.New("invalid quote request")

// QuoteCache stores quotes for a short time. *redis.Client satisfies it.
type QuoteCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// QuoteRequest selects a swap route.
type QuoteRequest struct {
	InputMint   string `json:"inputMint"   validate:"required"`
	OutputMint  string `json:"outputMint"  validate:"required"`
	Amount      uint64 `json:"amount"      validate:"required,gt=0"`
	SlippageBps int    `json:"slippageBps" validate:"gte=0,lte=10000"`
}

// Quote is a priced swap route. It is passed back verbatim to SwapTransaction.
type Quote struct {
	InputMint            string          `json:"inputMint"`
	InAmount             string          `json:"inAmount"`
	OutputMint           string          `json:"outputMint"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          int             `json:"slippageBps"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            json.RawMessage `json:"routePlan"`
	ContextSlot          uint64          `json:"contextSlot,omitempty"`
}

// Swap is a serialized, unsigned swap transaction.
type Swap struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// Service requests quotes and swap transactions.
type Service struct {
	cfg      config.JupiterConfig
	client   *vendor.Client
	cache    QuoteCache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// Option customizes the service.
type Option func(*Service)

// WithQuoteCache caches quotes in c for ttl. A zero ttl disables caching.
func WithQuoteCache(c QuoteCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// New creates the Jupiter service.
func New(cfg config.JupiterConfig, httpCfg config.VendorHTTPConfig, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	vopts := []vendor.Option{vendor.WithLogger(logger)}
	if cfg.APIKey != "" {
		vopts = append(vopts, vendor.WithHeader("x-api-key", cfg.APIKey))
	}
	s := &Service{
		cfg:    cfg,
		client: vendor.New(Name, cfg.BaseURL, httpCfg, vopts...),
		logger: logger.With("service", Name),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsConfigured reports whether a base URL is set. The API key is optional.
func (s *Service) IsConfigured() bool {
	return !vendor.Missing(s.cfg.BaseURL)
}

// Initialize is a no-op; the quote API needs no setup.
func (s *Service) Initialize(ctx context.Context) error {
	return nil
}

// HealthCheck checks that the quote endpoint answers.
func (s *Service) HealthCheck(ctx context.Context) registry.HealthResult {
	return registry.ResultFromError(s.client.Ping(ctx, "/quote"))
}

func cacheKey(req QuoteRequest) string {
	return fmt.Sprintf("jupiter:quote:%s:%s:%d:%d", req.InputMint, req.OutputMint, req.Amount, req.SlippageBps)
}

// Quote returns the best route for req, served from cache when possible.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if !s.IsConfigured() {
		return nil, vendor.NotConfigured(Name)
	}
	if req.InputMint == "" || req.OutputMint == "" || req.Amount == 0 {
		return nil, fmt.Errorf("%w: input mint, output mint and amount are required", ErrInvalidQuoteRequest)
	}
	if req.InputMint == req.OutputMint {
		return nil, fmt.Errorf("%w: input and output mint must differ", ErrInvalidQuoteRequest)
	}
	if req.SlippageBps < 0 || req.SlippageBps > 10000 {
		return nil, fmt.Errorf("%w: slippage must be between 0 and 10000 bps", ErrInvalidQuoteRequest)
	}

	key := cacheKey(req)
	if s.cachingEnabled() {
		var cached Quote
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "quote cache read failed", "error", err)
		} else if found {
			return &cached, nil
		}
	}

	q := url.Values{
		"inputMint":   {req.InputMint},
		"outputMint":  {req.OutputMint},
		"amount":      {strconv.FormatUint(req.Amount, 10)},
		"slippageBps": {strconv.Itoa(req.SlippageBps)},
	}
	var quote Quote
	if err := s.client.Do(ctx, http.MethodGet, "/quote", nil, &quote, vendor.Query(q)); err != nil {
		return nil, err
	}

	if s.cachingEnabled() {
		if err := s.cache.SetJSON(ctx, key, quote, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "quote cache write failed", "error", err)
		}
	}
	return &quote, nil
}

func (s *Service) cachingEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

type swapRequest struct {
	QuoteResponse    *Quote `json:"quoteResponse"`
	UserPublicKey    string `json:"userPublicKey"`
	WrapAndUnwrapSol bool   `json:"wrapAndUnwrapSol"`
}

// SwapTransaction builds an unsigned transaction executing quote for the
// wallet userPublicKey.
func (s *Service) SwapTransaction(ctx context.Context, quote *Quote, userPublicKey string) (*Swap, error) {
	if !s.IsConfigured() {
		return nil, vendor.NotConfigured(Name)
	}
	if quote == nil || userPublicKey == "" {
		return nil, fmt.Errorf("%w: quote and user public key are required", ErrInvalidQuoteRequest)
	}

	var swap Swap
	err := s.client.Do(ctx, http.MethodPost, "/swap", swapRequest{
		QuoteResponse:    quote,
		UserPublicKey:    userPublicKey,
		WrapAndUnwrapSol: true,
	}, &swap)
	if err != nil {
		return nil, err
	}
	if swap.SwapTransaction == "" {
		return nil, &vendor.Error{Category: vendor.CategoryBadData, Vendor: Name, Message: "empty swap transaction"}
	}
	return &swap, nil
}
