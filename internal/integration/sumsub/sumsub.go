// Package sumsub integrates Sumsub identity verification (KYC).
package sumsub

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
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
const Name = "sumsub"

const accessTokenTTL = 10 * time.Minute

// ErrInvalidParams is returned for requests rejected before reaching Sumsub.
var ErrInvalidParams = errors.New("invalid sumsub parameters")

// Applicant is a KYC applicant.
type Applicant struct {
	ID             string `json:"id"`
	ExternalUserID string `json:"externalUserId"`
	CreatedAt      string `json:"createdAt"`
}

// AccessToken authorizes the web SDK for one applicant.
type AccessToken struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// ApplicantStatus is the review state of an applicant.
type ApplicantStatus struct {
	ID           string `json:"id"`
	ReviewStatus string `json:"reviewStatus"`
	ReviewAnswer string `json:"reviewAnswer,omitempty"`
}

// Approved reports whether the review completed with a green answer.
func (s ApplicantStatus) Approved() bool {
	return s.ReviewStatus == "completed" && s.ReviewAnswer == "GREEN"
}

// Service wraps the Sumsub API. Every request is HMAC signed.
type Service struct {
	cfg    config.SumsubConfig
	client *vendor.Client
	now    func() time.Time
}

// New creates the Sumsub service.
func New(cfg config.SumsubConfig, httpCfg config.VendorHTTPConfig, logger *slog.Logger, opts ...vendor.Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{cfg: cfg, now: time.Now}
	opts = append([]vendor.Option{
		vendor.WithLogger(logger),
		vendor.WithHeader("X-App-Token", cfg.AppToken),
		vendor.WithSigner(s.sign),
	}, opts...)
	s.client = vendor.New(Name, cfg.BaseURL, httpCfg, opts...)
	return s
}

// IsConfigured reports whether the app token, secret and base URL are set.
func (s *Service) IsConfigured() bool {
	return !vendor.Missing(s.cfg.AppToken, s.cfg.SecretKey, s.cfg.BaseURL)
}

// Initialize is a no-op; Sumsub needs no setup.
func (s *Service) Initialize(ctx context.Context) error {
	return nil
}

// HealthCheck queries the API status endpoint.
func (s *Service) HealthCheck(ctx context.Context) registry.HealthResult {
	return registry.ResultFromError(s.client.Ping(ctx, "/resources/status/api"))
}

// Signature computes the X-App-Access-Sig value for a request.
func Signature(secret string, ts int64, method, requestURI string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10) + method + requestURI))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Service) sign(req *http.Request, body []byte) error {
	ts := s.now().Unix()
	req.Header.Set("X-App-Access-Ts", strconv.FormatInt(ts, 10))
	req.Header.Set("X-App-Access-Sig", Signature(s.cfg.SecretKey, ts, req.Method, req.URL.RequestURI(), body))
	return nil
}

// CreateApplicant registers externalUserID at the configured verification level.
func (s *Service) CreateApplicant(ctx context.Context, externalUserID string) (*Applicant, error) {
	if !s.IsConfigured() {
		return nil, vendor.NotConfigured(Name)
	}
	if externalUserID == "" {
		return nil, fmt.Errorf("%w: external user id is required", ErrInvalidParams)
	}

	var a Applicant
	err := s.client.Do(ctx, http.MethodPost, "/resources/applicants",
		map[string]string{"externalUserId": externalUserID}, &a,
		vendor.Query(url.Values{"levelName": {s.cfg.LevelName}}))
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AccessToken issues a short-lived SDK token for externalUserID.
func (s *Service) AccessToken(ctx context.Context, externalUserID string) (*AccessToken, error) {
	if !s.IsConfigured() {
		return nil, vendor.NotConfigured(Name)
	}
	if externalUserID == "" {
		return nil, fmt.Errorf("%w: external user id is required", ErrInvalidParams)
	}

	q := url.Values{
		"userId":    {externalUserID},
		"levelName": {s.cfg.LevelName},
		"ttlInSecs": {strconv.Itoa(int(accessTokenTTL.Seconds()))},
	}
	var tok AccessToken
	if err := s.client.Do(ctx, http.MethodPost, "/resources/accessTokens", nil, &tok, vendor.Query(q)); err != nil {
		return nil, err
	}
	return &tok, nil
}

type applicantResponse struct {
	ID     string `json:"id"`
	Review struct {
		ReviewStatus string `json:"reviewStatus"`
		ReviewResult struct {
			ReviewAnswer string `json:"reviewAnswer"`
		} `json:"reviewResult"`
	} `json:"review"`
}

// ApplicantStatus returns the review state of applicantID.
func (s *Service) ApplicantStatus(ctx context.Context, applicantID string) (*ApplicantStatus, error) {
	if !s.IsConfigured() {
		return nil, vendor.NotConfigured(Name)
	}
	if applicantID == "" {
		return nil, fmt.Errorf("%w: applicant id is required", ErrInvalidParams)
	}

	var resp applicantResponse
	path := "/resources/applicants/" + url.PathEscape(applicantID) + "/one"
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &ApplicantStatus{
		ID:           resp.ID,
		ReviewStatus: resp.Review.ReviewStatus,
		ReviewAnswer: resp.Review.ReviewResult.ReviewAnswer,
	}, nil
}
