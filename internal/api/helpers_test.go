package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/platform/logger"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/ethicbank/portal-api/internal/service"
	"github.com/ethicbank/portal-api/internal/service/auth"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestRouter mounts routes behind a middleware that authenticates every
// request as userID. A nil userID leaves the request anonymous.
func newTestRouter(userID *uuid.UUID, mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.WithTraceID(req.Context(), "trace-test")
			if userID != nil {
				ctx = shared.WithUserID(ctx, *userID)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	mount(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	l, _ := logger.NewTestLogger(t)
	return l
}

func ptr[T any](v T) *T { return &v }

// fakeUsers is a function-field UserService.
type fakeUsers struct {
	GetUserFn       func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfileFn func(ctx context.Context, userID uuid.UUID, update service.ProfileUpdate) (*domain.User, error)
	SetKYCFn        func(ctx context.Context, userID uuid.UUID, applicantID string, status domain.KYCStatus) (*domain.User, error)
	DeleteUserFn    func(ctx context.Context, userID uuid.UUID) error
}

func (f *fakeUsers) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return f.GetUserFn(ctx, userID)
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID uuid.UUID, update service.ProfileUpdate) (*domain.User, error) {
	return f.UpdateProfileFn(ctx, userID, update)
}

func (f *fakeUsers) SetKYC(ctx context.Context, userID uuid.UUID, applicantID string, status domain.KYCStatus) (*domain.User, error) {
	return f.SetKYCFn(ctx, userID, applicantID, status)
}

func (f *fakeUsers) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return f.DeleteUserFn(ctx, userID)
}

// fakeLedger is a function-field LedgerService.
type fakeLedger struct {
	CreateFn func(ctx context.Context, userID uuid.UUID, in service.NewTransaction) (*domain.Transaction, error)
	GetFn    func(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error)
	ListFn   func(ctx context.Context, userID uuid.UUID, page store.Page) ([]*domain.Transaction, error)
	SettleFn func(ctx context.Context, userID, id uuid.UUID, status domain.TransactionStatus) (*domain.Transaction, error)
}

func (f *fakeLedger) CreateTransaction(ctx context.Context, userID uuid.UUID, in service.NewTransaction) (*domain.Transaction, error) {
	return f.CreateFn(ctx, userID, in)
}

func (f *fakeLedger) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	return f.GetFn(ctx, userID, id)
}

func (f *fakeLedger) ListTransactions(ctx context.Context, userID uuid.UUID, page store.Page) ([]*domain.Transaction, error) {
	return f.ListFn(ctx, userID, page)
}

func (f *fakeLedger) Settle(ctx context.Context, userID, id uuid.UUID, status domain.TransactionStatus) (*domain.Transaction, error) {
	return f.SettleFn(ctx, userID, id, status)
}

// fakeSavings is a function-field SavingsService.
type fakeSavings struct {
	CreateFn  func(ctx context.Context, userID uuid.UUID, name string, target decimal.Decimal, currency string, deadline *time.Time) (*domain.SavingsGoal, error)
	GetFn     func(ctx context.Context, userID, id uuid.UUID) (*domain.SavingsGoal, error)
	ListFn    func(ctx context.Context, userID uuid.UUID) ([]*domain.SavingsGoal, error)
	DepositFn func(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (*domain.SavingsGoal, error)
	DeleteFn  func(ctx context.Context, userID, id uuid.UUID) error
}

func (f *fakeSavings) CreateGoal(ctx context.Context, userID uuid.UUID, name string, target decimal.Decimal, currency string, deadline *time.Time) (*domain.SavingsGoal, error) {
	return f.CreateFn(ctx, userID, name, target, currency, deadline)
}

func (f *fakeSavings) GetGoal(ctx context.Context, userID, id uuid.UUID) (*domain.SavingsGoal, error) {
	return f.GetFn(ctx, userID, id)
}

func (f *fakeSavings) ListGoals(ctx context.Context, userID uuid.UUID) ([]*domain.SavingsGoal, error) {
	return f.ListFn(ctx, userID)
}

func (f *fakeSavings) Deposit(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (*domain.SavingsGoal, error) {
	return f.DepositFn(ctx, userID, id, amount)
}

func (f *fakeSavings) DeleteGoal(ctx context.Context, userID, id uuid.UUID) error {
	return f.DeleteFn(ctx, userID, id)
}

// fakeRewards is a function-field RewardService.
type fakeRewards struct {
	ListFn   func(ctx context.Context, userID uuid.UUID) (*service.RewardSummary, error)
	RedeemFn func(ctx context.Context, userID, id uuid.UUID) (*domain.Reward, error)
}

func (f *fakeRewards) ListRewards(ctx context.Context, userID uuid.UUID) (*service.RewardSummary, error) {
	return f.ListFn(ctx, userID)
}

func (f *fakeRewards) Redeem(ctx context.Context, userID, id uuid.UUID) (*domain.Reward, error) {
	return f.RedeemFn(ctx, userID, id)
}

// fakeChat is a function-field ChatService.
type fakeChat struct {
	SendFn    func(ctx context.Context, userID uuid.UUID, message string) (*domain.ChatMessage, error)
	HistoryFn func(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ChatMessage, error)
}

func (f *fakeChat) Send(ctx context.Context, userID uuid.UUID, message string) (*domain.ChatMessage, error) {
	return f.SendFn(ctx, userID, message)
}

func (f *fakeChat) History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	return f.HistoryFn(ctx, userID, limit)
}

// fakeSessions is a function-field SessionService.
type fakeSessions struct {
	RegisterFn    func(ctx context.Context, email, password string) (*domain.User, *auth.TokenPair, error)
	LoginFn       func(ctx context.Context, email, password string) (*domain.User, *auth.TokenPair, error)
	RefreshFn     func(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	WalletLoginFn func(ctx context.Context, provider, token string) (*domain.User, *auth.TokenPair, error)
}

func (f *fakeSessions) Register(ctx context.Context, email, password string) (*domain.User, *auth.TokenPair, error) {
	return f.RegisterFn(ctx, email, password)
}

func (f *fakeSessions) Login(ctx context.Context, email, password string) (*domain.User, *auth.TokenPair, error) {
	return f.LoginFn(ctx, email, password)
}

func (f *fakeSessions) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	return f.RefreshFn(ctx, refreshToken)
}

func (f *fakeSessions) WalletLogin(ctx context.Context, provider, token string) (*domain.User, *auth.TokenPair, error) {
	return f.WalletLoginFn(ctx, provider, token)
}

// configuredService is embedded by registry fakes.
type configuredService struct {
	configured bool
}

func (s configuredService) IsConfigured() bool { return s.configured }

func (configuredService) Initialize(context.Context) error { return nil }

func (configuredService) HealthCheck(context.Context) registry.HealthResult {
	return registry.Healthy()
}
