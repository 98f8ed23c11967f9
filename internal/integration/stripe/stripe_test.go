package stripe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethicbank/portal-api/internal/config"
	"github.com/ethicbank/portal-api/internal/integration/stripe"
	"github.com/ethicbank/portal-api/internal/integration/vendor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var httpCfg = config.VendorHTTPConfig{Timeout: time.Second, RequestsPerSecond: 100, Burst: 10, MaxRetries: 1}

func newService(url string) *stripe.Service {
	return stripe.New(config.StripeConfig{SecretKey: "sk_test_123", BaseURL: url}, httpCfg, nil,
		vendor.WithBaseDelay(time.Millisecond))
}

func TestIsConfiguredAndInitialize(t *testing.T) {
	assert.False(t, stripe.New(config.StripeConfig{BaseURL: "https://api.stripe.com"}, httpCfg, nil).IsConfigured())

	svc := newService("https://api.stripe.com")
	assert.True(t, svc.IsConfigured())
	assert.NoError(t, svc.Initialize(context.Background()))

	pk := stripe.New(config.StripeConfig{SecretKey: "pk_live_abc", BaseURL: "https://api.stripe.com"}, httpCfg, nil)
	assert.ErrorContains(t, pk.Initialize(context.Background()), "publishable key")
}

func TestCreateCardholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/issuing/cardholders", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "individual", r.PostForm.Get("type"))
		assert.Equal(t, "Ana Lima", r.PostForm.Get("name"))
		assert.Equal(t, "PT", r.PostForm.Get("billing[address][country]"))
		_, _ = w.Write([]byte(`{"id":"ich_1","name":"Ana Lima","status":"active"}`))
	}))
	defer srv.Close()

	ch, err := newService(srv.URL).CreateCardholder(context.Background(), stripe.CardholderParams{
		Name:    "Ana Lima",
		Email:   "ana@example.org",
		Billing: stripe.Address{Line1: "Rua A 1", City: "Lisboa", PostalCode: "1000-001", Country: "pt"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ich_1", ch.ID)
}

func TestIssueCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "ich_1", r.PostForm.Get("cardholder"))
		assert.Equal(t, "eur", r.PostForm.Get("currency"))
		assert.Equal(t, "virtual", r.PostForm.Get("type"))
		_, _ = w.Write([]byte(`{"id":"ic_1","last4":"4242","brand":"Visa","exp_month":12,"exp_year":2029,"currency":"eur","status":"active"}`))
	}))
	defer srv.Close()

	card, err := newService(srv.URL).IssueCard(context.Background(), "ich_1", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "4242", card.Last4)
	assert.Equal(t, 2029, card.ExpYear)

	_, err = newService(srv.URL).IssueCard(context.Background(), "", "EUR")
	assert.ErrorIs(t, err, stripe.ErrInvalidParams)
}

func TestCreatePaymentIntent_RetriesWithSameIdempotencyKey(t *testing.T) {
	var calls atomic.Int32
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "2500", r.PostForm.Get("amount"))
		assert.Equal(t, "true", r.PostForm.Get("automatic_payment_methods[enabled]"))
		assert.Equal(t, "u1", r.PostForm.Get("metadata[user_id]"))
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret","amount":2500,"currency":"eur","status":"requires_payment_method"}`))
	}))
	defer srv.Close()

	pi, err := newService(srv.URL).CreatePaymentIntent(context.Background(), 2500, "eur", "idem-1",
		map[string]string{"user_id": "u1"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", pi.ClientSecret)
	assert.Equal(t, []string{"idem-1", "idem-1"}, keys)
}

func TestCreatePaymentIntent_Validation(t *testing.T) {
	svc := newService("http://unused")
	_, err := svc.CreatePaymentIntent(context.Background(), 0, "eur", "", nil)
	assert.ErrorIs(t, err, stripe.ErrInvalidParams)
	_, err = svc.CreatePaymentIntent(context.Background(), 100, "euro", "", nil)
	assert.ErrorIs(t, err, stripe.ErrInvalidParams)
}

func TestCardDeclinedMapsToBadData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	_, err := newService(srv.URL).CreatePaymentIntent(context.Background(), 100, "eur", "", nil)
	require.Error(t, err)
	ve, ok := vendor.AsError(err)
	require.True(t, ok)
	assert.Equal(t, vendor.CategoryBadData, ve.Category)
	assert.Equal(t, "Your card was declined.", ve.Message)
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/balance", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer sk_test_123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"object":"balance"}`))
	}))
	defer srv.Close()

	assert.True(t, newService(srv.URL).HealthCheck(context.Background()).OK())

	bad := stripe.New(config.StripeConfig{SecretKey: "sk_wrong", BaseURL: srv.URL}, httpCfg, nil)
	assert.False(t, bad.HealthCheck(context.Background()).OK())
}
