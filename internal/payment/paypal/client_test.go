package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayPal struct {
	t             *testing.T
	tokenStatus   int
	createStatus  int
	captureStatus int
	captureState  string
	noApprove     bool
	lastCreate    createOrderRequest
	lastCaptureID string
	tokenCalls    atomic.Int32
}

func (f *fakePayPal) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":32400}`))
	})
	mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&f.lastCreate); err != nil {
			f.t.Errorf("decode create: %v", err)
		}
		if f.createStatus != 0 {
			w.WriteHeader(f.createStatus)
			_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		if f.noApprove {
			_, _ = w.Write([]byte(`{"id":"S1","status":"CREATED","links":[{"href":"https://x/self","rel":"self"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"S1","status":"CREATED","links":[
			{"href":"https://x/self","rel":"self","method":"GET"},
			{"href":"https://paypal.test/checkoutnow?token=S1","rel":"approve","method":"GET"}]}`))
	})
	mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, r *http.Request) {
		f.lastCaptureID = r.PathValue("id")
		if f.captureStatus != 0 {
			w.WriteHeader(f.captureStatus)
			_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_ALREADY_CAPTURED"}]}`))
			return
		}
		state := f.captureState
		if state == "" {
			state = "COMPLETED"
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"` + f.lastCaptureID + `","status":"` + state + `",
			"purchase_units":[{"payments":{"captures":[{"id":"CAP-9","status":"COMPLETED"}]}}]}`))
	})
	return mux
}

func newTestClient(t *testing.T, f *fakePayPal, cfg Config) *Client {
	t.Helper()
	f.t = t
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL
	return New(cfg, nil)
}

func TestAuthenticateNotConfigured(t *testing.T) {
	c := New(Config{Mode: ModeSandbox}, nil)
	_, err := c.Authenticate(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.CreateSession(context.Background(), decimal.NewFromInt(1), "r", "c")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestAuthenticateRejected(t *testing.T) {
	c := newTestClient(t, &fakePayPal{}, Config{ClientID: "id", ClientSecret: "wrong"})
	_, err := c.Authenticate(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestCreateSession(t *testing.T) {
	f := &fakePayPal{}
	c := newTestClient(t, f, Config{ClientID: "id", ClientSecret: "secret", Currency: "USD"})

	sess, err := c.CreateSession(context.Background(), decimal.RequireFromString("46.8"), "https://shop/return?oid=1", "https://shop/cancel")
	require.NoError(t, err)
	assert.Equal(t, "S1", sess.ID)
	assert.Equal(t, "https://paypal.test/checkoutnow?token=S1", sess.ApprovalURL)

	assert.Equal(t, "CAPTURE", f.lastCreate.Intent)
	require.Len(t, f.lastCreate.PurchaseUnits, 1)
	assert.Equal(t, "46.80", f.lastCreate.PurchaseUnits[0].Amount.Value)
	assert.Equal(t, "USD", f.lastCreate.PurchaseUnits[0].Amount.CurrencyCode)
	assert.Equal(t, "https://shop/return?oid=1", f.lastCreate.ApplicationContext.ReturnURL)
	assert.Equal(t, "https://shop/cancel", f.lastCreate.ApplicationContext.CancelURL)
	assert.Equal(t, "PAY_NOW", f.lastCreate.ApplicationContext.UserAction)
}

func TestCreateSessionProviderRejects(t *testing.T) {
	c := newTestClient(t, &fakePayPal{createStatus: http.StatusUnprocessableEntity}, Config{ClientID: "id", ClientSecret: "secret"})
	_, err := c.CreateSession(context.Background(), decimal.NewFromInt(1), "r", "c")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, "create order", apiErr.Op)
}

func TestCreateSessionWithoutApproveLink(t *testing.T) {
	c := newTestClient(t, &fakePayPal{noApprove: true}, Config{ClientID: "id", ClientSecret: "secret"})
	_, err := c.CreateSession(context.Background(), decimal.NewFromInt(1), "r", "c")
	require.Error(t, err)
}

func TestCapture(t *testing.T) {
	f := &fakePayPal{}
	c := newTestClient(t, f, Config{ClientID: "id", ClientSecret: "secret"})

	res, err := c.Capture(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "S1", f.lastCaptureID)
	assert.Equal(t, "COMPLETED", res.Status)
	assert.Equal(t, "CAP-9", res.CaptureID)
	assert.Equal(t, int32(1), f.tokenCalls.Load())
}

func TestCaptureFailures(t *testing.T) {
	t.Run("already captured", func(t *testing.T) {
		c := newTestClient(t, &fakePayPal{captureStatus: http.StatusUnprocessableEntity}, Config{ClientID: "id", ClientSecret: "secret"})
		_, err := c.Capture(context.Background(), "S1")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr), "got %v", err)
		assert.Contains(t, apiErr.Body, "ORDER_ALREADY_CAPTURED")
	})
	t.Run("not completed", func(t *testing.T) {
		c := newTestClient(t, &fakePayPal{captureState: "PENDING"}, Config{ClientID: "id", ClientSecret: "secret"})
		_, err := c.Capture(context.Background(), "S1")
		require.ErrorIs(t, err, ErrCaptureIncomplete)
	})
	t.Run("empty session", func(t *testing.T) {
		c := New(Config{ClientID: "id", ClientSecret: "secret"}, nil)
		_, err := c.Capture(context.Background(), " ")
		require.Error(t, err)
	})
}

func TestModeSelectsBaseURL(t *testing.T) {
	assert.Equal(t, SandboxBaseURL, New(Config{Mode: ModeSandbox}, nil).baseURL)
	assert.Equal(t, LiveBaseURL, New(Config{Mode: ModeLive}, nil).baseURL)
	assert.Equal(t, "http://fake", New(Config{Mode: ModeLive, BaseURL: "http://fake/"}, nil).baseURL)
}
