// Package paypal talks to the PayPal REST API: OAuth client credentials and Orders v2 checkout.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"
)

var (
	// ErrNotConfigured means client id or secret is missing for the selected mode.
	ErrNotConfigured = errors.New("paypal credentials not configured")
	// ErrCaptureIncomplete means PayPal answered the capture but did not complete it.
	ErrCaptureIncomplete = errors.New("paypal capture not completed")
)

// APIError carries a non-2xx answer from PayPal.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal %s: status %d: %s", e.Op, e.Status, e.Body)
}

// Mode selects credentials and endpoints for the lifetime of the process.
type Mode string

const (
	ModeSandbox Mode = "sandbox"
	ModeLive    Mode = "live"
)

type Config struct {
	Mode         Mode
	ClientID     string
	ClientSecret string
	// BaseURL overrides the mode's endpoint, e.g. for a local fake.
	BaseURL  string
	Currency string
	Timeout  time.Duration
}

// Session is a created checkout the customer still has to approve.
type Session struct {
	ID          string
	Status      string
	ApprovalURL string
}

type CaptureResult struct {
	SessionID string
	Status    string
	CaptureID string
}

type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func New(cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	base := cfg.BaseURL
	if base == "" {
		base = SandboxBaseURL
		if cfg.Mode == ModeLive {
			base = LiveBaseURL
		}
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Mode() Mode {
	return c.cfg.Mode
}

func (c *Client) Configured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate exchanges the client credentials for a bearer token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if !c.Configured() {
		c.logger.Printf("paypal: authenticate mode=%s error=credentials missing", c.cfg.Mode)
		return "", ErrNotConfigured
	}
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var out tokenResponse
	if err := c.do(req, "authenticate", &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("paypal authenticate: empty access token")
	}
	return out.AccessToken, nil
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount amount `json:"amount"`
}

type applicationContext struct {
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
	UserAction string `json:"user_action"`
}

type createOrderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

type link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Links         []link `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// CreateSession opens a CAPTURE-intent checkout for total in the settlement currency.
func (c *Client) CreateSession(ctx context.Context, total decimal.Decimal, returnURL, cancelURL string) (Session, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return Session{}, err
	}
	body := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Amount: amount{CurrencyCode: c.cfg.Currency, Value: total.StringFixed(2)},
		}},
		ApplicationContext: applicationContext{
			ReturnURL:  returnURL,
			CancelURL:  cancelURL,
			UserAction: "PAY_NOW",
		},
	}
	req, err := c.jsonRequest(ctx, "/v2/checkout/orders", token, body)
	if err != nil {
		return Session{}, err
	}

	var out orderResponse
	if err := c.do(req, "create order", &out); err != nil {
		return Session{}, err
	}
	approve := ""
	for _, l := range out.Links {
		if l.Rel == "approve" {
			approve = l.Href
			break
		}
	}
	if out.ID == "" || approve == "" {
		return Session{}, fmt.Errorf("paypal create order: response without id or approve link (id=%q)", out.ID)
	}
	c.logger.Printf("paypal: created session id=%s amount=%s %s", out.ID, total.StringFixed(2), c.cfg.Currency)
	return Session{ID: out.ID, Status: out.Status, ApprovalURL: approve}, nil
}

// Capture finalizes an approved session. Anything short of COMPLETED is an error.
func (c *Client) Capture(ctx context.Context, sessionID string) (CaptureResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return CaptureResult{}, errors.New("paypal capture: session id required")
	}
	token, err := c.Authenticate(ctx)
	if err != nil {
		return CaptureResult{}, err
	}
	req, err := c.jsonRequest(ctx, "/v2/checkout/orders/"+url.PathEscape(sessionID)+"/capture", token, nil)
	if err != nil {
		return CaptureResult{}, err
	}

	var out orderResponse
	if err := c.do(req, "capture", &out); err != nil {
		return CaptureResult{}, err
	}
	res := CaptureResult{SessionID: out.ID, Status: out.Status}
	for _, pu := range out.PurchaseUnits {
		for _, cp := range pu.Payments.Captures {
			if res.CaptureID == "" {
				res.CaptureID = cp.ID
			}
		}
	}
	if out.Status != "COMPLETED" {
		return res, fmt.Errorf("%w: session=%s status=%q", ErrCaptureIncomplete, sessionID, out.Status)
	}
	c.logger.Printf("paypal: captured session id=%s capture_id=%s", sessionID, res.CaptureID)
	return res, nil
}

func (c *Client) jsonRequest(ctx context.Context, path, token string, body interface{}) (*http.Request, error) {
	var rdr io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (c *Client) do(req *http.Request, op string, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("paypal: %s error=%v", op, err)
		return fmt.Errorf("paypal %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("paypal %s: read body: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Op: op, Status: resp.StatusCode, Body: excerpt(raw)}
		c.logger.Printf("paypal: %s status=%d body=%s", op, resp.StatusCode, apiErr.Body)
		return apiErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("paypal %s: decode: %w", op, err)
	}
	return nil
}

func excerpt(raw []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(raw))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
