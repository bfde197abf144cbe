package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fatflowers/travelpay/pkg/config"
	"github.com/fatflowers/travelpay/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

const (
	initializePath = "/transaction/initialize"
	verifyPath     = "/transaction/verify/"

	defaultTimeout = 15 * time.Second
	// maxBodyBytes caps how much of a provider response is read.
	maxBodyBytes = 1 << 20
)

// ErrTransport marks failures to obtain a usable response from the provider:
// network errors, timeouts, non-2xx statuses and undecodable bodies.
var ErrTransport = errors.New("gateway transport error")

// TransportError carries the HTTP status (0 when no response was received).
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Response is the provider's loosely typed JSON document.
type Response map[string]any

type InitializeRequest struct {
	TxRef       string          `json:"tx_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	ReturnURL   string          `json:"return_url,omitempty"`
	CallbackURL string          `json:"callback_url,omitempty"`
}

// Client is the outbound contract with the payment provider. A business
// failure reported by the provider is a normal Response, not an error.
type Client interface {
	InitializeTransaction(ctx context.Context, req *InitializeRequest) (Response, error)
	VerifyTransaction(ctx context.Context, txRef string) (Response, error)
}

type Options struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

type HTTPClient struct {
	opts    Options
	http    *http.Client
	metrics *metrics.PaymentMetrics
}

func NewHTTPClient(opts Options, m *metrics.PaymentMetrics) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &HTTPClient{
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		metrics: m,
	}
}

func newClient(cfg *config.Config, m *metrics.PaymentMetrics) Client {
	return NewHTTPClient(Options{
		BaseURL:   cfg.Gateway.BaseURL,
		SecretKey: cfg.Gateway.SecretKey,
		Timeout:   cfg.Gateway.Timeout,
	}, m)
}

func (c *HTTPClient) InitializeTransaction(ctx context.Context, req *InitializeRequest) (Response, error) {
	body, err := json.Marshal(initializePayload(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize request: %w", err)
	}
	return c.do(ctx, "initialize", http.MethodPost, c.opts.BaseURL+initializePath, body)
}

func (c *HTTPClient) VerifyTransaction(ctx context.Context, txRef string) (Response, error) {
	return c.do(ctx, "verify", http.MethodGet, c.opts.BaseURL+verifyPath+url.PathEscape(txRef), nil)
}

// initializePayload sends the amount as a JSON number, which the provider expects.
func initializePayload(req *InitializeRequest) map[string]any {
	amount, _ := req.Amount.Float64()
	payload := map[string]any{
		"tx_ref":     req.TxRef,
		"amount":     amount,
		"currency":   req.Currency,
		"email":      req.Email,
		"first_name": req.FirstName,
		"last_name":  req.LastName,
	}
	if req.ReturnURL != "" {
		payload["return_url"] = req.ReturnURL
	}
	if req.CallbackURL != "" {
		payload["callback_url"] = req.CallbackURL
	}
	return payload
}

func (c *HTTPClient) do(ctx context.Context, op, method, endpoint string, body []byte) (res Response, retErr error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if retErr != nil {
			result = "transport_error"
		}
		c.metrics.ObserveGateway(op, result, start)
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", truncate(raw, 512))}
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out == nil {
		out = Response{}
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var Module = fx.Options(
	fx.Provide(newClient),
)
