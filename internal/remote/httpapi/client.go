package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fdms-kiosk-backend/internal/domain"
	"fdms-kiosk-backend/internal/logger"
	"fdms-kiosk-backend/internal/remote"
)

// maxResponseBytes caps how much of a response body is read. FDMS payloads
// are small; anything larger is a misbehaving server.
const maxResponseBytes = 4 << 20

// Client talks to the FDMS backend over HTTP and implements all of the
// remote API interfaces. Responses are parsed into Envelopes but not
// normalized here; that happens at the workflow boundary.
type Client struct {
	baseURL string
	http    *http.Client
	tokenFn func(ctx context.Context) string
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches a bearer-token lookup invoked per request. An
// empty result sends the request unauthenticated.
func WithTokenSource(fn func(ctx context.Context) string) Option {
	return func(c *Client) { c.tokenFn = fn }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context) (*remote.Envelope, error) {
	return c.get(ctx, "/settings")
}

func (c *Client) Login(ctx context.Context, password string) (*remote.Envelope, error) {
	body := struct {
		Password string `json:"password"`
	}{Password: password}
	return c.post(ctx, "/admin/login", body)
}

func (c *Client) List(ctx context.Context) (*remote.Envelope, error) {
	return c.get(ctx, "/asset-movements")
}

func (c *Client) Checkout(ctx context.Context, record *domain.AssetMovementRecord) (*remote.Envelope, error) {
	return c.post(ctx, "/asset-movements", record)
}

func (c *Client) Return(ctx context.Context, id string, ret *domain.ReturnRecord) (*remote.Envelope, error) {
	return c.post(ctx, "/asset-movements/"+url.PathEscape(id)+"/return", ret)
}

// Reasons lists movement reasons. It backs a separate MovementReasonAPI
// binding; see ReasonClient.
func (c *Client) Reasons(ctx context.Context) (*remote.Envelope, error) {
	return c.get(ctx, "/movement-reasons")
}

// ReasonClient adapts Client to remote.MovementReasonAPI, whose List method
// would otherwise collide with AssetMovementAPI's.
type ReasonClient struct {
	*Client
}

func (c ReasonClient) List(ctx context.Context) (*remote.Envelope, error) {
	return c.Reasons(ctx)
}

func (c *Client) get(ctx context.Context, path string) (*remote.Envelope, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) (*remote.Envelope, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, encoded)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*remote.Envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenFn != nil {
		if token := c.tokenFn(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger.ExternalServiceCall("fdms", method+" "+path)
	resp, err := c.http.Do(req)
	logger.ExternalServiceResult("fdms", method+" "+path, err)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	env, err := remote.ParseEnvelope(raw)
	if err != nil {
		// Some backend error paths answer with non-JSON bodies. Fold those
		// into a status-code error rather than a parse error.
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return nil, err
	}
	return env, nil
}
