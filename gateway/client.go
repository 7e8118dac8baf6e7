package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 30 * time.Second
	RequestIDHeader = "X-Request-ID"
)

// Client sends requests to the marketplace backend. Every request passes
// through the registered interceptors; session handling is attached with Bind.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       zerolog.Logger
	metrics      *Metrics
	limiter      *rate.Limiter
	interceptors *Interceptors
	timeout      time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. An injected HTTP client is copied,
// never changed.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRateLimit paces outgoing requests. Requests wait for a token; nothing is retried.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a client for the backend at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("[gateway.New] baseURL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[gateway.New] invalid baseURL %q", baseURL)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: defaultTimeout},
		logger:       zerolog.Nop(),
		interceptors: &Interceptors{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.httpClient.Timeout != c.timeout {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Interceptors returns the client's hook registry
func (c *Client) Interceptors() *Interceptors {
	return c.interceptors
}

// Do sends a request and returns the response for a 2xx status. Any other
// status is returned as an *APIError after the response interceptors have run.
// body, when non-nil, is encoded as JSON. The caller closes the response body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}

	reqHooks, respHooks := c.interceptors.snapshot()
	for _, hook := range reqHooks {
		if err := hook(req); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest(method, 0, time.Since(start))
		err = fmt.Errorf("execute request: %w", err)
		resp = nil
	} else {
		c.metrics.RecordRequest(method, resp.StatusCode, time.Since(start))
		err = CheckError(resp)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Int("status", statusOf(resp)).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("backend request")

	for _, hook := range respHooks {
		err = hook(req, resp, err)
	}

	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	return req, nil
}

// DoJSON sends a request and decodes the JSON response into out. out may be nil.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.DoJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.DoJSON(ctx, http.MethodPatch, path, query, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, http.MethodDelete, path, nil, nil, out)
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
