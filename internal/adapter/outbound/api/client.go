package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fitness-app/fitclient/internal/ctxkey"
	"github.com/fitness-app/fitclient/internal/domain/session"
)

const (
	instrumentationName = "github.com/fitness-app/fitclient/internal/adapter/outbound/api"

	// maxResponseBodySize caps how much of a response body is read.
	maxResponseBodySize = 10 * 1024 * 1024 // 10MB

	defaultTimeout = 30 * time.Second
)

// Client issues requests to the backend. It is safe for concurrent use; the
// in-memory token is last-writer-wins.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	store      session.Store
	metrics    *Metrics
	tracer     trace.Tracer
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a client. It reads FITCLIENT_API_* environment variables
// by default; options override them. When a store is configured the persisted
// token is loaded into memory. Nothing else is read eagerly.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: envOrDefault("FITCLIENT_API_BASE_URL", DefaultBaseURL),
		timeout: parseDurationEnv("FITCLIENT_API_TIMEOUT", defaultTimeout),
		tracer:  otel.GetTracerProvider().Tracer(instrumentationName),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	if c.store != nil {
		if err := c.RefreshToken(); err != nil {
			c.logger.Warn("failed to read persisted token", "error", err)
		}
	}

	return c
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the in-memory bearer token ("" when unauthenticated).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the in-memory token. It does not touch the store.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken forgets the in-memory token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// IsAuthenticated reports whether a token is held in memory. No network call.
func (c *Client) IsAuthenticated() bool {
	return c.Token() != ""
}

// RefreshToken re-reads the token from the store, picking up writes made by
// another flow or process. Without a store it does nothing.
func (c *Client) RefreshToken() error {
	if c.store == nil {
		return nil
	}
	token, err := session.Lookup(c.store, session.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	c.SetToken(token)
	return nil
}

// Call sends one request to baseURL+endpoint and normalizes the outcome.
//
// Non-2xx responses return *RequestFailedError, transport failures return
// *NetworkError. Every failure is logged and returned; none is swallowed.
// There is no retry.
func (c *Client) Call(ctx context.Context, endpoint string, opts CallOptions) (*Response, error) {
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	method := opts.Method
	if method == "" {
		method = MethodGet
	}

	ctx, span := c.tracer.Start(ctx, "api "+string(method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", string(method)),
			attribute.String("url.path", endpoint),
			attribute.Bool("fitclient.skip_auth", opts.SkipAuth),
		),
	)
	defer span.End()

	logger := c.loggerFor(ctx)
	start := time.Now()
	resp, err := c.do(ctx, method, endpoint, opts)
	c.observe(method, resp, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("api call failed",
			"method", method,
			"endpoint", endpoint,
			"error", err,
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	logger.Debug("api call succeeded",
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
	)
	return resp, nil
}

// do performs the HTTP exchange for Call.
func (c *Client) do(ctx context.Context, method Method, endpoint string, opts CallOptions) (*Response, error) {
	url := strings.TrimRight(c.baseURL, "/") + endpoint

	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(method), url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header = c.buildHeaders(opts)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Method: string(method), URL: url, Cause: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodySize))
	if err != nil {
		return nil, &NetworkError{Method: string(method), URL: url, Cause: fmt.Errorf("read response body: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, newRequestFailed(httpResp.StatusCode, statusText(httpResp), respBody)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}
	if resp.IsJSON() && len(bytes.TrimSpace(respBody)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(respBody))
		dec.UseNumber()
		if err := dec.Decode(&resp.Data); err != nil {
			return nil, fmt.Errorf("decode response from %s: %w", endpoint, err)
		}
	}
	return resp, nil
}

// buildHeaders composes the request headers: JSON defaults, then caller
// overrides, then the bearer token unless SkipAuth is set. Set is used
// throughout so each header appears once.
func (c *Client) buildHeaders(opts CallOptions) http.Header {
	h := make(http.Header, 3+len(opts.Headers))
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	for k, v := range opts.Headers {
		h.Set(k, v)
	}
	if !opts.SkipAuth {
		if token := c.Token(); token != "" {
			h.Set("Authorization", "Bearer "+token)
		}
	}
	return h
}

// loggerFor returns the logger stored in ctx under ctxkey.LoggerKey, or the
// client's own logger.
func (c *Client) loggerFor(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxkey.LoggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return c.logger
}

// observe records metrics for one call.
func (c *Client) observe(method Method, resp *Response, err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	status := "network_error"
	switch e := err.(type) {
	case nil:
		status = strconv.Itoa(resp.StatusCode)
	case *RequestFailedError:
		status = strconv.Itoa(e.StatusCode)
	case *NetworkError:
	default:
		status = "client_error"
	}
	c.metrics.RequestsTotal.WithLabelValues(string(method), status).Inc()
	c.metrics.RequestDuration.WithLabelValues(string(method)).Observe(elapsed.Seconds())
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		return data, nil
	}
}

// messageFromBody extracts a non-empty "message" string from a JSON object body.
func messageFromBody(body []byte) string {
	var payload struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Message.(string); ok {
		return s
	}
	return ""
}

// statusText returns the reason phrase the server sent, falling back to the
// standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// Helper functions for env var parsing.

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	// Try parsing as seconds (integer).
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}
