package api

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/fitness-app/fitclient/internal/domain/session"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithBaseURL sets the backend origin, including the /api prefix.
// If not set, defaults to the FITCLIENT_API_BASE_URL environment variable or DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to the FITCLIENT_API_TIMEOUT environment variable or 30 seconds.
// Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom http.Client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStore sets the persisted key-value store. The stored token is read into
// memory when the client is built and again on every RefreshToken.
func WithStore(s session.Store) Option {
	return func(c *Client) {
		c.store = s
	}
}

// WithToken seeds the in-memory token. Ignored when WithStore is also used,
// since the persisted token is authoritative.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracerProvider sets the provider spans are created from.
// Defaults to the global OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(instrumentationName)
		}
	}
}
