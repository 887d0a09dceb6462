package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// ClientOption represents a function that can modify the HTTP client
type ClientOption func(*clientConfig)

// Middleware represents a function that wraps an http.RoundTripper
type Middleware func(http.RoundTripper) http.RoundTripper

type clientConfig struct {
	timeout        time.Duration
	transport      http.RoundTripper
	defaultHeaders map[string]string
	middlewares    []Middleware
}

// NewHTTPClient builds the *http.Client used for JSON-RPC calls to the node
func NewHTTPClient(options ...ClientOption) *http.Client {
	cfg := &clientConfig{
		timeout:        defaultTimeout,
		transport:      http.DefaultTransport,
		defaultHeaders: map[string]string{},
	}
	for _, option := range options {
		option(cfg)
	}

	transport := cfg.transport
	// Apply middlewares in reverse order so the first one is outermost
	for i := len(cfg.middlewares) - 1; i >= 0; i-- {
		transport = cfg.middlewares[i](transport)
	}
	if len(cfg.defaultHeaders) > 0 {
		transport = &headerRoundTripper{next: transport, headers: cfg.defaultHeaders}
	}

	return &http.Client{
		Timeout:   cfg.timeout,
		Transport: transport,
	}
}

// WithTimeout sets the timeout for all requests
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithTransport replaces the base transport
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *clientConfig) {
		c.transport = transport
	}
}

// WithDefaultHeader adds a header to every request
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *clientConfig) {
		c.defaultHeaders[key] = value
	}
}

// WithMiddleware adds a middleware to the client
func WithMiddleware(middleware Middleware) ClientOption {
	return func(c *clientConfig) {
		c.middlewares = append(c.middlewares, middleware)
	}
}

type headerRoundTripper struct {
	next    http.RoundTripper
	headers map[string]string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range h.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return h.next.RoundTrip(req)
}

// LoggingMiddleware logs every request and response at debug level, and
// transport failures at error level
func LoggingMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return &loggingRoundTripper{next: next, logger: logger}
	}
}

type loggingRoundTripper struct {
	next   http.RoundTripper
	logger *zap.Logger
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := l.next.RoundTrip(req)

	duration := time.Since(start)
	if err != nil {
		l.logger.Error("HTTP request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Error(err),
			zap.Duration("duration", duration))
		return resp, err
	}

	l.logger.Debug("HTTP response received",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))

	return resp, nil
}
