package admission

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Logger is a small leveled logging interface. Users can provide their own
// logger through the adapters subpackages (zerolog, zap, logrus, stdlog) or
// any implementation of their own.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noopLogger is the default logger. It does nothing and exists to avoid nil
// checks at every call site.
type noopLogger struct{}

func (l *noopLogger) Debugf(format string, args ...interface{}) {}
func (l *noopLogger) Warnf(format string, args ...interface{})  {}
func (l *noopLogger) Errorf(format string, args ...interface{}) {}

// IdentityFunc extracts the authenticated identity for a request, if any.
// The boolean reports whether the request is authenticated at all.
type IdentityFunc func(r *http.Request) (Identity, bool)

// ClientAddrFunc extracts the raw client network address for a request.
// The result is normalized by ResolvePrincipal, so returning an address
// with a port or in a non-canonical form is fine.
type ClientAddrFunc func(r *http.Request) string

// ErrorHandler defines how to respond to a client when a request is denied.
// This gives the user full control over the body of the rejection; the
// quota headers and Retry-After are written by the middleware before the
// handler runs and should not be removed.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error, v Verdict)

// Config holds all configurable parameters for the middleware. Users
// interact with it via functional options.
type Config struct {
	IdentityFunc   IdentityFunc
	ClientAddrFunc ClientAddrFunc
	ErrorHandler   ErrorHandler
	Logger         Logger
}

// Option applies a configuration setting to a Config.
type Option func(*Config)

// rejection is the structured body written on denied requests.
type rejection struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
}

// NewConfig creates a Config with default settings and applies the provided
// options. Defaults: identity from the request context (ContextWithIdentity),
// client address from RemoteAddr, a JSON 429 error handler, and no logging.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		IdentityFunc: func(r *http.Request) (Identity, bool) {
			return IdentityFromContext(r.Context())
		},
		ClientAddrFunc: func(r *http.Request) string {
			return r.RemoteAddr
		},
		ErrorHandler: DefaultErrorHandler,
		Logger:       &noopLogger{},
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// DefaultErrorHandler writes the standard rejection: status 429 with a
// small JSON body naming the reason and the recommended back-off.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error, v Verdict) {
	retryAfter := int64(v.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	body := rejection{
		Detail:     "Request was throttled. Expected available in " + formatSeconds(retryAfter) + ".",
		StatusCode: http.StatusTooManyRequests,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(body)
}

// WithIdentityFunc returns an Option that sets a custom function for
// extracting the authenticated identity, e.g. from a framework-specific
// context or a verified header set by an upstream gateway.
func WithIdentityFunc(f IdentityFunc) Option {
	return func(c *Config) {
		if f != nil {
			c.IdentityFunc = f
		}
	}
}

// WithClientAddrFunc returns an Option that sets a custom function for
// extracting the client address used for anonymous principals.
func WithClientAddrFunc(f ClientAddrFunc) Option {
	return func(c *Config) {
		if f != nil {
			c.ClientAddrFunc = f
		}
	}
}

// WithErrorHandler returns an Option that sets a custom handler for denied
// requests, useful for matching an application's error envelope.
func WithErrorHandler(f ErrorHandler) Option {
	return func(c *Config) {
		if f != nil {
			c.ErrorHandler = f
		}
	}
}

// WithLogger returns an Option that sets a custom logger.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// XForwardedForAddr is a ClientAddrFunc for deployments behind a trusted
// reverse proxy: it takes the first (client-most) entry of X-Forwarded-For
// and falls back to RemoteAddr when the header is absent. Only use it when
// the proxy strips the header from untrusted traffic, otherwise clients can
// mint fresh anonymous buckets at will.
func XForwardedForAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	return r.RemoteAddr
}
