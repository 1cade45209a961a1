// Package admission implements tiered, identity-aware request admission
// control: every API request is resolved to a principal, checked against the
// fixed-window quota of its route's tier, and answered with standardized
// RateLimit-* headers.
//
// The package owns only the decision. Routing, authentication, and the
// counter store itself are external; they meet this package at the
// Evaluator, Identity, and Store boundaries.
package admission

import (
	"context"
	"time"
)

// Verdict contains the outcome of an admission check for a single request.
// It provides the necessary data to populate standard rate-limiting HTTP headers.
type Verdict struct {
	// Allowed indicates whether the request is permitted.
	Allowed bool
	// Limit is the effective number of requests allowed in the current window,
	// after the principal-class multiplier has been applied.
	Limit int64
	// Remaining is the number of requests left in the current window.
	Remaining int64
	// Window is the length of the fixed window the verdict was computed for.
	Window time.Duration
	// ResetAt is the instant at which the current window ends and the
	// counter rolls over.
	ResetAt time.Time
	// RetryAfter is the recommended client back-off. It is zero when the
	// request is allowed and at least one second when it is denied.
	RetryAfter time.Duration
}

// Evaluator decides whether a request from a principal may proceed under a
// given tier. It is the primary interface that middleware interacts with.
type Evaluator interface {
	// Evaluate checks the principal's quota for the tier and returns a
	// Verdict. It returns a non-nil error only for wiring mistakes (an
	// undefined tier); counter-store failures are absorbed by failing open.
	Evaluate(ctx context.Context, p Principal, tier Tier) (Verdict, error)
}

// Store defines the interface for the shared counter store.
// This abstraction allows for interchangeable backend implementations
// (e.g., in-memory, Redis).
type Store interface {
	// Increment atomically increments the counter for a given key and returns
	// the post-increment value. If the key does not exist, it must be created
	// with a value of 1 and an expiration equal to ttl. The increment and the
	// read must be a single atomic operation: two concurrent callers must
	// never observe the same value.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
