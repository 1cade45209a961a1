package admission

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Engine implements the fixed-window admission algorithm on top of a shared
// counter Store.
//
// Fixed windows were chosen over a true sliding log for O(1) memory and O(1)
// decision cost per request, at the cost of allowing up to a 2x burst across
// a window boundary.
type Engine struct {
	store    Store
	registry *Registry
	timeout  time.Duration
	logger   Logger
	now      func() time.Time
	warnRate *rate.Limiter
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithStoreTimeout bounds the single blocking call the engine makes per
// request: the atomic increment against the counter store. Once the timeout
// elapses the store is treated as unavailable and the engine fails open.
func WithStoreTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithEngineLogger sets the logger used for store-outage warnings and
// per-decision debug lines.
func WithEngineLogger(l Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the engine's time source. Intended for tests that
// need to cross window boundaries deterministically.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an Engine backed by the given store and tier registry.
// The default store timeout is 50ms.
func NewEngine(store Store, registry *Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		registry: registry,
		timeout:  50 * time.Millisecond,
		logger:   &noopLogger{},
		now:      time.Now,
		// During an outage every request would otherwise emit a warning.
		warnRate: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate decides whether one request from the principal may proceed under
// the tier and computes the quota headers' raw material.
//
// The counter is incremented before the admit/deny check, so denied requests
// still consume a slot. This prevents a client that spams requests at the
// quota boundary from always appearing as "the first request under quota".
// For the same reason an increment issued for a request the client later
// cancels is never rolled back.
func (e *Engine) Evaluate(ctx context.Context, p Principal, tier Tier) (Verdict, error) {
	policy, ok := e.registry.Policy(tier)
	if !ok {
		return Verdict{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}

	limit := policy.BaseQuota * p.Class.multiplier()
	now := e.now()
	windowStart := now.Truncate(policy.Window)
	resetAt := windowStart.Add(policy.Window)

	key := compositeKey(p.Key, tier, windowStart)

	storeCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	count, err := e.store.Increment(storeCtx, key, policy.Window)
	if err != nil {
		// Fail open: availability of the application takes priority over
		// strict quota enforcement during store outages.
		if e.warnRate.Allow() {
			e.logger.Warnf("failing open for key %q: %v: %v", key, ErrStoreUnavailable, err)
		}
		return Verdict{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			Window:    policy.Window,
			ResetAt:   resetAt,
		}, nil
	}

	v := Verdict{
		Allowed: count <= limit,
		Limit:   limit,
		Window:  policy.Window,
		ResetAt: resetAt,
	}
	if remaining := limit - count; remaining > 0 {
		v.Remaining = remaining
	}
	if !v.Allowed {
		v.RetryAfter = resetAt.Sub(now)
		if v.RetryAfter < time.Second {
			v.RetryAfter = time.Second
		}
	}
	return v, nil
}

// compositeKey addresses one counter in the shared store. Embedding the
// window start makes rollover automatic: the first request of a new window
// increments a fresh key and the old entry simply expires.
func compositeKey(principalKey string, tier Tier, windowStart time.Time) string {
	return "rl:" + principalKey + ":" + string(tier) + ":" + strconv.FormatInt(windowStart.Unix(), 10)
}
