package admission

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrQuotaExceeded is a sentinel error passed to the middleware error
// handler when a request is denied. It is an expected traffic-shaping
// outcome, not a fault, and is never logged above debug level.
var ErrQuotaExceeded = errors.New("admission: quota exceeded")

// ErrStoreUnavailable marks a counter-store failure (unreachable or timed
// out). The engine recovers locally by failing open, so this error only
// ever appears wrapped inside warning logs, never in a Verdict.
var ErrStoreUnavailable = errors.New("admission: counter store unavailable")

// ErrUnknownTier is returned by Evaluate when asked about a tier the
// registry does not define. Registries are validated against the route
// table at startup, so hitting this at runtime means a wiring bug.
var ErrUnknownTier = errors.New("admission: unknown tier")

// RouteTierBinding names one route bound to an undefined tier.
type RouteTierBinding struct {
	Route string
	Tier  Tier
}

// ConfigurationError reports route-to-tier bindings that reference tiers
// missing from the registry. It is produced only at startup by
// Registry.ValidateRoutes and must prevent the process from serving
// traffic: a missing tier would silently disable rate limiting for the
// routes it names.
type ConfigurationError struct {
	Missing []RouteTierBinding
}

func (e *ConfigurationError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, b := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s -> %q", b.Route, b.Tier))
	}
	sort.Strings(parts)
	return "admission: routes reference undefined tiers: " + strings.Join(parts, ", ")
}
