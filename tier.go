package admission

import "time"

// Tier is a named sensitivity classification attached to a route or route
// group. The tier, together with the principal class, determines the
// effective request quota.
type Tier string

const (
	// TierCritical covers routes where abuse is most damaging
	// (authentication, account mutation).
	TierCritical Tier = "critical"
	// TierHigh covers expensive or sensitive reads and writes.
	TierHigh Tier = "high"
	// TierMedium covers ordinary API traffic.
	TierMedium Tier = "medium"
	// TierLow covers cheap, cacheable endpoints (health, static lookups).
	TierLow Tier = "low"
)

// Policy is the concrete limit a tier resolves to: the quota granted to an
// anonymous principal per fixed window of the given length.
type Policy struct {
	BaseQuota int64
	Window    time.Duration
}

// RouteTable maps route patterns to the tier declared for them. The
// assignment itself is owned by the HTTP layer; the table exists so it can
// be validated against the registry once, at startup.
type RouteTable map[string]Tier

// Registry resolves a tier and principal class into an effective limit.
// It is immutable: the policy table is fixed at construction and never
// mutated at runtime, so lookups are safe under concurrency without locks.
type Registry struct {
	policies map[Tier]Policy
}

// NewRegistry creates a Registry from the given policy table. The table is
// copied, so later mutation of the argument has no effect.
func NewRegistry(table map[Tier]Policy) *Registry {
	policies := make(map[Tier]Policy, len(table))
	for tier, policy := range table {
		policies[tier] = policy
	}
	return &Registry{policies: policies}
}

// DefaultRegistry returns a registry with the stock four-tier table.
// All tiers share a 60 second window; only the base quota varies.
func DefaultRegistry() *Registry {
	return NewRegistry(map[Tier]Policy{
		TierCritical: {BaseQuota: 10, Window: time.Minute},
		TierHigh:     {BaseQuota: 60, Window: time.Minute},
		TierMedium:   {BaseQuota: 300, Window: time.Minute},
		TierLow:      {BaseQuota: 1000, Window: time.Minute},
	})
}

// Policy returns the policy for a tier and whether the tier is defined.
func (r *Registry) Policy(tier Tier) (Policy, bool) {
	p, ok := r.policies[tier]
	return p, ok
}

// EffectiveLimit applies the principal-class multiplier to the tier's base
// quota. The second return value is false when the tier is undefined.
func (r *Registry) EffectiveLimit(tier Tier, class Class) (int64, bool) {
	p, ok := r.policies[tier]
	if !ok {
		return 0, false
	}
	return p.BaseQuota * class.multiplier(), true
}

// ValidateRoutes checks every route in the table against the registry and
// returns a *ConfigurationError naming all routes bound to undefined tiers.
// A route with an undefined tier would otherwise silently run unlimited, so
// callers must treat a non-nil result as fatal at startup.
func (r *Registry) ValidateRoutes(routes RouteTable) error {
	var missing []RouteTierBinding
	for route, tier := range routes {
		if _, ok := r.policies[tier]; !ok {
			missing = append(missing, RouteTierBinding{Route: route, Tier: tier})
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ConfigurationError{Missing: missing}
}
