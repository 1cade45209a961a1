package admission

import (
	"context"
	"net"
	"net/netip"
	"strings"
)

// Class determines the quota multiplier applied to a tier's base quota.
type Class int

const (
	// Anonymous principals are keyed by client address and get the base quota.
	Anonymous Class = iota
	// Authenticated principals get 4x the base quota.
	Authenticated
	// Staff principals get 5x the authenticated quota (20x the base).
	Staff
)

// String returns a human-readable class name for logs.
func (c Class) String() string {
	switch c {
	case Authenticated:
		return "authenticated"
	case Staff:
		return "staff"
	default:
		return "anonymous"
	}
}

// multiplier returns the factor applied to a tier's base quota for this class.
func (c Class) multiplier() int64 {
	switch c {
	case Authenticated:
		return 4
	case Staff:
		return 20
	default:
		return 1
	}
}

// Identity is the minimal descriptor the limiter consumes from the
// authentication subsystem: a stable user id and a privilege flag.
// How it was produced (session, JWT, OAuth) is irrelevant here.
type Identity struct {
	ID    string
	Staff bool
}

// Principal is the resolved entity being rate-limited for one request.
// It is derived fresh per request and never persisted; only its Key
// survives implicitly inside counter-store entries.
type Principal struct {
	Key   string
	Class Class
}

// UnknownAnonymousKey is the shared fallback key used when the client
// address is missing or malformed. All such requests land in one global
// anonymous bucket, which is an accepted precision loss, not an error.
const UnknownAnonymousKey = "anon:unknown"

// ResolvePrincipal derives the principal for a request. It is a pure
// function of the request metadata and never fails.
//
// Authenticated requests are keyed "user:<id>" and classed Staff or
// Authenticated depending on the privilege flag. Everything else is keyed
// "anon:<addr>" where addr is the normalized client address.
func ResolvePrincipal(id Identity, authenticated bool, remoteAddr string) Principal {
	if authenticated && id.ID != "" {
		class := Authenticated
		if id.Staff {
			class = Staff
		}
		return Principal{Key: "user:" + id.ID, Class: class}
	}

	addr, ok := normalizeAddr(remoteAddr)
	if !ok {
		return Principal{Key: UnknownAnonymousKey, Class: Anonymous}
	}
	return Principal{Key: "anon:" + addr, Class: Anonymous}
}

// normalizeAddr strips any port and reduces the address to a canonical
// textual form so that representation variance (IPv6 shorthand, IPv4-mapped
// IPv6, zone suffixes) cannot be used to spread one client across several
// quota buckets.
func normalizeAddr(remoteAddr string) (string, bool) {
	s := strings.TrimSpace(remoteAddr)
	if s == "" {
		return "", false
	}

	host := s
	if h, _, err := net.SplitHostPort(s); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return "", false
	}
	return addr.Unmap().WithZone("").String(), true
}

type identityContextKey struct{}

// ContextWithIdentity returns a context carrying the authenticated identity.
// Authentication middleware stores the identity here; the admission
// middleware's default IdentityFunc reads it back, keeping the two
// subsystems decoupled.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity placed by ContextWithIdentity.
// The second return value reports whether an identity was present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
