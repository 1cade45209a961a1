package admission

import (
	"context"
	"testing"
)

func TestResolvePrincipal_Authenticated(t *testing.T) {
	p := ResolvePrincipal(Identity{ID: "42"}, true, "203.0.113.7:9999")
	if p.Key != "user:42" {
		t.Fatalf("expected key user:42, got %q", p.Key)
	}
	if p.Class != Authenticated {
		t.Fatalf("expected class authenticated, got %v", p.Class)
	}
}

func TestResolvePrincipal_Staff(t *testing.T) {
	p := ResolvePrincipal(Identity{ID: "7", Staff: true}, true, "203.0.113.7:9999")
	if p.Key != "user:7" {
		t.Fatalf("expected key user:7, got %q", p.Key)
	}
	if p.Class != Staff {
		t.Fatalf("expected class staff, got %v", p.Class)
	}
}

func TestResolvePrincipal_AnonymousAddresses(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		wantKey    string
	}{
		{"ipv4 with port", "203.0.113.7:51234", "anon:203.0.113.7"},
		{"ipv4 without port", "203.0.113.7", "anon:203.0.113.7"},
		{"ipv6 bracketed with port", "[2001:db8::1]:443", "anon:2001:db8::1"},
		{"ipv6 long form collapses", "2001:0db8:0000:0000:0000:0000:0000:0001", "anon:2001:db8::1"},
		{"ipv4-mapped ipv6 unmaps", "[::ffff:203.0.113.7]:80", "anon:203.0.113.7"},
		{"ipv6 zone stripped", "[fe80::1%eth0]:80", "anon:fe80::1"},
		{"empty", "", UnknownAnonymousKey},
		{"garbage", "not-an-address", UnknownAnonymousKey},
		{"hostname", "example.com:80", UnknownAnonymousKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ResolvePrincipal(Identity{}, false, tt.remoteAddr)
			if p.Key != tt.wantKey {
				t.Fatalf("expected key %q, got %q", tt.wantKey, p.Key)
			}
			if p.Class != Anonymous {
				t.Fatalf("expected class anonymous, got %v", p.Class)
			}
		})
	}
}

func TestResolvePrincipal_RepresentationVariantsShareBucket(t *testing.T) {
	// The same host spelled three ways must land in one quota bucket.
	variants := []string{
		"[::ffff:203.0.113.7]:80",
		"203.0.113.7:51234",
		"203.0.113.7",
	}
	first := ResolvePrincipal(Identity{}, false, variants[0])
	for _, v := range variants[1:] {
		p := ResolvePrincipal(Identity{}, false, v)
		if p.Key != first.Key {
			t.Fatalf("expected %q and %q to share a key, got %q vs %q", variants[0], v, first.Key, p.Key)
		}
	}
}

func TestResolvePrincipal_AuthenticatedFlagWithoutIDFallsBack(t *testing.T) {
	p := ResolvePrincipal(Identity{}, true, "203.0.113.7:80")
	if p.Key != "anon:203.0.113.7" {
		t.Fatalf("expected anonymous fallback, got %q", p.Key)
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), Identity{ID: "9", Staff: true})
	id, ok := IdentityFromContext(ctx)
	if !ok {
		t.Fatal("expected identity in context")
	}
	if id.ID != "9" || !id.Staff {
		t.Fatalf("unexpected identity %+v", id)
	}

	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("expected no identity in empty context")
	}
}
