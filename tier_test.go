package admission

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEffectiveLimit_ClassMultipliers(t *testing.T) {
	reg := NewRegistry(map[Tier]Policy{
		TierHigh: {BaseQuota: 50, Window: time.Minute},
	})

	tests := []struct {
		class Class
		want  int64
	}{
		{Anonymous, 50},
		{Authenticated, 200}, // 4x base
		{Staff, 1000},        // 5x authenticated, 20x base
	}

	for _, tt := range tests {
		got, ok := reg.EffectiveLimit(TierHigh, tt.class)
		if !ok {
			t.Fatalf("expected tier to be defined")
		}
		if got != tt.want {
			t.Fatalf("class %v: expected limit %d, got %d", tt.class, tt.want, got)
		}
	}
}

func TestEffectiveLimit_UnknownTier(t *testing.T) {
	reg := NewRegistry(nil)
	if _, ok := reg.EffectiveLimit(TierCritical, Anonymous); ok {
		t.Fatal("expected lookup on empty registry to fail")
	}
}

func TestDefaultRegistry_DefinesAllTiers(t *testing.T) {
	reg := DefaultRegistry()
	for _, tier := range []Tier{TierCritical, TierHigh, TierMedium, TierLow} {
		p, ok := reg.Policy(tier)
		if !ok {
			t.Fatalf("expected default registry to define tier %q", tier)
		}
		if p.BaseQuota <= 0 {
			t.Fatalf("tier %q: expected positive base quota, got %d", tier, p.BaseQuota)
		}
		if p.Window != time.Minute {
			t.Fatalf("tier %q: expected 60s window, got %v", tier, p.Window)
		}
	}
}

func TestNewRegistry_CopiesTable(t *testing.T) {
	table := map[Tier]Policy{TierLow: {BaseQuota: 1, Window: time.Minute}}
	reg := NewRegistry(table)
	table[TierLow] = Policy{BaseQuota: 999, Window: time.Second}

	p, _ := reg.Policy(TierLow)
	if p.BaseQuota != 1 {
		t.Fatalf("registry mutated through the original table: %+v", p)
	}
}

func TestValidateRoutes(t *testing.T) {
	reg := NewRegistry(map[Tier]Policy{
		TierCritical: {BaseQuota: 5, Window: time.Minute},
		TierLow:      {BaseQuota: 100, Window: time.Minute},
	})

	if err := reg.ValidateRoutes(RouteTable{
		"POST /login":  TierCritical,
		"GET /healthz": TierLow,
	}); err != nil {
		t.Fatalf("expected valid table, got %v", err)
	}

	err := reg.ValidateRoutes(RouteTable{
		"POST /login":   TierCritical,
		"GET /reports":  "premium",
		"GET /exports":  "premium",
		"GET /accounts": TierHigh,
	})
	if err == nil {
		t.Fatal("expected a configuration error")
	}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigurationError, got %T", err)
	}
	if len(cfgErr.Missing) != 3 {
		t.Fatalf("expected 3 bad bindings, got %d: %+v", len(cfgErr.Missing), cfgErr.Missing)
	}
	for _, route := range []string{"GET /reports", "GET /exports", "GET /accounts"} {
		if !strings.Contains(err.Error(), route) {
			t.Fatalf("expected error message to name %q, got %q", route, err.Error())
		}
	}
}
