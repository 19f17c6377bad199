package session

import (
	"context"
	"testing"

	"github.com/juniofirstpay/httpsessions/logger"
)

// newTestRegistry adds cfgs to a fresh registry and closes it when the
// test ends.
func newTestRegistry(t *testing.T, cfgs ...Config) *Registry {
	t.Helper()
	r := NewRegistry(WithLogger(logger.Nop()))
	for _, cfg := range cfgs {
		if err := r.Add(cfg); err != nil {
			t.Fatalf("Add(%s) failed: %v", cfg.Name, err)
		}
	}
	t.Cleanup(func() { r.Close(context.Background()) })
	return r
}

// newConfiguredRegistry is newTestRegistry followed by Configure.
func newConfiguredRegistry(t *testing.T, cfgs ...Config) *Registry {
	t.Helper()
	r := newTestRegistry(t, cfgs...)
	if err := r.Configure(context.Background()); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	return r
}
