package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/juniofirstpay/httpsessions/component"
)

var (
	_ component.Component   = (*Registry)(nil)
	_ component.Describable = (*Registry)(nil)
)

// Name returns the component name.
func (r *Registry) Name() string {
	return r.name
}

// Start configures every session.
func (r *Registry) Start(ctx context.Context) error {
	return r.Configure(ctx)
}

// Stop releases every session.
func (r *Registry) Stop(ctx context.Context) error {
	return r.Close(ctx)
}

// Health is healthy only while the registry is configured.
func (r *Registry) Health(_ context.Context) component.Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := component.Health{Name: r.name, Status: component.StatusHealthy}
	if r.state != configured {
		h.Status = component.StatusUnhealthy
		h.Message = r.state.String()
		return h
	}
	h.Message = fmt.Sprintf("%d sessions", len(r.sessions))
	return h
}

// Describe lists each session as name=origin.
func (r *Registry) Describe() component.Description {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parts := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if s, ok := r.sessions[name]; ok {
			parts = append(parts, name+"="+s.Origin())
			continue
		}
		parts = append(parts, name+"="+r.configs[name].BaseURL)
	}
	return component.Description{
		Name:    r.name,
		Type:    "http-sessions",
		Details: strings.Join(parts, " "),
	}
}
