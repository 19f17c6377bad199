package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/juniofirstpay/httpsessions/logger"
)

const defaultStopTimeout = 10 * time.Second

type entry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	mu          sync.Mutex
	entries     []*entry
	lookup      map[string]*entry
	log         *logger.Logger
	stopTimeout time.Duration
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// WithStopTimeout bounds how long each component may take to stop.
func WithStopTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.stopTimeout = d }
}

// NewRegistry creates a new component registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		lookup:      make(map[string]*entry),
		stopTimeout: defaultStopTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.WithComponent("components")
	}
	return r
}

// Register adds a component. Register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.lookup[name] = e

	r.log.Debug("Component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts all components in registration order and stops at the
// first failure. Components started before the failure stay started so
// StopAll can release them.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Starting components", logger.Fields("count", len(r.entries)))

	for _, e := range r.entries {
		if e.started {
			continue
		}
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			r.log.Error("Component start failed", logger.Fields(
				logger.FieldComponent, name,
				logger.FieldError, err.Error(),
			))
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		e.started = true

		fields := logger.Fields(logger.FieldComponent, name)
		if d, ok := e.component.(Describable); ok {
			desc := d.Describe()
			fields["type"] = desc.Type
			fields["details"] = desc.Details
		}
		r.log.Info("Component started", fields)
	}
	return nil
}

// StopAll stops started components in reverse registration order. Every
// component gets a chance to stop; failures are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.component.Name()

		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		if err := e.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("Component stop failed", logger.Fields(
				logger.FieldComponent, name,
				logger.FieldError, err.Error(),
			))
		} else {
			r.log.Info("Component stopped", logger.Fields(logger.FieldComponent, name))
		}
		cancel()
		e.started = false
	}
	return errors.Join(errs...)
}

// HealthAll returns health status for all registered components in
// registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.Lock()
	components := make([]Component, 0, len(r.entries))
	for _, e := range r.entries {
		components = append(components, e.component)
	}
	r.mu.Unlock()

	results := make([]Health, 0, len(components))
	for _, c := range components {
		results = append(results, c.Health(ctx))
	}
	return results
}

// Get returns a registered component by name, or nil if not found.
func (r *Registry) Get(name string) Component {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.lookup[name]; ok {
		return e.component
	}
	return nil
}
