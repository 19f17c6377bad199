package session

import (
	"context"
	"slices"
	"sync"

	"github.com/juniofirstpay/httpsessions/logger"
)

const defaultRegistryName = "http-sessions"

type lifecycle int

const (
	unconfigured lifecycle = iota
	configured
	closed
)

func (l lifecycle) String() string {
	switch l {
	case unconfigured:
		return "unconfigured"
	case configured:
		return "configured"
	default:
		return "closed"
	}
}

// Registry owns named session configs and, once configured, the live
// sessions built from them.
//
// Lifecycle: NewRegistry, Add for every config, Configure once, serve,
// Close. Add is rejected after Configure, Configure runs at most once, and
// nothing can be reopened after Close. All methods are safe for concurrent
// use; lookups that race with Configure either see every session or none.
type Registry struct {
	mu       sync.RWMutex
	name     string
	state    lifecycle
	configs  map[string]Config
	order    []string
	sessions map[string]*Session
	log      *logger.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithName sets the component name the registry reports.
func WithName(name string) Option {
	return func(r *Registry) { r.name = name }
}

// NewRegistry creates an empty, unconfigured registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		name:     defaultRegistryName,
		configs:  make(map[string]Config),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.WithComponent(r.name)
	}
	return r
}

// Add stores cfg under cfg.Name. Names must be non-empty and unique, and
// configs can only be added before Configure.
func (r *Registry) Add(cfg Config) error {
	cfg.ApplyDefaults()
	if cfg.Name == "" {
		return newError(ErrCodeInvalidConfig, "", "name is required", nil)
	}
	cfg = cfg.clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case configured:
		return newError(ErrCodeAlreadyConfigured, cfg.Name, "cannot add after Configure", nil)
	case closed:
		return newError(ErrCodeClosed, cfg.Name, "cannot add to a closed registry", nil)
	}
	if _, exists := r.configs[cfg.Name]; exists {
		return newError(ErrCodeDuplicate, cfg.Name, "a session with this name was already added", nil)
	}

	r.configs[cfg.Name] = cfg
	r.order = append(r.order, cfg.Name)

	r.log.Debug("Session config added", logger.Fields(
		logger.FieldSession, cfg.Name,
		"base_url", cfg.BaseURL,
	))
	return nil
}

// Configure builds a session for every added config. It either builds all
// of them or none: on the first failure the sessions built so far are
// closed and the registry stays unconfigured. A second call fails with
// ErrAlreadyConfigured and leaves the existing sessions untouched.
func (r *Registry) Configure(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case configured:
		return newError(ErrCodeAlreadyConfigured, "", "Configure may only run once", nil)
	case closed:
		return newError(ErrCodeClosed, "", "cannot configure a closed registry", nil)
	}

	built := make(map[string]*Session, len(r.order))
	for _, name := range r.order {
		if err := ctx.Err(); err != nil {
			closeSessions(built)
			return err
		}

		cfg := r.configs[name]
		s, err := newSession(cfg, r.log)
		if err != nil {
			closeSessions(built)
			r.log.Error("Session configure failed", logger.Fields(
				logger.FieldSession, name,
				logger.FieldError, err.Error(),
			))
			return err
		}
		built[name] = s

		r.log.Info("Session configured", logger.Fields(
			logger.FieldSession, name,
			logger.FieldSessionID, s.ID(),
			logger.FieldOrigin, s.Origin(),
			"conn_limit", cfg.ConnLimit,
			"dns_cache", cfg.DNSCacheEnabled(),
		))
	}

	r.sessions = built
	r.state = configured
	return nil
}

// Session returns the live session for name. It fails with ErrNoSession
// when name was never added, Configure has not run, or the registry is closed.
func (r *Registry) Session(name string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.sessions[name]; ok {
		return s, nil
	}

	msg := "no session configured"
	switch {
	case r.state == closed:
		msg = "registry is closed"
	case r.state == unconfigured && r.hasConfig(name):
		msg = "session added but Configure has not run"
	}
	return nil, newError(ErrCodeNoSession, name, msg, nil)
}

// Config returns a copy of the config added under name.
func (r *Registry) Config(name string) (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[name]
	if !ok {
		return Config{}, false
	}
	return cfg.clone(), true
}

// Names returns the added config names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := slices.Clone(r.order)
	slices.Sort(names)
	return names
}

// Configured reports whether Configure has completed and Close has not run.
func (r *Registry) Configured() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state == configured
}

// Close releases every session. Lookups fail afterwards. Calling Close
// more than once is a no-op.
func (r *Registry) Close(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == closed {
		return nil
	}
	closeSessions(r.sessions)
	r.log.Info("Sessions closed", logger.Fields("count", len(r.sessions)))

	r.sessions = make(map[string]*Session)
	r.state = closed
	return nil
}

func (r *Registry) hasConfig(name string) bool {
	_, ok := r.configs[name]
	return ok
}

func closeSessions(sessions map[string]*Session) {
	for _, s := range sessions {
		s.Close()
	}
}
