package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juniofirstpay/httpsessions/component"
	"github.com/juniofirstpay/httpsessions/logger"
)

// App owns the component registry and logger for one process.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger

	gracefulTimeout time.Duration
	onStart         []Hook
	onStop          []Hook
}

// NewApp applies defaults to cfg, validates it and sets up logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		logger.Init(base.Logging, base.Name)
		log = logger.GetGlobalLogger()
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(component.WithLogger(log.WithComponent("components"))),
		Logger:          log,
		gracefulTimeout: o.gracefulTimeout,
	}, nil
}

// RegisterComponent adds c to the registry. Register dependencies first.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck returns an error naming every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// RunTask starts every component, runs task and shuts down. task's context
// is canceled on SIGINT or SIGTERM. Components are stopped even when
// startup or the task fails; the task error takes precedence.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	taskCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if err := a.startup(taskCtx); err != nil {
		if stopErr := a.stop(); stopErr != nil {
			a.Logger.Error("Shutdown after failed startup reported errors", logger.ErrorFields("shutdown", stopErr))
		}
		return err
	}

	taskErr := task(taskCtx)
	if taskCtx.Err() != nil && ctx.Err() == nil {
		a.Logger.Info("Received signal, task canceled")
	}

	stopErr := a.stop()
	if taskErr != nil {
		return taskErr
	}
	return stopErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
	))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.ErrorFields("ready_check", err))
	}

	a.Logger.Info("Application started", logger.DurationFields("startup", time.Since(start)))
	return nil
}

// Shutdown runs stop hooks and stops every component.
func (a *App[C]) Shutdown() error {
	return a.stop()
}

func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("on_stop", err))
		shutdownErr = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.ErrorFields("stop_components", err))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}
	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
