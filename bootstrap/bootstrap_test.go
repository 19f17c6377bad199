package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juniofirstpay/httpsessions/component"
	"github.com/juniofirstpay/httpsessions/config"
	"github.com/juniofirstpay/httpsessions/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{
		Name:        "sessionprobe",
		Version:     "1.0.0",
		Environment: "staging",
	}}
	app, err := NewApp(cfg, append([]Option{WithLogger(logger.Nop())}, opts...)...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(time.Second))

	if app.Name != "sessionprobe" || app.Version != "1.0.0" {
		t.Errorf("unexpected app identity: %s %s", app.Name, app.Version)
	}
	if app.Components == nil {
		t.Error("expected non-nil components registry")
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s graceful timeout, got %v", app.gracefulTimeout)
	}
	if app.Cfg.Logging.Level != "info" {
		t.Errorf("expected defaults applied to config, got level %q", app.Cfg.Logging.Level)
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Environment: "staging"}}
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestRunTask(t *testing.T) {
	app := newTestApp(t)
	c := &mockComponent{name: "sessions", health: component.Health{Name: "sessions", Status: component.StatusHealthy}}
	if err := app.RegisterComponent(c); err != nil {
		t.Fatalf("RegisterComponent failed: %v", err)
	}

	var order []string
	app.OnStart(func(ctx context.Context) error {
		order = append(order, "start")
		return nil
	})
	app.OnStop(func(ctx context.Context) error {
		order = append(order, "stop")
		return nil
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		if !c.started {
			t.Error("expected component started before task")
		}
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if !c.stopped {
		t.Error("expected component stopped after task")
	}
	if len(order) != 3 || order[0] != "start" || order[1] != "task" || order[2] != "stop" {
		t.Errorf("expected [start task stop], got %v", order)
	}
}

func TestRunTaskReturnsTaskError(t *testing.T) {
	app := newTestApp(t)
	c := &mockComponent{name: "sessions", stopErr: errors.New("stop failed")}
	app.RegisterComponent(c)

	errProbe := errors.New("probe failed")
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return errProbe
	})
	if !errors.Is(err, errProbe) {
		t.Errorf("expected task error to win, got %v", err)
	}
	if !c.stopped {
		t.Error("expected component stopped")
	}
}

func TestRunTaskStartFailure(t *testing.T) {
	app := newTestApp(t)
	first := &mockComponent{name: "first"}
	failing := &mockComponent{name: "sessions", startErr: errors.New("invalid base url")}
	app.RegisterComponent(first)
	app.RegisterComponent(failing)

	ran := false
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err == nil {
		t.Fatal("expected startup error")
	}
	if ran {
		t.Error("expected task not to run")
	}
	if !first.stopped {
		t.Error("expected started component to be stopped")
	}
}

func TestRunTaskContextCanceled(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := app.RunTask(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	app.RegisterComponent(&mockComponent{name: "ok", health: component.Health{Name: "ok", Status: component.StatusHealthy}})
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	app.RegisterComponent(&mockComponent{name: "sessions", health: component.Health{
		Name: "sessions", Status: component.StatusUnhealthy, Message: "unconfigured",
	}})
	err := app.ReadyCheck(context.Background())
	if err == nil {
		t.Fatal("expected ready check error")
	}
	if got := err.Error(); got != "unhealthy components: [sessions=unhealthy(unconfigured)]" {
		t.Errorf("unexpected error: %s", got)
	}
}
