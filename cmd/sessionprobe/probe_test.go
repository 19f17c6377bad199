package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juniofirstpay/httpsessions/logger"
	"github.com/juniofirstpay/httpsessions/session"
)

func newProber(t *testing.T, cfgs ...session.Config) *prober {
	t.Helper()
	reg := session.NewRegistry(session.WithLogger(logger.Nop()))
	for _, cfg := range cfgs {
		if err := reg.Add(cfg); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if err := reg.Configure(context.Background()); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	t.Cleanup(func() { reg.Close(context.Background()) })
	return &prober{
		registry:    reg,
		log:         logger.Nop(),
		path:        "/health",
		timeout:     time.Second,
		concurrency: 2,
	}
}

func TestProbeAll(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer healthy.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	p := newProber(t,
		session.NewConfig("api", healthy.URL+"/api/v1"),
		session.NewConfig("worker", failing.URL),
	)

	results, err := p.probeAll(context.Background())
	if err == nil {
		t.Fatal("expected error from failing upstream")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	api, worker := results[0], results[1]
	if api.Session != "api" || api.Err != nil || api.Status != http.StatusOK {
		t.Errorf("unexpected api result: %+v", api)
	}
	if api.URL != healthy.URL+"/health" {
		t.Errorf("expected probe at origin /health, got %q", api.URL)
	}
	if worker.Session != "worker" || !session.IsServerError(worker.Err) || worker.Status != http.StatusServiceUnavailable {
		t.Errorf("unexpected worker result: %+v", worker)
	}
}

func TestProbeAllHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	p := newProber(t,
		session.NewConfig("a", server.URL),
		session.NewConfig("b", server.URL+"/b"),
		session.NewConfig("c", server.URL+"/c"),
	)

	results, err := p.probeAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if r.Status != http.StatusOK {
			t.Errorf("expected 200 for %s, got %d", r.Session, r.Status)
		}
	}
}

func TestProbeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	p := newProber(t, session.NewConfig("slow", server.URL))
	p.timeout = 50 * time.Millisecond

	results, err := p.probeAll(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !session.IsTimeout(results[0].Err) {
		t.Errorf("expected timeout, got %v", results[0].Err)
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--config", "probe.yml", "-p", "/ready", "--timeout", "3s"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.configFile != "probe.yml" || opts.path != "/ready" || opts.timeout != 3*time.Second {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.concurrency != 8 {
		t.Errorf("expected default concurrency 8, got %d", opts.concurrency)
	}

	if _, err := parseFlags([]string{"--concurrency", "0"}); err == nil {
		t.Error("expected error for zero concurrency")
	}
}

func TestRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := "name: sessionprobe\nenvironment: staging\nlogging:\n  level: disabled\nsessions:\n" +
		"  - name: local\n    base_url: " + server.URL + "/v1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if code := run(context.Background(), []string{"--version"}); code != 0 {
		t.Errorf("expected exit code 0 for --version, got %d", code)
	}
	if code := run(context.Background(), []string{"--config", path}); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if code := run(context.Background(), []string{"--config", path, "--path", "/missing"}); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if code := run(context.Background(), []string{"--config", filepath.Join(dir, "absent.yml")}); code != 1 {
		t.Errorf("expected exit code 1 for missing config, got %d", code)
	}
}

func TestProbeConfigValidate(t *testing.T) {
	cfg := probeConfig{}
	cfg.Name = "sessionprobe"
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty sessions")
	}

	cfg.Sessions = []session.Config{{Name: "bad", BaseURL: "ftp://files.internal"}}
	cfg.ApplyDefaults()
	err := cfg.Validate()
	if !session.IsInvalidBaseURL(err) {
		t.Errorf("expected invalid base url, got %v", err)
	}
}
