package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/juniofirstpay/httpsessions/logger"
	"github.com/juniofirstpay/httpsessions/session"
)

type prober struct {
	registry    *session.Registry
	log         *logger.Logger
	path        string
	timeout     time.Duration
	concurrency int
}

type probeResult struct {
	Session  string
	URL      string
	Status   int
	Duration time.Duration
	Err      error
}

// probeAll probes every session once. Every probe runs to completion; the
// returned error joins the failures.
func (p *prober) probeAll(ctx context.Context) ([]probeResult, error) {
	names := p.registry.Names()
	results := make([]probeResult, len(names))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, name := range names {
		i, name := i, name
		probe := session.Require(p.registry, name, p.get)
		g.Go(func() error {
			results[i] = p.run(ctx, name, probe)
			return nil
		})
	}
	g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Session, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (p *prober) get(ctx context.Context, s *session.Session, path string) (*session.Response, error) {
	return s.Get(ctx, path)
}

func (p *prober) run(ctx context.Context, name string, probe func(context.Context, string) (*session.Response, error)) probeResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := probe(ctx, p.path)
	result := probeResult{Session: name, Duration: time.Since(start), Err: err}
	if resp != nil {
		result.URL = resp.URL
		result.Status = resp.StatusCode
	}

	fields := logger.Fields(
		logger.FieldSession, name,
		logger.FieldStatus, result.Status,
		logger.FieldDuration, result.Duration.Milliseconds(),
		"url", result.URL,
	)
	if err != nil {
		fields[logger.FieldError] = err.Error()
		p.log.Warn("Probe failed", fields)
	} else {
		p.log.Info("Probe succeeded", fields)
	}
	return result
}
