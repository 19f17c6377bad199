package session

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/dnscache"
	"golang.org/x/net/http2"
)

// newTransport builds the connection pool for one session. The limit
// applies per host, and a session only ever talks to its own origin
// unless a caller passes an absolute URL.
func newTransport(cfg *Config, resolver *dnscache.Resolver) (*http.Transport, error) {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.ConnLimit,
		MaxIdleConnsPerHost:   cfg.ConnLimit,
		MaxConnsPerHost:       cfg.ConnLimit,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if resolver != nil {
		t.DialContext = cachedDialContext(resolver, dialer)
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		t.TLSClientConfig = tlsCfg
	}

	if _, err := http2.ConfigureTransports(t); err != nil {
		return nil, fmt.Errorf("configure http2: %w", err)
	}
	return t, nil
}

// cachedDialContext resolves hosts through resolver and tries each
// returned address in order.
func cachedDialContext(resolver *dnscache.Resolver, dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		ips, err := resolver.LookupHost(ctx, host)
		if err != nil {
			return nil, err
		}

		var lastErr error
		for _, ip := range ips {
			conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("dial %s: no addresses for %s", network, host)
		}
		return nil, lastErr
	}
}

// startDNSRefresh refreshes resolver every interval until the returned
// stop function is called. Entries unused since the previous tick are dropped.
func startDNSRefresh(resolver *dnscache.Resolver, interval time.Duration) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				resolver.Refresh(true)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}
