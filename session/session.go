package session

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/dnscache"

	"github.com/juniofirstpay/httpsessions/logger"
)

// Session is a pooled HTTP client bound to one origin. It is safe for
// concurrent use. Sessions are created and owned by a Registry.
type Session struct {
	id     string
	name   string
	origin *url.URL
	client *resty.Client

	stopDNS   func()
	closeOnce sync.Once
}

// newSession builds a session from cfg. cfg must already carry defaults.
func newSession(cfg Config, log *logger.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	origin, err := cfg.Origin()
	if err != nil {
		return nil, err
	}

	var resolver *dnscache.Resolver
	if cfg.DNSCacheEnabled() {
		resolver = &dnscache.Resolver{}
	}

	transport, err := newTransport(&cfg, resolver)
	if err != nil {
		return nil, newError(ErrCodeInvalidConfig, cfg.Name, "build transport: "+err.Error(), err)
	}

	id := uuid.NewString()
	client := resty.NewWithClient(&http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	})
	client.SetBaseURL(origin.String())
	if len(cfg.Headers) > 0 {
		client.SetHeaders(cfg.Headers)
	}
	client.SetLogger(restyLogger{log: log.WithFields(logger.Fields(
		logger.FieldSession, cfg.Name,
		logger.FieldSessionID, id,
	))})

	s := &Session{
		id:     id,
		name:   cfg.Name,
		origin: origin,
		client: client,
	}
	if resolver != nil {
		s.stopDNS = startDNSRefresh(resolver, cfg.DNSCacheTTL)
	}
	return s, nil
}

// Name returns the name the session was configured under.
func (s *Session) Name() string { return s.name }

// ID uniquely identifies this session instance.
func (s *Session) ID() string { return s.id }

// Origin returns scheme://host[:port] the session is bound to.
func (s *Session) Origin() string { return s.origin.String() }

// HTTPClient returns the underlying *http.Client.
func (s *Session) HTTPClient() *http.Client {
	return s.client.GetClient()
}

// R returns a resty request builder bound to ctx, for requests that need
// more than Request offers.
func (s *Session) R(ctx context.Context) *resty.Request {
	return s.client.R().SetContext(ctx)
}

// Get is shorthand for a GET through Do.
func (s *Session) Get(ctx context.Context, path string) (*Response, error) {
	return s.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// Do executes req and returns the complete response. Non-2xx/3xx responses
// are returned together with a *RequestError.
func (s *Session) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	r := s.R(ctx)
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(method, req.Path)
	if err != nil {
		var netErr net.Error
		if ctx.Err() != nil || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, newTimeoutError(err)
		}
		return nil, newConnectionError(err)
	}

	result := &Response{
		StatusCode: resp.StatusCode(),
		Headers:    flattenHeaders(resp.Header()),
		Body:       resp.Body(),
	}
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		result.URL = resp.RawResponse.Request.URL.String()
	}

	if classErr := classifyStatus(result.StatusCode, result.Body); classErr != nil {
		return result, classErr
	}
	return result, nil
}

// Close stops background DNS refresh and closes idle connections. Requests
// already in flight complete normally. Close is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.stopDNS != nil {
			s.stopDNS()
		}
		s.client.GetClient().CloseIdleConnections()
	})
}
