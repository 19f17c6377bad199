package session

import (
	"context"
	"net/http"

	"github.com/juniofirstpay/httpsessions/logger"
)

type contextKey struct{ name string }

// NewContext returns a copy of ctx carrying s under its name.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{name: s.Name()}, s)
}

// FromContext returns the session stored under name by NewContext or
// Middleware.
func FromContext(ctx context.Context, name string) (*Session, bool) {
	s, ok := ctx.Value(contextKey{name: name}).(*Session)
	return s, ok
}

// Middleware returns net/http middleware that looks up the named session on
// every request and stores it in the request context. When the session is
// missing the request is answered with 503 and next is not called.
func (r *Registry) Middleware(name string) func(http.Handler) http.Handler {
	if name == "" {
		panic("session: Middleware with empty session name")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			s, err := r.Session(name)
			if err != nil {
				r.log.Warn("Request rejected, session unavailable", logger.Fields(
					logger.FieldSession, name,
					logger.FieldError, err.Error(),
					"path", req.URL.Path,
				))
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, req.WithContext(NewContext(req.Context(), s)))
		})
	}
}
