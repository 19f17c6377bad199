// Package ginsession injects named sessions into gin handlers.
package ginsession

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juniofirstpay/httpsessions/session"
)

const keyPrefix = "httpsessions."

// Inject looks up the named session on every request and makes it
// available through FromContext, both on the gin context and on the
// request's context.Context. Requests are aborted with 503 when the
// session is missing.
func Inject(r *session.Registry, name string) gin.HandlerFunc {
	mustBind(r, name)
	return func(c *gin.Context) {
		if _, ok := bind(c, r, name); !ok {
			return
		}
		c.Next()
	}
}

// FromContext returns the session injected under name.
func FromContext(c *gin.Context, name string) (*session.Session, bool) {
	v, ok := c.Get(keyPrefix + name)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}

// Handle adapts a handler that needs the named session into a gin handler.
// Missing sessions abort with 503 and h is not called.
func Handle(r *session.Registry, name string, h func(c *gin.Context, s *session.Session)) gin.HandlerFunc {
	mustBind(r, name)
	if h == nil {
		panic("ginsession: Handle with nil handler for " + name)
	}
	return func(c *gin.Context) {
		if s, ok := bind(c, r, name); ok {
			h(c, s)
		}
	}
}

func bind(c *gin.Context, r *session.Registry, name string) (*session.Session, bool) {
	s, err := r.Session(name)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":   "session_unavailable",
			"session": name,
		})
		return nil, false
	}
	c.Set(keyPrefix+name, s)
	c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), s))
	return s, true
}

func mustBind(r *session.Registry, name string) {
	if r == nil || name == "" {
		panic("ginsession: a registry and a session name are required")
	}
}
