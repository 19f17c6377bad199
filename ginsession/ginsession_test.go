package ginsession

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/juniofirstpay/httpsessions/logger"
	"github.com/juniofirstpay/httpsessions/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRegistry(t *testing.T, upstream string) *session.Registry {
	t.Helper()
	reg := session.NewRegistry(session.WithLogger(logger.Nop()))
	if err := reg.Add(session.NewConfig("upstream", upstream)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return reg
}

func TestInjectMakesSessionAvailable(t *testing.T) {
	reg := newRegistry(t, "http://upstream.internal/api")
	if err := reg.Configure(context.Background()); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	defer reg.Close(context.Background())
	want, _ := reg.Session("upstream")

	r := gin.New()
	r.GET("/ping", Inject(reg, "upstream"), func(c *gin.Context) {
		got, ok := FromContext(c, "upstream")
		if !ok || got != want {
			t.Errorf("expected injected session %p, got %p", want, got)
		}
		fromStd, ok := session.FromContext(c.Request.Context(), "upstream")
		if !ok || fromStd != want {
			t.Errorf("expected session on request context")
		}
		c.String(http.StatusOK, got.Origin())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "http://upstream.internal" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestInjectAbortsWhenNotConfigured(t *testing.T) {
	reg := newRegistry(t, "http://upstream.internal")
	calls := 0

	r := gin.New()
	r.GET("/ping", Inject(reg, "upstream"), func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if calls != 0 {
		t.Errorf("handler must not run, ran %d times", calls)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["session"] != "upstream" {
		t.Errorf("expected session name in body, got %v", body)
	}
}

func TestHandleProxiesThroughSession(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("expected /status, got %s", r.URL.Path)
		}
		w.Write([]byte("up"))
	}))
	defer upstream.Close()

	reg := newRegistry(t, upstream.URL+"/ignored/prefix")
	if err := reg.Configure(context.Background()); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	defer reg.Close(context.Background())

	r := gin.New()
	r.GET("/check", Handle(reg, "upstream", func(c *gin.Context, s *session.Session) {
		resp, err := s.Get(c.Request.Context(), "/status")
		if err != nil {
			c.String(http.StatusBadGateway, err.Error())
			return
		}
		c.String(http.StatusOK, string(resp.Body))
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/check", nil))

	if w.Code != http.StatusOK || w.Body.String() != "up" {
		t.Errorf("expected 200 up, got %d %q", w.Code, w.Body.String())
	}
}

func TestInjectPanicsWithoutName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty name")
		}
	}()
	Inject(session.NewRegistry(session.WithLogger(logger.Nop())), "")
}
