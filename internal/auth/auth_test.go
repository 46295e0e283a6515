package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(Middleware(opts))
	r.GET("/open", func(c *gin.Context) {
		c.String(http.StatusOK, "user=%s", CurrentUser(c).String())
	})
	r.GET("/private", RequireLogin(opts.LoginURL), func(c *gin.Context) {
		c.String(http.StatusOK, "hello %s", CurrentUser(c).ID)
	})
	return r
}

func TestMiddlewareHeader(t *testing.T) {
	r := newRouter(Options{Header: "X-Forwarded-Email", LoginURL: "/oauth2/start"})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-Forwarded-Email", "alice@example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "hello alice@example.com" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestRequireLoginRedirects(t *testing.T) {
	r := newRouter(Options{Header: "X-Forwarded-Email", LoginURL: "/oauth2/start"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private?x=1", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if got, want := w.Header().Get("Location"), "/oauth2/start?rd=%2Fprivate%3Fx%3D1"; got != want {
		t.Errorf("Location = %s, want %s", got, want)
	}
}

func TestAnonymousOpenRoute(t *testing.T) {
	r := newRouter(Options{Header: "X-Forwarded-Email"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))

	if w.Code != http.StatusOK || w.Body.String() != "user=" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestDevUser(t *testing.T) {
	r := newRouter(Options{Header: "X-Forwarded-Email", DevUser: "dev@localhost"})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-Forwarded-Email", "mallory@example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "hello dev@localhost" {
		t.Errorf("got %q", w.Body.String())
	}
}

func TestLogoutURL(t *testing.T) {
	if got := LogoutURL("/oauth2/start"); got != "/oauth2/sign_out" {
		t.Errorf("LogoutURL = %s", got)
	}
}
