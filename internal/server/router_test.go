package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBasicRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("outer"), mw("inner"))
		router.Handle("/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}), http.MethodGet)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		if got := strings.Join(order, ","); got != "outer,inner,handler" {
			t.Errorf("unexpected order %s", got)
		}
	})

	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), http.MethodGet)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/ping", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if rec.Header().Get("Allow") != http.MethodGet {
			t.Errorf("expected Allow header, got %q", rec.Header().Get("Allow"))
		}
	})

	t.Run("handler routes accept GET and HEAD", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewImplicitGrantHandler("s", nil))

		for _, method := range []string{http.MethodGet, http.MethodHead} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(method, RedirectPath, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("%s: expected 200, got %d", method, rec.Code)
			}
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, TokenPath, nil))
		if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != "GET, HEAD" {
			t.Errorf("expected 405 with Allow header, got %d %q", rec.Code, rec.Header().Get("Allow"))
		}
	})

	t.Run("unregistered path", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewImplicitGrantHandler("s", nil))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/redirect/extra", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("ObserveRequests omits query", func(t *testing.T) {
		var got []any
		router := NewBasicRouter()
		router.Use(ObserveRequests(func(msg string, kv ...any) { got = kv }))
		router.Handler(NewImplicitGrantHandler("s", nil))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?access_token=secret&state=x", nil))

		for _, v := range got {
			if s, ok := v.(string); ok && strings.Contains(s, "secret") {
				t.Errorf("observer must not see the token, got %v", got)
			}
		}
		if len(got) != 4 || got[3] != "/token" {
			t.Errorf("expected method and path, got %v", got)
		}
	})
}
