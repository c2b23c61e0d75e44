package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atinyakov/medstock/internal/client/session"
	"github.com/atinyakov/medstock/internal/models"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type identityFunc func() (*session.Claims, error)

func (f identityFunc) Claims() (*session.Claims, error) { return f() }

func TestRequireSession_NoSession(t *testing.T) {
	dummy := &dummyHandler{}
	h := RequireSession(identityFunc(func() (*session.Claims, error) {
		return nil, session.ErrNoSession
	}))(dummy)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meds", nil))

	if dummy.called {
		t.Error("did not expect next handler to be called without a session")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != LoginPath {
		t.Errorf("expected redirect to %s, got %q", LoginPath, loc)
	}
}

func TestRequireSession_StoresClaims(t *testing.T) {
	dummy := &dummyHandler{}
	want := &session.Claims{Username: "alice"}
	h := RequireSession(identityFunc(func() (*session.Claims, error) { return want, nil }))(dummy)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !dummy.called {
		t.Fatal("expected next handler to be called")
	}
	if got := ClaimsFromContext(dummy.ctx); got != want {
		t.Errorf("expected claims %+v in context, got %+v", want, got)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name   string
		claims *session.Claims
		code   int
	}{
		{"no claims", nil, http.StatusForbidden},
		{"member", &session.Claims{Role: models.RoleMember}, http.StatusForbidden},
		{"admin", &session.Claims{Role: models.RoleAdmin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dummy := &dummyHandler{}
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			RequireAdmin(dummy).ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, rec.Code)
			}
			if dummy.called != (tt.code == http.StatusOK) {
				t.Errorf("next called = %v", dummy.called)
			}
		})
	}
}

func TestClaimsFromContext_Empty(t *testing.T) {
	if got := ClaimsFromContext(context.Background()); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestWithRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := chimw.RequestID(WithRequestLogging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meds", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/boom", nil))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	first := entries[0].ContextMap()
	if first["method"] != "GET" || first["path"] != "/meds" || first["status"] != int64(200) {
		t.Errorf("unexpected fields: %v", first)
	}
	if id, _ := first["request_id"].(string); id == "" {
		t.Error("expected request_id field")
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Errorf("expected error level for 500, got %v", entries[1].Level)
	}
}

func TestLoginLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(6, 2)
	l.now = func() time.Time { return now }

	if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Error("expected third attempt to be rejected")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("expected other IP to have its own bucket")
	}

	now = now.Add(10 * time.Second)
	if !l.Allow("10.0.0.1") {
		t.Error("expected one token to be refilled after 10s at 6/min")
	}

	now = now.Add(bucketTTL + 2*time.Minute)
	l.Allow("10.0.0.3")
	l.mu.Lock()
	n := len(l.buckets)
	l.mu.Unlock()
	if n != 1 {
		t.Errorf("expected stale buckets to be swept, got %d buckets", n)
	}
}

func TestLoginLimiter_Middleware(t *testing.T) {
	l := NewLoginLimiter(1, 1)
	dummy := &dummyHandler{}
	h := l.Middleware(dummy)

	post := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", "192.0.2.7, 10.0.0.1")
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := post(); code != http.StatusOK {
		t.Fatalf("expected first attempt to pass, got %d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected GET to bypass the limiter, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	if got := clientIP(req); got != "203.0.113.9" {
		t.Errorf("expected host of RemoteAddr, got %q", got)
	}
	req.RemoteAddr = "bogus"
	if got := clientIP(req); got != "bogus" {
		t.Errorf("expected raw RemoteAddr, got %q", got)
	}
}

func TestRequireSameOrigin(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		headers map[string]string
		code    int
	}{
		{"get from another site", http.MethodGet, map[string]string{"Sec-Fetch-Site": "cross-site", "Origin": "https://evil.example"}, http.StatusOK},
		{"post without browser headers", http.MethodPost, nil, http.StatusOK},
		{"post same origin", http.MethodPost, map[string]string{"Sec-Fetch-Site": "same-origin", "Origin": "http://localhost:8080"}, http.StatusOK},
		{"post typed in address bar", http.MethodPost, map[string]string{"Sec-Fetch-Site": "none"}, http.StatusOK},
		{"post cross site", http.MethodPost, map[string]string{"Sec-Fetch-Site": "cross-site"}, http.StatusForbidden},
		{"post same site other port", http.MethodPost, map[string]string{"Sec-Fetch-Site": "same-site"}, http.StatusForbidden},
		{"origin matches host", http.MethodPost, map[string]string{"Origin": "http://localhost:8080"}, http.StatusOK},
		{"origin mismatch", http.MethodPost, map[string]string{"Origin": "https://evil.example"}, http.StatusForbidden},
		{"opaque origin", http.MethodPost, map[string]string{"Origin": "null"}, http.StatusForbidden},
		{"referer matches host", http.MethodPost, map[string]string{"Referer": "http://localhost:8080/meds"}, http.StatusOK},
		{"referer mismatch", http.MethodPost, map[string]string{"Referer": "https://evil.example/page"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dummy := &dummyHandler{}
			req := httptest.NewRequest(tt.method, "http://localhost:8080/meds/1/delete", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			RequireSameOrigin(dummy).ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, rec.Code)
			}
			if dummy.called != (tt.code == http.StatusOK) {
				t.Errorf("next handler called = %v", dummy.called)
			}
		})
	}
}
