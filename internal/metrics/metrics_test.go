package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                  "/",
		"/metrics":                          "/metrics",
		"/api/meds/12":                      "/api/meds/:id",
		"/api/meds/expiration":              "/api/meds/expiration",
		"/api/min_meds/A-17":                "/api/min_meds/:id",
		"/api/logs/monthly-withdrawals?x=1": "/api/logs/monthly-withdrawals",
		"/meds/5/qr.png":                    "/meds/:id/qr.png",
		"/api/types/face":                   "/api/types/face",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Errorf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			if matches(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	for _, lp := range m.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestInstrument(t *testing.T) {
	m := New()
	h := m.Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meds/42", nil))

	got := counterValue(t, m, "http_requests_total", map[string]string{
		"method": "GET", "path": "/meds/:id", "status": "418",
	})
	if got != 1 {
		t.Errorf("http_requests_total = %v; want 1", got)
	}
}

func TestObserveAPI(t *testing.T) {
	m := New()
	m.ObserveAPI(http.MethodDelete, "/api/logs/9", http.StatusNoContent, 5*time.Millisecond)
	m.ObserveAPI(http.MethodGet, "/api/meds", 0, time.Millisecond)
	m.ObserveRefresh(false)

	if got := counterValue(t, m, "medstock_api_requests_total", map[string]string{"path": "/api/logs/:id", "status": "204"}); got != 1 {
		t.Errorf("delete counter = %v; want 1", got)
	}
	if got := counterValue(t, m, "medstock_api_requests_total", map[string]string{"path": "/api/meds", "status": "error"}); got != 1 {
		t.Errorf("error counter = %v; want 1", got)
	}
	if got := counterValue(t, m, "medstock_api_token_refresh_total", map[string]string{"outcome": "failure"}); got != 1 {
		t.Errorf("refresh counter = %v; want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRefresh(true)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `medstock_api_token_refresh_total{outcome="success"} 1`) {
		t.Errorf("exposition missing refresh counter:\n%s", body)
	}
}
