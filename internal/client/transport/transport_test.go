package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atinyakov/medstock/internal/client/session"
	"github.com/atinyakov/medstock/internal/models"
)

func newStore(t *testing.T, token, refresh string) *session.Store {
	t.Helper()
	s, err := session.Open("")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(models.Credentials{Token: token, RefreshToken: refresh}); err != nil {
		t.Fatal(err)
	}
	return s
}

// authServer answers 200 only for the given bearer token and echoes the body.
func authServer(t *testing.T, valid string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		if r.Header.Get("Authorization") != "Bearer "+valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []int
	refresh  []bool
}

func (o *recordingObserver) ObserveAPI(_, _ string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func (o *recordingObserver) ObserveRefresh(ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.refresh = append(o.refresh, ok)
}

func TestRoundTrip_AttachesTokenAndRequestID(t *testing.T) {
	var gotAuth, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get(RequestIDHeader)
	}))
	defer srv.Close()

	client := &http.Client{Transport: New(newStore(t, "abc", "r"), nil)}
	resp, err := client.Get(srv.URL + "/api/meds")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q; want %q", gotAuth, "Bearer abc")
	}
	if len(gotID) != 36 {
		t.Errorf("X-Request-ID = %q; want a uuid", gotID)
	}
}

func TestRoundTrip_RefreshesAndReplaysBody(t *testing.T) {
	srv := authServer(t, "new", nil)
	store := newStore(t, "old", "refresh-1")
	obs := &recordingObserver{}

	var gotRefresh string
	refresh := func(_ context.Context, rt string) (string, error) {
		gotRefresh = rt
		return "new", nil
	}
	client := &http.Client{Transport: New(store, refresh, WithObserver(obs))}

	resp, err := client.Post(srv.URL+"/api/withdraw", "application/json", strings.NewReader(`{"amount":2}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	if string(body) != `{"amount":2}` {
		t.Errorf("replayed body = %q", body)
	}
	if gotRefresh != "refresh-1" {
		t.Errorf("refresh token sent = %q; want refresh-1", gotRefresh)
	}
	if store.Token() != "new" {
		t.Errorf("stored token = %q; want new", store.Token())
	}
	if len(obs.statuses) != 2 || obs.statuses[0] != http.StatusUnauthorized || obs.statuses[1] != http.StatusOK {
		t.Errorf("observed statuses = %v; want [401 200]", obs.statuses)
	}
	if len(obs.refresh) != 1 || !obs.refresh[0] {
		t.Errorf("observed refresh = %v; want [true]", obs.refresh)
	}
}

func TestRoundTrip_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	var hits int32
	srv := authServer(t, "new", &hits)
	store := newStore(t, "old", "r")

	var refreshes int32
	refresh := func(_ context.Context, _ string) (string, error) {
		atomic.AddInt32(&refreshes, 1)
		time.Sleep(50 * time.Millisecond)
		return "new", nil
	}
	client := &http.Client{Transport: New(store, refresh)}

	const n = 10
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get(srv.URL + "/api/meds")
			if err != nil {
				t.Errorf("request %d failed: %v", i, err)
				return
			}
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&refreshes); got != 1 {
		t.Errorf("refresh calls = %d; want 1", got)
	}
	for i, c := range codes {
		if c != http.StatusOK {
			t.Errorf("request %d status = %d; want 200", i, c)
		}
	}
	if got := atomic.LoadInt32(&hits); got > 2*n {
		t.Errorf("server hits = %d; each request may be replayed at most once", got)
	}
}

func TestRoundTrip_StaleTokenReplaysWithoutRefresh(t *testing.T) {
	store := newStore(t, "old", "r")
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			// Another caller refreshed while this request was in flight.
			_ = store.SetToken("fresh")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Authorization") != "Bearer fresh" {
			t.Errorf("replay Authorization = %q; want Bearer fresh", r.Header.Get("Authorization"))
		}
	}))
	defer srv.Close()

	refresh := func(context.Context, string) (string, error) {
		t.Error("refresh must not be called for a stale token")
		return "", errors.New("unexpected")
	}
	resp, err := (&http.Client{Transport: New(store, refresh)}).Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d; want 200", resp.StatusCode)
	}
}

func TestRoundTrip_RefreshFailureClearsTokens(t *testing.T) {
	srv := authServer(t, "never", nil)
	store := newStore(t, "old", "r")
	refresh := func(context.Context, string) (string, error) {
		return "", errors.New("refresh token revoked")
	}

	_, err := (&http.Client{Transport: New(store, refresh)}).Get(srv.URL)
	if !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("err = %v; want ErrRefreshFailed", err)
	}
	if store.Token() != "" || store.RefreshToken() != "" {
		t.Error("refresh failure must clear both tokens")
	}
}

func TestRoundTrip_ReplaysAtMostOnce(t *testing.T) {
	var hits int32
	srv := authServer(t, "never", &hits)
	store := newStore(t, "old", "r")
	var refreshes int32
	refresh := func(context.Context, string) (string, error) {
		atomic.AddInt32(&refreshes, 1)
		return "new", nil
	}

	resp, err := (&http.Client{Transport: New(store, refresh)}).Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401 after one replay", resp.StatusCode)
	}
	if atomic.LoadInt32(&hits) != 2 || atomic.LoadInt32(&refreshes) != 1 {
		t.Errorf("hits=%d refreshes=%d; want 2 and 1", hits, refreshes)
	}
}

func TestRoundTrip_NoTokenPassesThrough401(t *testing.T) {
	srv := authServer(t, "x", nil)
	store, _ := session.Open("")
	refresh := func(context.Context, string) (string, error) {
		t.Error("refresh must not be called without a refresh token")
		return "", nil
	}
	resp, err := (&http.Client{Transport: New(store, refresh)}).Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", resp.StatusCode)
	}
}

func TestRoundTrip_NoAccessTokenRefreshes(t *testing.T) {
	var hits int32
	srv := authServer(t, "fresh", &hits)
	store := newStore(t, "", "r")
	var calls int32
	refresh := func(_ context.Context, rt string) (string, error) {
		atomic.AddInt32(&calls, 1)
		if rt != "r" {
			t.Errorf("refresh token = %q; want r", rt)
		}
		return "fresh", nil
	}

	resp, err := (&http.Client{Transport: New(store, refresh)}).Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d; want 200", resp.StatusCode)
	}
	if c, h := atomic.LoadInt32(&calls), atomic.LoadInt32(&hits); c != 1 || h != 2 {
		t.Errorf("refresh calls = %d, hits = %d; want 1 and 2", c, h)
	}
	if store.Token() != "fresh" || store.RefreshToken() != "r" {
		t.Errorf("store = %q/%q; want fresh/r", store.Token(), store.RefreshToken())
	}
}

func TestRefresh(t *testing.T) {
	store := newStore(t, "", "r")
	var calls int32
	tr := New(store, func(context.Context, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "fresh", nil
	})

	token, err := tr.Refresh(context.Background())
	if err != nil || token != "fresh" {
		t.Fatalf("Refresh = %q, %v; want fresh", token, err)
	}
	token, err = tr.Refresh(context.Background())
	if err != nil || token != "fresh" || calls != 1 {
		t.Errorf("second Refresh = %q, %v, calls %d; want stored token without a call", token, err, calls)
	}
}

func TestRefresh_FailureClearsStore(t *testing.T) {
	store := newStore(t, "", "r")
	tr := New(store, func(context.Context, string) (string, error) {
		return "", errors.New("refresh token revoked")
	})
	if _, err := tr.Refresh(context.Background()); !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("err = %v; want ErrRefreshFailed", err)
	}
	if store.RefreshToken() != "" {
		t.Error("failed refresh should clear the store")
	}
}

func TestWithRateLimit_ContextCancel(t *testing.T) {
	srv := authServer(t, "a", nil)
	tr := New(newStore(t, "a", ""), nil, WithRateLimit(0.001, 1))
	client := &http.Client{Transport: tr}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("first request should pass the burst: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if _, err := client.Do(req); err == nil {
		t.Fatal("second request should be held by the limiter")
	}
}
