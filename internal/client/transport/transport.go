// Package transport provides the http.RoundTripper used for every call to
// the inventory API. It attaches the bearer token, tags requests with an id,
// applies an optional rate limit and transparently refreshes an expired
// access token.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// ErrRefreshFailed is returned when a 401 could not be recovered by
// refreshing the access token. The stored tokens are cleared by then.
var ErrRefreshFailed = errors.New("token refresh failed")

// TokenStore is the credential storage the transport reads and updates.
type TokenStore interface {
	Token() string
	RefreshToken() string
	SetToken(token string) error
	Clear() error
}

// RefreshFunc exchanges a refresh token for a new access token. It must not
// go through the Transport itself.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

// Observer receives per-request measurements.
type Observer interface {
	ObserveAPI(method, path string, status int, d time.Duration)
	ObserveRefresh(ok bool)
}

// Transport is an http.RoundTripper that authenticates requests against the
// inventory API. It is safe for concurrent use.
type Transport struct {
	base     http.RoundTripper
	store    TokenStore
	refresh  RefreshFunc
	limiter  *rate.Limiter
	observer Observer
	log      *zap.Logger

	group singleflight.Group
}

// Option configures a Transport.
type Option func(*Transport)

// WithBase sets the underlying round tripper. Defaults to http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) { t.base = rt }
}

// WithRateLimit caps outbound requests at perSecond with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(t *Transport) {
		if perSecond <= 0 {
			t.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithObserver reports request metrics to o.
func WithObserver(o Observer) Option {
	return func(t *Transport) { t.observer = o }
}

// WithLogger sets the logger for refresh events.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// New returns a Transport reading tokens from store and refreshing them
// with refresh.
func New(store TokenStore, refresh RefreshFunc, opts ...Option) *Transport {
	t := &Transport{
		base:    http.DefaultTransport,
		store:   store,
		refresh: refresh,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip sends req with the current access token. On a 401 it replays
// the request once: with the already refreshed token when the request was
// sent with a stale one, otherwise after a refresh shared by every request
// that failed at the same time. A request sent without an access token is
// only replayed when a refresh token is stored.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}

	sent := t.store.Token()
	resp, err := t.send(req, body, id, sent)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if sent == "" && t.store.RefreshToken() == "" {
		return resp, nil
	}
	drain(resp)

	token := t.store.Token()
	if token == "" || token == sent {
		token, err = t.refreshOnce(req.Context(), sent)
		if err != nil {
			return nil, err
		}
	}
	return t.send(req, body, id, token)
}

func (t *Transport) send(req *http.Request, body []byte, id, token string) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	r := req.Clone(req.Context())
	if body != nil {
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		r.ContentLength = int64(len(body))
	}
	r.Header.Set(RequestIDHeader, id)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(r)
	if t.observer != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.observer.ObserveAPI(r.Method, r.URL.Path, status, time.Since(start))
	}
	return resp, err
}

// Refresh obtains a new access token unless one is already stored. It shares
// the single in-flight refresh with RoundTrip.
func (t *Transport) Refresh(ctx context.Context) (string, error) {
	return t.refreshOnce(ctx, "")
}

// refreshOnce performs at most one refresh at a time. Callers that arrive
// while a refresh is in flight wait for it and share its result.
func (t *Transport) refreshOnce(ctx context.Context, stale string) (string, error) {
	v, err, shared := t.group.Do("refresh", func() (any, error) {
		if current := t.store.Token(); current != "" && current != stale {
			return current, nil
		}
		rt := t.store.RefreshToken()
		if rt == "" {
			t.fail(errors.New("no refresh token stored"))
			return nil, fmt.Errorf("%w: no refresh token stored", ErrRefreshFailed)
		}
		token, err := t.refresh(context.WithoutCancel(ctx), rt)
		if err == nil && token == "" {
			err = errors.New("empty token in refresh response")
		}
		if err != nil {
			t.fail(err)
			return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		}
		if err := t.store.SetToken(token); err != nil {
			t.log.Warn("failed to persist refreshed token", zap.Error(err))
		}
		if t.observer != nil {
			t.observer.ObserveRefresh(true)
		}
		t.log.Debug("access token refreshed")
		return token, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		t.log.Debug("reused in-flight token refresh")
	}
	return v.(string), nil
}

func (t *Transport) fail(err error) {
	if t.observer != nil {
		t.observer.ObserveRefresh(false)
	}
	t.log.Warn("token refresh failed, clearing credentials", zap.Error(err))
	if cerr := t.store.Clear(); cerr != nil {
		t.log.Error("failed to clear credentials", zap.Error(cerr))
	}
}

func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}
	return b, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
