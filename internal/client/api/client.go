// Package api is a typed client of the inventory REST API. Every call is
// authenticated through the token refresh transport; login and the refresh
// itself bypass it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/medstock/internal/client/session"
	"github.com/atinyakov/medstock/internal/client/transport"
)

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	// CAFile is an extra CA bundle trusted for HTTPS API URLs.
	CAFile   string
	Observer transport.Observer
	Logger   *zap.Logger
	// Base overrides the network transport, mainly for tests.
	Base http.RoundTripper
}

// Client calls the inventory API on behalf of the user stored in Store.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	raw     *http.Client
	tr      *transport.Transport
	timeout time.Duration
	store   *session.Store
	log     *zap.Logger
}

// New returns a client for the API at baseURL. It installs itself as the
// renewer of store, so an expired access token is refreshed when the
// session claims are read.
func New(baseURL string, store *session.Store, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	base := opts.Base
	if base == nil {
		tr, err := NewHTTPTransport(opts.CAFile)
		if err != nil {
			return nil, err
		}
		base = tr
	}

	c := &Client{
		baseURL: u,
		raw:     &http.Client{Transport: base, Timeout: opts.Timeout},
		timeout: opts.Timeout,
		store:   store,
		log:     opts.Logger,
	}
	trOpts := []transport.Option{
		transport.WithBase(base),
		transport.WithRateLimit(opts.RateLimit, opts.RateBurst),
		transport.WithLogger(opts.Logger),
	}
	if opts.Observer != nil {
		trOpts = append(trOpts, transport.WithObserver(opts.Observer))
	}
	c.tr = transport.New(store, c.refresh, trOpts...)
	c.http = &http.Client{Transport: c.tr, Timeout: opts.Timeout}
	store.SetRenewer(c.renew)
	return c, nil
}

// Session returns the credential store the client authenticates with.
func (c *Client) Session() *session.Store {
	return c.store
}

// renew is the session renewer installed by New. A failed refresh has
// already cleared the store.
func (c *Client) renew() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	_, err := c.tr.Refresh(ctx)
	return err
}

// endpoint joins the base URL with an already escaped path.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + path
	if p, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = p
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends in as JSON (when non-nil) and decodes the response into out
// (when non-nil). Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, transport.ErrRefreshFailed) {
			return fmt.Errorf("%s %s: %w: %v", method, path, ErrUnauthorized, err)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		c.log.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, c.http, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, c.http, http.MethodPost, path, nil, in, out)
}

func (c *Client) put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, c.http, http.MethodPut, path, nil, in, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, c.http, http.MethodDelete, path, nil, nil, nil)
}

func escapeID(id fmt.Stringer) string {
	return url.PathEscape(id.String())
}
