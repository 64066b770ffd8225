// Package apiclient is the single gateway to the upstream REST API. It
// decorates every request with the base URL, timeout, cookies and bearer
// token of the calling session, and recovers transparently from an expired
// token with one refresh-and-replay.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/99minutos/orders-console/internal/api/metrics"
	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

const (
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 4 << 20
)

// Config captures the settings of the upstream connection.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport overrides http.DefaultTransport. Optional.
	Transport http.RoundTripper
}

// Client implements ports.APIClient.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	timeout   time.Duration
	log       zerolog.Logger
	refreshes singleflight.Group
}

// New validates cfg and returns a ready Client.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout, Transport: cfg.Transport},
		timeout: timeout,
		log:     log.With().Str("component", "apiclient").Logger(),
	}, nil
}

// CloseIdleConnections releases pooled connections to the upstream.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// Do sends req for the session behind tokens and decodes a 2xx JSON body
// into out. A 401 outside the auth routes triggers one refresh and one
// replay; if that fails the token is cleared and domain.ErrSessionExpired
// is returned for the caller to turn into a redirect to the login route.
func (c *Client) Do(ctx context.Context, tokens ports.TokenStore, req ports.APIRequest, out any) error {
	path, err := BuildPath(req.Route, req.Params, req.Query)
	if err != nil {
		return err
	}

	var body []byte
	if req.Body != nil {
		if body, err = json.Marshal(req.Body); err != nil {
			return fmt.Errorf("%s %s: encode body: %w", req.Method, req.Route, err)
		}
	}

	token := c.currentToken(ctx, tokens)
	resp, err := c.send(ctx, tokens, req, path, body, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !isAuthRoute(req.Route) {
		discard(resp)

		fresh, err := c.refresh(ctx, tokens, token)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%s %s: %w", req.Method, req.Route, ctx.Err())
			}
			c.endSession(ctx, tokens, req)
			return fmt.Errorf("%s %s: %w: %v", req.Method, req.Route, domain.ErrSessionExpired, err)
		}

		resp, err = c.send(ctx, tokens, req, path, body, fresh)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			discard(resp)
			c.endSession(ctx, tokens, req)
			return fmt.Errorf("%s %s: %w: rejected after refresh", req.Method, req.Route, domain.ErrSessionExpired)
		}
	}
	defer resp.Body.Close()

	return c.decode(resp, req, out)
}

func (c *Client) send(ctx context.Context, tokens ports.TokenStore, req ports.APIRequest, path string, body []byte, token string) (*http.Response, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Route, err)
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL.ResolveReference(ref).String(), rdr)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Route, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	c.attachCookies(ctx, tokens, httpReq)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	metrics.UpstreamRequestDuration.WithLabelValues(req.Route).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(req.Route, req.Method, "error").Inc()
		c.log.Error().Err(err).
			Str("method", req.Method).
			Str("route", req.Route).
			Msg("upstream request failed")
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrUpstream, req.Method, req.Route, err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(req.Route, req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	c.storeCookies(ctx, tokens, resp)
	return resp, nil
}

func (c *Client) decode(resp *http.Response, req ports.APIRequest, out any) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %s %s: read body: %w", domain.ErrUpstream, req.Method, req.Route, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		rerr := remoteError(resp.StatusCode, data)
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("method", req.Method).
			Str("route", req.Route).
			Str("message", rerr.Message).
			Msg("upstream returned an error")
		return fmt.Errorf("%s %s: %w", req.Method, req.Route, rerr)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.log.Error().Err(err).Str("route", req.Route).Msg("undecodable upstream response")
		return fmt.Errorf("%w: %s %s: decode response: %w", domain.ErrUpstream, req.Method, req.Route, err)
	}
	return nil
}

func (c *Client) currentToken(ctx context.Context, tokens ports.TokenStore) string {
	if tokens == nil {
		return ""
	}
	token, err := tokens.Token(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("token store read failed, sending request without credentials")
		return ""
	}
	return token
}

// endSession clears the stored token after an unrecoverable 401. It runs
// even when ctx is already cancelled.
func (c *Client) endSession(ctx context.Context, tokens ports.TokenStore, req ports.APIRequest) {
	if tokens == nil {
		return
	}
	if err := tokens.ClearToken(context.WithoutCancel(ctx)); err != nil {
		c.log.Error().Err(err).Msg("failed to clear expired token")
	}
	c.log.Warn().
		Str("method", req.Method).
		Str("route", req.Route).
		Msg("session expired, stored token cleared")
}

func (c *Client) attachCookies(ctx context.Context, tokens ports.TokenStore, req *http.Request) {
	cs, ok := tokens.(ports.CookieStore)
	if !ok {
		return
	}
	cookies, err := cs.Cookies(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("cookie store read failed")
		return
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
}

func (c *Client) storeCookies(ctx context.Context, tokens ports.TokenStore, resp *http.Response) {
	cs, ok := tokens.(ports.CookieStore)
	if !ok {
		return
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return
	}
	if err := cs.SetCookies(ctx, cookies); err != nil {
		c.log.Warn().Err(err).Msg("cookie store write failed")
	}
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}
