// Package session adapts server-side session storage to the per-session
// token abstraction used by the API client.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/99minutos/orders-console/internal/core/ports"
)

// Tokens binds a SessionStore to one session id. It implements
// ports.TokenStore, ports.CookieStore and ports.SessionKeyer.
type Tokens struct {
	store ports.SessionStore
	id    string
}

// For returns the token view of session id.
func For(store ports.SessionStore, id string) *Tokens {
	return &Tokens{store: store, id: id}
}

func (t *Tokens) SessionKey() string { return t.id }

func (t *Tokens) Token(ctx context.Context) (string, error) {
	return t.store.Token(ctx, t.id)
}

func (t *Tokens) SetToken(ctx context.Context, token string) error {
	return t.store.SetToken(ctx, t.id, token)
}

func (t *Tokens) ClearToken(ctx context.Context) error {
	return t.store.ClearToken(ctx, t.id)
}

func (t *Tokens) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	kv, err := t.store.Cookies(ctx, t.id)
	if err != nil {
		return nil, err
	}
	out := make([]*http.Cookie, 0, len(kv))
	for name, value := range kv {
		out = append(out, &http.Cookie{Name: name, Value: value})
	}
	return out, nil
}

func (t *Tokens) SetCookies(ctx context.Context, cookies []*http.Cookie) error {
	return t.store.SetCookies(ctx, t.id, CookieValues(cookies, time.Now()))
}

// CookieValues flattens Set-Cookie headers into name/value pairs. Cookies the
// server asks to delete map to an empty value, which stores treat as removal.
func CookieValues(cookies []*http.Cookie, now time.Time) map[string]string {
	kv := make(map[string]string, len(cookies))
	for _, ck := range cookies {
		expired := ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(now))
		if expired {
			kv[ck.Name] = ""
			continue
		}
		kv[ck.Name] = ck.Value
	}
	return kv
}
