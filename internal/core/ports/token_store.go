package ports

import (
	"context"
	"net/http"
)

// TokenStore holds the bearer token of one session. It is mutated only by
// login, refresh and logout paths.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// CookieStore is implemented by token stores that also keep the cookies the
// upstream sets (the refresh credential). The API client replays them on
// every request when available.
type CookieStore interface {
	Cookies(ctx context.Context) ([]*http.Cookie, error)
	SetCookies(ctx context.Context, cookies []*http.Cookie) error
}

// SessionKeyer identifies the session behind a TokenStore so that concurrent
// refreshes for the same session can be collapsed into one.
type SessionKeyer interface {
	SessionKey() string
}

// SessionStore persists browser sessions server side, field by field, so
// concurrent requests of one session never overwrite each other.
type SessionStore interface {
	Token(ctx context.Context, sessionID string) (string, error)
	SetToken(ctx context.Context, sessionID, token string) error
	ClearToken(ctx context.Context, sessionID string) error
	Cookies(ctx context.Context, sessionID string) (map[string]string, error)
	SetCookies(ctx context.Context, sessionID string, cookies map[string]string) error
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}
