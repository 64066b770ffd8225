package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/orders-console/internal/core/ports"
	"github.com/99minutos/orders-console/internal/infrastructure/session"
)

// SessionCookie carries the signed session id. The upstream token never
// leaves the server.
const SessionCookie = "console_session"

const (
	ctxCaller = "caller"
	ctxUser   = "user"
)

var errNoSession = errors.New("no session")

// Sessions binds browser requests to server-side session records through an
// HS256-signed cookie holding the session id.
type Sessions struct {
	store  ports.SessionStore
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessions(store ports.SessionStore, secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{store: store, secret: []byte(secret), ttl: ttl, secure: secure}
}

// Middleware resolves the session cookie and puts the Caller in the context.
// Requests without a valid cookie get an anonymous caller; they are rejected
// later by the guards, not here.
func (s *Sessions) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := ports.Caller{Tokens: anonymous{}}
			if sid, err := s.sessionID(c); err == nil {
				caller = ports.Caller{SessionID: sid, Tokens: session.For(s.store, sid)}
			}
			SetCaller(c, caller)
			return next(c)
		}
	}
}

// Start opens a fresh session for a sign-in and issues its cookie. Any
// session the request carried is deleted, so an id seen before sign-in
// never becomes an authenticated one.
func (s *Sessions) Start(c echo.Context) (ports.Caller, error) {
	if prev := CallerFrom(c); prev.SessionID != "" {
		if err := s.store.Delete(c.Request().Context(), prev.SessionID); err != nil {
			return ports.Caller{}, err
		}
	}

	sid := uuid.NewString()
	signed, err := s.sign(sid)
	if err != nil {
		return ports.Caller{}, err
	}
	c.SetCookie(s.cookie(signed, int(s.ttl.Seconds())))

	caller := ports.Caller{SessionID: sid, Tokens: session.For(s.store, sid)}
	SetCaller(c, caller)
	return caller, nil
}

// End deletes the session record and expires the cookie.
func (s *Sessions) End(c echo.Context) error {
	caller := CallerFrom(c)
	c.SetCookie(s.cookie("", -1))
	SetCaller(c, ports.Caller{Tokens: anonymous{}})
	if caller.SessionID == "" {
		return nil
	}
	return s.store.Delete(context.WithoutCancel(c.Request().Context()), caller.SessionID)
}

func (s *Sessions) sign(sid string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *Sessions) sessionID(c echo.Context) (string, error) {
	ck, err := c.Cookie(SessionCookie)
	if err != nil || ck.Value == "" {
		return "", errNoSession
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(ck.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", errNoSession
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", errNoSession
	}
	return sid, nil
}

func (s *Sessions) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetCaller binds caller to the request context.
func SetCaller(c echo.Context, caller ports.Caller) {
	c.Set(ctxCaller, caller)
}

// CallerFrom returns the caller put in the context by Sessions.Middleware.
func CallerFrom(c echo.Context) ports.Caller {
	if caller, ok := c.Get(ctxCaller).(ports.Caller); ok {
		return caller
	}
	return ports.Caller{Tokens: anonymous{}}
}

// anonymous is the token store of a request without a session.
type anonymous struct{}

func (anonymous) Token(context.Context) (string, error) { return "", nil }

func (anonymous) SetToken(context.Context, string) error { return errNoSession }

func (anonymous) ClearToken(context.Context) error { return nil }
