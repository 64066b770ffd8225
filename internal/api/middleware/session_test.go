package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/orders-console/internal/core/ports"
	"github.com/99minutos/orders-console/internal/infrastructure/session"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func runSession(t *testing.T, s *Sessions, cookie string) ports.Caller {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got ports.Caller
	called := false
	h := s.Middleware()(func(c echo.Context) error {
		called = true
		got = CallerFrom(c)
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	return got
}

func TestSessions_ValidCookie(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	_ = store.SetToken(context.Background(), "sid-1", "upstream-token")
	s := NewSessions(store, "secret", time.Hour, false)

	caller := runSession(t, s, signed(t, "secret", jwt.MapClaims{
		"sid": "sid-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}))

	if caller.SessionID != "sid-1" {
		t.Fatalf("expected sid-1, got %q", caller.SessionID)
	}
	if tok, _ := caller.Tokens.Token(context.Background()); tok != "upstream-token" {
		t.Fatalf("caller tokens not bound to the session, got %q", tok)
	}
}

func TestSessions_MissingCookieIsAnonymous(t *testing.T) {
	s := NewSessions(session.NewMemoryStore(time.Hour), "secret", time.Hour, false)

	caller := runSession(t, s, "")
	if caller.SessionID != "" {
		t.Fatalf("expected anonymous caller, got %q", caller.SessionID)
	}
	if err := caller.Tokens.SetToken(context.Background(), "x"); err == nil {
		t.Fatalf("anonymous callers must not store tokens")
	}
}

func TestSessions_RejectsForeignSignature(t *testing.T) {
	s := NewSessions(session.NewMemoryStore(time.Hour), "secret", time.Hour, false)

	caller := runSession(t, s, signed(t, "other", jwt.MapClaims{"sid": "sid-1"}))
	if caller.SessionID != "" {
		t.Fatalf("cookie signed with another key must be ignored")
	}
}

func TestSessions_RejectsExpiredCookie(t *testing.T) {
	s := NewSessions(session.NewMemoryStore(time.Hour), "secret", time.Hour, false)

	caller := runSession(t, s, signed(t, "secret", jwt.MapClaims{
		"sid": "sid-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}))
	if caller.SessionID != "" {
		t.Fatalf("expired cookie must be ignored")
	}
}

func TestSessions_RejectsGarbage(t *testing.T) {
	s := NewSessions(session.NewMemoryStore(time.Hour), "secret", time.Hour, false)

	if caller := runSession(t, s, "not-a-token"); caller.SessionID != "" {
		t.Fatalf("garbage cookie must be ignored")
	}
}

func TestSessions_StartAndEnd(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	s := NewSessions(store, "secret", time.Hour, true)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	caller, err := s.Start(c)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if caller.SessionID == "" {
		t.Fatalf("expected a new session id")
	}
	if err := caller.Tokens.SetToken(context.Background(), "tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	resp := rec.Result()
	cookies := resp.Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || !cookies[0].HttpOnly || !cookies[0].Secure {
		t.Fatalf("unexpected session cookie: %+v", cookies)
	}

	// The issued cookie resolves to the same session.
	if again := runSession(t, s, cookies[0].Value); again.SessionID != caller.SessionID {
		t.Fatalf("issued cookie resolved to %q, want %q", again.SessionID, caller.SessionID)
	}

	if err := s.End(c); err != nil {
		t.Fatalf("end: %v", err)
	}
	if tok, _ := store.Token(context.Background(), caller.SessionID); tok != "" {
		t.Fatalf("session record must be deleted")
	}
	if CallerFrom(c).SessionID != "" {
		t.Fatalf("context caller must be anonymous after End")
	}
}

func TestSessions_StartRotatesExistingSession(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	ctx := context.Background()
	_ = store.SetCookies(ctx, "sid-old", map[string]string{"refresh": "r-old"})
	s := NewSessions(store, "secret", time.Hour, false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signed(t, "secret", jwt.MapClaims{
		"sid": "sid-old",
		"exp": time.Now().Add(time.Hour).Unix(),
	})})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var caller ports.Caller
	h := s.Middleware()(func(c echo.Context) error {
		var err error
		caller, err = s.Start(c)
		return err
	})
	if err := h(c); err != nil {
		t.Fatalf("start: %v", err)
	}

	if caller.SessionID == "" || caller.SessionID == "sid-old" {
		t.Fatalf("expected a fresh session id, got %q", caller.SessionID)
	}
	if CallerFrom(c).SessionID != caller.SessionID {
		t.Fatalf("context caller not switched to the new session")
	}
	if cookies, _ := store.Cookies(ctx, "sid-old"); len(cookies) != 0 {
		t.Fatalf("previous session record must be deleted, still has %v", cookies)
	}

	issued := rec.Result().Cookies()
	if len(issued) != 1 {
		t.Fatalf("expected one session cookie, got %+v", issued)
	}
	if again := runSession(t, s, issued[0].Value); again.SessionID != caller.SessionID {
		t.Fatalf("issued cookie resolved to %q, want %q", again.SessionID, caller.SessionID)
	}
}
