package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

type stubAccessor struct {
	calls     int
	currentFn func(ctx context.Context, caller ports.Caller) (*domain.User, error)
}

func (s *stubAccessor) Current(ctx context.Context, caller ports.Caller) (*domain.User, error) {
	s.calls++
	return s.currentFn(ctx, caller)
}

func (s *stubAccessor) Forget(context.Context, ports.Caller) error { return nil }

type fixedTokens struct{ token string }

func (f fixedTokens) Token(context.Context) (string, error)  { return f.token, nil }
func (f fixedTokens) SetToken(context.Context, string) error { return nil }
func (f fixedTokens) ClearToken(context.Context) error       { return nil }

func guardContext(caller *ports.Caller) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if caller != nil {
		c.Set(ctxCaller, *caller)
	}
	return c, rec
}

func userAccessor(u *domain.User) *stubAccessor {
	return &stubAccessor{currentFn: func(context.Context, ports.Caller) (*domain.User, error) { return u, nil }}
}

func TestProtected_AllowsResolvedUser(t *testing.T) {
	acc := userAccessor(&domain.User{ID: "u1", Role: domain.RoleAgent})
	c, rec := guardContext(&ports.Caller{SessionID: "sid", Tokens: fixedTokens{"tok"}})

	err := Protected(acc, domain.RoleAdmin, domain.RoleAgent)(func(c echo.Context) error {
		if UserFrom(c) == nil || UserFrom(c).ID != "u1" {
			t.Fatalf("user not put in context")
		}
		return c.NoContent(http.StatusOK)
	})(c)

	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d / %v", rec.Code, err)
	}
}

func TestProtected_WithoutSession(t *testing.T) {
	acc := userAccessor(&domain.User{ID: "u1"})
	c, rec := guardContext(nil)

	err := Protected(acc)(func(echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if acc.calls != 0 {
		t.Fatalf("accessor must not be consulted without a session")
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("nothing may be written before the check resolves")
	}
}

func TestProtected_AccessorFailure(t *testing.T) {
	acc := &stubAccessor{currentFn: func(context.Context, ports.Caller) (*domain.User, error) {
		return nil, domain.ErrUnauthenticated
	}}
	c, _ := guardContext(&ports.Caller{SessionID: "sid", Tokens: fixedTokens{"tok"}})

	err := Protected(acc)(func(echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestProtected_RoleNotAllowed(t *testing.T) {
	acc := userAccessor(&domain.User{ID: "u1", Role: domain.RoleViewer})
	c, _ := guardContext(&ports.Caller{SessionID: "sid", Tokens: fixedTokens{"tok"}})

	err := Protected(acc, domain.RoleAdmin)(func(echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPublic_SignedInUserIsRedirected(t *testing.T) {
	acc := userAccessor(&domain.User{ID: "u1"})
	c, _ := guardContext(&ports.Caller{SessionID: "sid", Tokens: fixedTokens{"tok"}})

	err := Public(acc)(func(echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})(c)
	if !errors.Is(err, domain.ErrAlreadySignedIn) {
		t.Fatalf("expected ErrAlreadySignedIn, got %v", err)
	}
}

func TestPublic_NoTokenSkipsAccessor(t *testing.T) {
	acc := userAccessor(&domain.User{ID: "u1"})
	c, rec := guardContext(&ports.Caller{SessionID: "sid", Tokens: fixedTokens{""}})

	err := Public(acc)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d / %v", rec.Code, err)
	}
	if acc.calls != 0 {
		t.Fatalf("accessor must not be consulted without a stored token")
	}
}

func TestPublic_StaleTokenFallsThrough(t *testing.T) {
	acc := &stubAccessor{currentFn: func(context.Context, ports.Caller) (*domain.User, error) {
		return nil, domain.ErrUnauthenticated
	}}
	c, rec := guardContext(&ports.Caller{SessionID: "sid", Tokens: fixedTokens{"stale"}})

	err := Public(acc)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d / %v", rec.Code, err)
	}
}
