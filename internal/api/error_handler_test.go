package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/orders-console/internal/api/handler"
	"github.com/99minutos/orders-console/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantStatus   int
		wantRedirect string
		wantMessage  string
	}{
		{
			name:       "validation",
			err:        &handler.ValidationError{Fields: map[string]string{"email": "email is required"}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "echo error",
			err:        echo.NewHTTPError(http.StatusBadRequest, "invalid payload"),
			wantStatus: http.StatusBadRequest, wantMessage: "invalid payload",
		},
		{
			name:       "session expired",
			err:        fmt.Errorf("GET ordens: %w: refresh failed", domain.ErrSessionExpired),
			wantStatus: http.StatusUnauthorized, wantRedirect: "/login",
		},
		{
			name:       "unauthenticated",
			err:        domain.ErrUnauthenticated,
			wantStatus: http.StatusUnauthorized, wantRedirect: "/login",
		},
		{
			name:       "already signed in",
			err:        domain.ErrAlreadySignedIn,
			wantStatus: http.StatusConflict, wantRedirect: "/dashboard",
		},
		{
			name:       "invalid credentials keep the upstream message",
			err:        fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, &domain.RemoteError{StatusCode: 401, Message: "Credenciais inválidas"}),
			wantStatus: http.StatusUnauthorized, wantMessage: "Credenciais inválidas",
		},
		{
			name:       "order not found",
			err:        domain.ErrOrderNotFound,
			wantStatus: http.StatusNotFound, wantRedirect: "/dashboard",
		},
		{
			name:       "forbidden",
			err:        fmt.Errorf("%w: order is assigned to someone else", domain.ErrForbidden),
			wantStatus: http.StatusForbidden, wantMessage: "access denied",
		},
		{
			name:       "upstream conflict passes through",
			err:        &domain.RemoteError{StatusCode: http.StatusConflict, Message: "Ordem já concluída"},
			wantStatus: http.StatusConflict, wantMessage: "Ordem já concluída",
		},
		{
			name:       "upstream 5xx becomes bad gateway",
			err:        &domain.RemoteError{StatusCode: http.StatusInternalServerError, Message: "db down"},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "transport failure",
			err:        fmt.Errorf("%w: connection refused", domain.ErrUpstream),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "timeout",
			err:        fmt.Errorf("GET ordens: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "unexpected error hides details",
			err:        errors.New("nil map write in handler"),
			wantStatus: http.StatusInternalServerError, wantMessage: "internal server error",
		},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/orders", nil), rec)

			h(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var body handler.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Redirect != tt.wantRedirect {
				t.Errorf("redirect: got %q, want %q", body.Redirect, tt.wantRedirect)
			}
			if tt.wantMessage != "" && body.Error != tt.wantMessage {
				t.Errorf("error: got %q, want %q", body.Error, tt.wantMessage)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponseIsLeftAlone(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Body.String() != "done" {
		t.Errorf("body changed after commit: %q", rec.Body.String())
	}
}
