package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/orders-console/internal/api/handler"
	"github.com/99minutos/orders-console/internal/core/domain"
)

// Navigation targets carried by error responses.
const (
	redirectLogin     = "/login"
	redirectDashboard = "/dashboard"
)

// statusClientClosedRequest is used when the browser went away mid-request.
const statusClientClosedRequest = 499

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors and upstream answers to HTTP status codes.
//   - Attaches a redirect where the client should navigate (login, dashboard).
//   - Surfaces the upstream's message, never internal details.
//   - Logs unexpected errors.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, handler.ErrorResponse{Error: "validation failed", Fields: ve.Fields}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var re *domain.RemoteError

	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "session expired, please sign in again", Redirect: redirectLogin}
	case errors.Is(err, domain.ErrAlreadySignedIn):
		return http.StatusConflict, handler.ErrorResponse{Error: "already signed in", Redirect: redirectDashboard}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: remoteMessage(err, "invalid credentials")}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "not authenticated", Redirect: redirectLogin}
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: "order not found", Redirect: redirectDashboard}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: remoteMessage(err, "not found"), Redirect: redirectDashboard}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorResponse{Error: remoteMessage(err, "access denied")}
	case errors.Is(err, domain.ErrInvalidInput):
		if errors.As(err, &re) {
			return re.StatusCode, handler.ErrorResponse{Error: remoteMessage(err, "invalid request")}
		}
		return http.StatusUnprocessableEntity, handler.ErrorResponse{Error: err.Error()}
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, handler.ErrorResponse{Error: "request cancelled"}
	case isTimeout(err):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream timed out")
		return http.StatusGatewayTimeout, handler.ErrorResponse{Error: "the server took too long to respond, try again"}
	}

	if errors.As(err, &re) {
		if re.StatusCode < http.StatusInternalServerError {
			return re.StatusCode, handler.ErrorResponse{Error: remoteMessage(err, http.StatusText(re.StatusCode))}
		}
		log.Error().Err(err).Str("path", c.Path()).Msg("upstream failure")
		return http.StatusBadGateway, handler.ErrorResponse{Error: remoteMessage(err, "upstream service error")}
	}
	if errors.Is(err, domain.ErrUpstream) {
		log.Error().Err(err).Str("path", c.Path()).Msg("upstream unreachable")
		return http.StatusBadGateway, handler.ErrorResponse{Error: "upstream service unavailable"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Error: "internal server error"}
}

// remoteMessage returns the upstream's own message when err carries one.
func remoteMessage(err error, fallback string) string {
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
