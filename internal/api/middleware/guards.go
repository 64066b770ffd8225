package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/orders-console/internal/api/metrics"
	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

// Protected admits only requests whose session resolves to a user holding
// one of roles (any role when none are given). The handler does not run, and
// nothing is written, until the check has resolved.
func Protected(accessor ports.SessionAccessor, roles ...domain.Role) echo.MiddlewareFunc {
	rbac := RBAC(roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		allowed := rbac(func(c echo.Context) error {
			metrics.GuardDecisionsTotal.WithLabelValues("protected", "allow").Inc()
			return next(c)
		})
		return func(c echo.Context) error {
			caller := CallerFrom(c)
			if caller.SessionID == "" {
				metrics.GuardDecisionsTotal.WithLabelValues("protected", "unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}
			user, err := accessor.Current(c.Request().Context(), caller)
			if err != nil {
				metrics.GuardDecisionsTotal.WithLabelValues("protected", "unauthenticated").Inc()
				return err
			}
			SetUser(c, user)
			return allowed(c)
		}
	}
}

// Public is for routes only signed-out users should reach, such as login.
// A session with a token that resolves to a user is sent to the dashboard.
// Without a stored token the accessor is not consulted.
func Public(accessor ports.SessionAccessor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := CallerFrom(c)
			ctx := c.Request().Context()
			if token, err := caller.Tokens.Token(ctx); err == nil && token != "" {
				if _, err := accessor.Current(ctx, caller); err == nil {
					metrics.GuardDecisionsTotal.WithLabelValues("public", "redirect").Inc()
					return domain.ErrAlreadySignedIn
				}
			}
			metrics.GuardDecisionsTotal.WithLabelValues("public", "allow").Inc()
			return next(c)
		}
	}
}
