package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/orders-console/internal/api/metrics"
	"github.com/99minutos/orders-console/internal/core/domain"
)

// RBAC enforces role-based access control on the user resolved by Protected.
// An empty role set admits every authenticated user.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFrom(c)
			if user == nil {
				metrics.GuardDecisionsTotal.WithLabelValues("protected", "unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}
			if !user.HasRole(allowedRoles...) {
				metrics.GuardDecisionsTotal.WithLabelValues("protected", "forbidden").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// SetUser records the resolved user on the request context.
func SetUser(c echo.Context, u *domain.User) {
	c.Set(ctxUser, u)
}

// UserFrom returns the user resolved by Protected, or nil.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(ctxUser).(*domain.User)
	return u
}
