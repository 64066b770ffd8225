package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/orders-console/internal/api/middleware"
	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

// ctxCaller returns the session-bound caller of the request.
func ctxCaller(c echo.Context) ports.Caller {
	return middleware.CallerFrom(c)
}

// ctxUser returns the user resolved by the Protected guard. Its absence means
// the route was registered without the guard; fail closed.
func ctxUser(c echo.Context) (*domain.User, error) {
	u := middleware.UserFrom(c)
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}

// bindAndValidate binds the request into req and runs the echo validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
