package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/orders-console/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List returns every user. Admin only.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  usersResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context(), ctxCaller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usersResponse{Users: users})
}

// Technicians returns the active agents orders can be assigned to.
//
// @Summary      List technicians
// @Tags         users
// @Produce      json
// @Success      200  {object}  usersResponse
// @Router       /api/users/technicians [get]
func (h *UserHandler) Technicians(c echo.Context) error {
	users, err := h.service.Technicians(c.Request().Context(), ctxCaller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usersResponse{Users: users})
}
