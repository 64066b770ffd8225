package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

// SessionBinder opens and closes browser sessions.
type SessionBinder interface {
	Start(c echo.Context) (ports.Caller, error)
	End(c echo.Context) error
}

type AuthHandler struct {
	authService ports.AuthService
	sessions    SessionBinder
}

func NewAuthHandler(authService ports.AuthService, sessions SessionBinder) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

// Login authenticates against the upstream and binds the token to a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse  "Already signed in"
// @Failure      422   {object}  ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	caller, err := h.sessions.Start(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Login(c.Request().Context(), caller, domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		User:     user,
		Redirect: "/dashboard",
		Notification: notification{
			Title:       "Welcome back",
			Description: "Signed in as " + user.Name,
		},
	})
}

// Logout ends the session locally even when the upstream logout fails.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  logoutResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	// Failures are logged by the service; ending the session below deletes
	// the token with it.
	_ = h.authService.Logout(c.Request().Context(), ctxCaller(c))
	if err := h.sessions.End(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logoutResponse{
		Redirect:     "/login",
		Notification: notification{Title: "Signed out"},
	})
}

// Me returns the signed-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}
