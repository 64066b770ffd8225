// Package api assembles the console HTTP server.
//
// @title        Orders Console API
// @version      1.0
// @description  Session-backed console over the service-order REST API.
// @BasePath     /
package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/orders-console/docs"
	"github.com/99minutos/orders-console/internal/api/handler"
	"github.com/99minutos/orders-console/internal/api/middleware"
	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

// Deps are the collaborators the router wires into handlers and guards.
type Deps struct {
	Log      zerolog.Logger
	Sessions *middleware.Sessions
	Accessor ports.SessionAccessor
	Auth     ports.AuthService
	Orders   ports.OrderService
	Reports  ports.ReportService
	Users    ports.UserService
	// Health lists the backends checked by the readiness probe.
	Health map[string]handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))

	// --- Probes and tooling (no session) ---
	healthHandler := handler.NewHealthHandler(d.Health)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", d.Sessions.Middleware())

	protected := middleware.Protected(d.Accessor)
	managers := middleware.Protected(d.Accessor, domain.RoleAdmin, domain.RoleAgent)
	admins := middleware.Protected(d.Accessor, domain.RoleAdmin)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Sessions)
	api.POST("/auth/login", authHandler.Login, middleware.Public(d.Accessor))
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.Me, protected)

	// --- Dashboard ---
	dashboardHandler := handler.NewDashboardHandler(d.Orders, d.Reports)
	api.GET("/dashboard", dashboardHandler.Get, protected)

	// --- Orders ---
	orderHandler := handler.NewOrderHandler(d.Orders)
	api.GET("/orders", orderHandler.List, protected)
	api.GET("/orders/:id", orderHandler.Get, protected)
	api.POST("/orders", orderHandler.Create, managers)
	api.POST("/orders/:id/check-in", orderHandler.CheckIn, managers)
	api.POST("/orders/:id/check-out", orderHandler.CheckOut, managers)

	// --- Reports ---
	reportHandler := handler.NewReportHandler(d.Reports)
	api.GET("/reports/daily", reportHandler.Daily, protected)

	// --- Users ---
	userHandler := handler.NewUserHandler(d.Users)
	api.GET("/users", userHandler.List, admins)
	api.GET("/users/technicians", userHandler.Technicians, protected)

	return e
}
