package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/orders-console/internal/api/middleware"
	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	loginFn  func(ctx context.Context, caller ports.Caller, creds domain.Credentials) (*domain.User, error)
	logoutFn func(ctx context.Context, caller ports.Caller) error
}

func (s *stubAuthService) Login(ctx context.Context, caller ports.Caller, creds domain.Credentials) (*domain.User, error) {
	return s.loginFn(ctx, caller, creds)
}

func (s *stubAuthService) Logout(ctx context.Context, caller ports.Caller) error {
	return s.logoutFn(ctx, caller)
}

func (s *stubAuthService) Me(context.Context, ports.Caller) (*domain.User, error) {
	return nil, domain.ErrUnauthenticated
}

type stubSessions struct {
	started, ended int
}

func (s *stubSessions) Start(c echo.Context) (ports.Caller, error) {
	s.started++
	caller := ports.Caller{SessionID: "sid-new"}
	middleware.SetCaller(c, caller)
	return caller, nil
}

func (s *stubSessions) End(echo.Context) error {
	s.ended++
	return nil
}

type stubOrderService struct {
	pageFn       func(ctx context.Context, filter domain.OrderFilter) (*domain.OrderPage, error)
	getFn        func(ctx context.Context, id string) (*domain.Order, error)
	createFn     func(ctx context.Context, creator *domain.User, in domain.NewOrder) (*domain.Order, error)
	transitionFn func(ctx context.Context, kind, id string) error
}

func (s *stubOrderService) List(context.Context, ports.Caller) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubOrderService) Page(ctx context.Context, _ ports.Caller, filter domain.OrderFilter) (*domain.OrderPage, error) {
	return s.pageFn(ctx, filter)
}

func (s *stubOrderService) Get(ctx context.Context, _ ports.Caller, id string) (*domain.Order, error) {
	return s.getFn(ctx, id)
}

func (s *stubOrderService) Create(ctx context.Context, _ ports.Caller, creator *domain.User, in domain.NewOrder) (*domain.Order, error) {
	return s.createFn(ctx, creator, in)
}

func (s *stubOrderService) CheckIn(ctx context.Context, _ ports.Caller, id string) error {
	return s.transitionFn(ctx, "check-in", id)
}

func (s *stubOrderService) CheckOut(ctx context.Context, _ ports.Caller, id string) error {
	return s.transitionFn(ctx, "check-out", id)
}

type stubReportService struct {
	dailyFn func(ctx context.Context, r domain.ReportRange) ([]domain.DailyReport, error)
}

func (s *stubReportService) Daily(ctx context.Context, _ ports.Caller, r domain.ReportRange) ([]domain.DailyReport, error) {
	return s.dailyFn(ctx, r)
}

type stubUserService struct {
	users []domain.User
}

func (s *stubUserService) List(context.Context, ports.Caller) ([]domain.User, error) {
	return s.users, nil
}

func (s *stubUserService) Technicians(context.Context, ports.Caller) ([]domain.User, error) {
	var out []domain.User
	for _, u := range s.users {
		if u.IsTechnician() {
			out = append(out, u)
		}
	}
	return out, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newContext(e *echo.Echo, method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	var req = httptest.NewRequest(method, target, nil)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetCaller(c, ports.Caller{SessionID: "sid-1"})
	if user != nil {
		middleware.SetUser(c, user)
	}
	return c, rec
}

var (
	admin  = &domain.User{ID: "u-admin", Name: "Ana", Role: domain.RoleAdmin, Active: true}
	agent  = &domain.User{ID: "u-agent", Name: "Bruno", Role: domain.RoleAgent, Active: true}
	viewer = &domain.User{ID: "u-viewer", Name: "Caio", Role: domain.RoleViewer, Active: true}
)
