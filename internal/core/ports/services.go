package ports

import (
	"context"

	"github.com/99minutos/orders-console/internal/core/domain"
)

// Caller identifies whose session a query or mutation runs for. SessionID
// scopes cached data; Tokens authenticates upstream calls.
type Caller struct {
	SessionID string
	Tokens    TokenStore
}

// AuthService covers login, logout and the current-user query.
type AuthService interface {
	Login(ctx context.Context, caller Caller, creds domain.Credentials) (*domain.User, error)
	Logout(ctx context.Context, caller Caller) error
	Me(ctx context.Context, caller Caller) (*domain.User, error)
}

// SessionAccessor is the single source of truth for "who is logged in".
type SessionAccessor interface {
	Current(ctx context.Context, caller Caller) (*domain.User, error)
	Forget(ctx context.Context, caller Caller) error
}

// OrderService wraps the order endpoints.
type OrderService interface {
	List(ctx context.Context, caller Caller) ([]domain.Order, error)
	Page(ctx context.Context, caller Caller, filter domain.OrderFilter) (*domain.OrderPage, error)
	Get(ctx context.Context, caller Caller, id string) (*domain.Order, error)
	Create(ctx context.Context, caller Caller, creator *domain.User, in domain.NewOrder) (*domain.Order, error)
	CheckIn(ctx context.Context, caller Caller, id string) error
	CheckOut(ctx context.Context, caller Caller, id string) error
}

// ReportService wraps the daily reports endpoint.
type ReportService interface {
	Daily(ctx context.Context, caller Caller, r domain.ReportRange) ([]domain.DailyReport, error)
}

// UserService wraps the users endpoint.
type UserService interface {
	List(ctx context.Context, caller Caller) ([]domain.User, error)
	Technicians(ctx context.Context, caller Caller) ([]domain.User, error)
}
