package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

const (
	routeOrders   = "ordens"
	routeCheckIn  = "ordens/:id/check-in"
	routeCheckOut = "ordens/:id/check-out"
)

type OrderService struct {
	api   ports.APIClient
	cache ports.Cache
	log   zerolog.Logger
}

func NewOrderService(api ports.APIClient, cache ports.Cache, log zerolog.Logger) *OrderService {
	return &OrderService{api: api, cache: cache, log: log}
}

// List returns every order, cached for ordersTTL and retried once.
func (s *OrderService) List(ctx context.Context, caller ports.Caller) ([]domain.Order, error) {
	return readThrough(ctx, s.cache, s.log, "orders", cacheKey(caller, "orders"), ordersTTL, 1,
		func(ctx context.Context) ([]domain.Order, error) {
			orders := []domain.Order{}
			if err := s.api.Do(ctx, caller.Tokens, ports.Get(routeOrders), &orders); err != nil {
				return nil, err
			}
			return orders, nil
		})
}

func (s *OrderService) Page(ctx context.Context, caller ports.Caller, filter domain.OrderFilter) (*domain.OrderPage, error) {
	orders, err := s.List(ctx, caller)
	if err != nil {
		return nil, err
	}
	page := domain.FilterOrders(orders, filter)
	return &page, nil
}

// Get looks the order up in the list; there is no single-order endpoint.
func (s *OrderService) Get(ctx context.Context, caller ports.Caller, id string) (*domain.Order, error) {
	orders, err := s.List(ctx, caller)
	if err != nil {
		return nil, err
	}
	return domain.FindOrder(orders, id)
}

// Create posts a new order on behalf of creator. An unset assignee defaults
// to the creator.
func (s *OrderService) Create(ctx context.Context, caller ports.Caller, creator *domain.User, in domain.NewOrder) (*domain.Order, error) {
	if creator == nil {
		return nil, domain.ErrUnauthenticated
	}
	in = in.WithDefaults(creator)
	if strings.TrimSpace(in.Client) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: client and description are required", domain.ErrInvalidInput)
	}

	var created domain.Order
	if err := s.api.Do(ctx, caller.Tokens, ports.Post(routeOrders, in), &created); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.log, caller, "orders", "reports")

	s.log.Info().Str("order_id", created.ID).Str("assignee", in.AssigneeID).Msg("order created")
	return &created, nil
}

func (s *OrderService) CheckIn(ctx context.Context, caller ports.Caller, id string) error {
	return s.transition(ctx, caller, routeCheckIn, id)
}

func (s *OrderService) CheckOut(ctx context.Context, caller ports.Caller, id string) error {
	return s.transition(ctx, caller, routeCheckOut, id)
}

func (s *OrderService) transition(ctx context.Context, caller ports.Caller, route, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: order id is required", domain.ErrInvalidInput)
	}
	req := ports.APIRequest{Method: http.MethodPost, Route: route, Params: map[string]string{"id": id}}
	if err := s.api.Do(ctx, caller.Tokens, req, nil); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.log, caller, "orders", "reports")

	s.log.Info().Str("order_id", id).Str("route", route).Msg("order transitioned")
	return nil
}
