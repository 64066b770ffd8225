package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// List returns one page of orders matching the search and status filters.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        search  query     string  false  "Matches id, client or description"
// @Param        status  query     string  false  "all, aberta, em_andamento, concluida, cancelada"
// @Param        page    query     int     false  "1-based page number"
// @Success      200     {object}  orderPageResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      422     {object}  ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	var q listOrdersQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	page, err := h.service.Page(c.Request().Context(), ctxCaller(c), domain.OrderFilter{
		Search: q.Search,
		Status: q.Status,
		Page:   q.Page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(page))
}

// Get returns one order with its derived timeline.
//
// @Summary      Order detail
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  orderDetailResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	order, err := h.service.Get(c.Request().Context(), ctxCaller(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orderDetailResponse{
		Order:       order,
		StatusLabel: order.Status.Label(),
		Timeline:    domain.BuildTimeline(order),
		CanManage:   order.CanBeManagedBy(user),
	})
}

// Create opens a new order. Without an assignee the order goes to its creator.
//
// @Summary      Create order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      createOrderRequest  true  "Order"
// @Success      201   {object}  orderMutationResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.service.Create(c.Request().Context(), ctxCaller(c), user, domain.NewOrder{
		Client:      req.Client,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, orderMutationResponse{
		Order: order,
		Notification: notification{
			Title:       "Order created",
			Description: "Order for " + order.Client + " was opened.",
		},
	})
}

// CheckIn moves an order into progress.
//
// @Summary      Check in
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  orderMutationResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/orders/{id}/check-in [post]
func (h *OrderHandler) CheckIn(c echo.Context) error {
	return h.transition(c, h.service.CheckIn, notification{
		Title:       "Check-in done",
		Description: "The order is now in progress.",
	})
}

// CheckOut completes an order.
//
// @Summary      Check out
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  orderMutationResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/orders/{id}/check-out [post]
func (h *OrderHandler) CheckOut(c echo.Context) error {
	return h.transition(c, h.service.CheckOut, notification{
		Title:       "Check-out done",
		Description: "The order was completed.",
	})
}

type transitionFunc func(ctx context.Context, caller ports.Caller, id string) error

func (h *OrderHandler) transition(c echo.Context, fn transitionFunc, done notification) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	caller := ctxCaller(c)
	id := c.Param("id")

	// Agents may only move orders assigned to them.
	order, err := h.service.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if !order.CanBeManagedBy(user) {
		return fmt.Errorf("%w: order is assigned to someone else", domain.ErrForbidden)
	}

	if err := fn(ctx, caller, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderMutationResponse{Notification: done})
}
