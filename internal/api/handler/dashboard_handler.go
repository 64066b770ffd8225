package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

// DashboardHandler serves the landing page data: the first page of orders
// and today's report, fetched concurrently.
type DashboardHandler struct {
	orders  ports.OrderService
	reports ports.ReportService
	now     func() time.Time
}

func NewDashboardHandler(orders ports.OrderService, reports ports.ReportService) *DashboardHandler {
	return &DashboardHandler{orders: orders, reports: reports, now: time.Now}
}

// Get returns the dashboard of the signed-in user.
//
// @Summary      Dashboard
// @Tags         dashboard
// @Produce      json
// @Param        search  query     string  false  "Matches id, client or description"
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "1-based page number"
// @Success      200     {object}  dashboardResponse
// @Failure      401     {object}  ErrorResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var q listOrdersQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	caller := ctxCaller(c)
	now := h.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var (
		page    *domain.OrderPage
		reports []domain.DailyReport
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		page, err = h.orders.Page(ctx, caller, domain.OrderFilter{Search: q.Search, Status: q.Status, Page: q.Page})
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = h.reports.Daily(ctx, caller, domain.ReportRange{From: today, To: today})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	resp := dashboardResponse{User: user, Orders: toPageResponse(page), AsOf: now.UTC()}
	day := today.Format(domain.ReportDateLayout)
	for i := range reports {
		if strings.HasPrefix(reports[i].Date, day) {
			resp.Today = &reports[i]
			break
		}
	}
	return c.JSON(http.StatusOK, resp)
}
