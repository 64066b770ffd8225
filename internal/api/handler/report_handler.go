package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Daily returns the daily aggregates between dateFrom and dateTo.
//
// @Summary      Daily reports
// @Tags         reports
// @Produce      json
// @Param        dateFrom  query     string  false  "YYYY-MM-DD"
// @Param        dateTo    query     string  false  "YYYY-MM-DD"
// @Success      200       {object}  dailyReportResponse
// @Failure      401       {object}  ErrorResponse
// @Failure      422       {object}  ErrorResponse
// @Router       /api/reports/daily [get]
func (h *ReportHandler) Daily(c echo.Context) error {
	var q dailyReportQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	r, err := q.toRange()
	if err != nil {
		return err
	}

	reports, err := h.service.Daily(c.Request().Context(), ctxCaller(c), r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dailyReportResponse{Reports: reports})
}

func (q dailyReportQuery) toRange() (domain.ReportRange, error) {
	var (
		r   domain.ReportRange
		err error
	)
	if q.DateFrom != "" {
		if r.From, err = time.Parse(domain.ReportDateLayout, q.DateFrom); err != nil {
			return r, &ValidationError{Fields: map[string]string{"dateFrom": "dateFrom must be a date formatted as " + domain.ReportDateLayout}}
		}
	}
	if q.DateTo != "" {
		if r.To, err = time.Parse(domain.ReportDateLayout, q.DateTo); err != nil {
			return r, &ValidationError{Fields: map[string]string{"dateTo": "dateTo must be a date formatted as " + domain.ReportDateLayout}}
		}
	}
	if r.Validate() != nil {
		return r, &ValidationError{Fields: map[string]string{"dateFrom": "dateFrom must not be after dateTo"}}
	}
	return r, nil
}
