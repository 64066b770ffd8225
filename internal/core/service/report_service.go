package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/internal/core/ports"
)

const routeDailyReports = "ordens/reports/daily"

type ReportService struct {
	api   ports.APIClient
	cache ports.Cache
	log   zerolog.Logger
}

func NewReportService(api ports.APIClient, cache ports.Cache, log zerolog.Logger) *ReportService {
	return &ReportService{api: api, cache: cache, log: log}
}

// Daily returns the pre-aggregated daily reports within r. Whatever shape
// the upstream answers with is normalised to a slice.
func (s *ReportService) Daily(ctx context.Context, caller ports.Caller, r domain.ReportRange) ([]domain.DailyReport, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	q := url.Values{}
	from, to := "", ""
	if !r.From.IsZero() {
		from = r.From.Format(domain.ReportDateLayout)
		q.Set("dateFrom", from)
	}
	if !r.To.IsZero() {
		to = r.To.Format(domain.ReportDateLayout)
		q.Set("dateTo", to)
	}

	return readThrough(ctx, s.cache, s.log, "reports", cacheKey(caller, "reports", from, to), reportsTTL, 1,
		func(ctx context.Context) ([]domain.DailyReport, error) {
			var raw json.RawMessage
			req := ports.APIRequest{Method: http.MethodGet, Route: routeDailyReports, Query: q}
			if err := s.api.Do(ctx, caller.Tokens, req, &raw); err != nil {
				return nil, err
			}
			return domain.DecodeDailyReports(raw)
		})
}
