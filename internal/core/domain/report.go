package domain

import (
	"encoding/json"
	"time"
)

// ReportDateLayout is the format of dateFrom / dateTo and of DailyReport.Date.
const ReportDateLayout = "2006-01-02"

// DailyReport holds the pre-aggregated counts for one day. Read-only.
type DailyReport struct {
	Date             string  `json:"date"`
	TotalOrders      int     `json:"totalOrders"`
	OpenOrders       int     `json:"openOrders"`
	InProgressOrders int     `json:"inProgressOrders"`
	CompletedOrders  int     `json:"completedOrders"`
	CancelledOrders  int     `json:"cancelledOrders"`
	CompletionRate   float64 `json:"completionRate"`
}

// ReportRange bounds a daily report query. Zero values mean "unbounded".
type ReportRange struct {
	From time.Time
	To   time.Time
}

// Validate rejects ranges whose start is after their end.
func (r ReportRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return ErrInvalidInput
	}
	return nil
}

// DecodeDailyReports accepts the shapes the reports endpoint is known to
// answer with: an array, a single report object, or something else (empty).
func DecodeDailyReports(raw json.RawMessage) ([]DailyReport, error) {
	var list []DailyReport
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			list = []DailyReport{}
		}
		return list, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return []DailyReport{}, nil
	}
	if _, ok := probe["date"]; !ok {
		return []DailyReport{}, nil
	}

	var single DailyReport
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []DailyReport{single}, nil
}
