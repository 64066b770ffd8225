package handler

import (
	"time"

	"github.com/99minutos/orders-console/internal/core/domain"
)

// ErrorResponse is the standard error envelope returned on all 4xx/5xx
// responses. Redirect tells the client where to navigate next.
type ErrorResponse struct {
	Error    string            `json:"error"`
	Redirect string            `json:"redirect,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// notification is the toast shown after a successful mutation.
type notification struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type loginResponse struct {
	User         *domain.User `json:"user"`
	Redirect     string       `json:"redirect"`
	Notification notification `json:"notification"`
}

type logoutResponse struct {
	Redirect     string       `json:"redirect"`
	Notification notification `json:"notification"`
}

// --- Orders ---

type listOrdersQuery struct {
	Search string `query:"search"`
	Status string `query:"status" validate:"omitempty,order_status"`
	Page   int    `query:"page"   validate:"omitempty,min=1"`
}

type orderPageResponse struct {
	Items      []domain.Order `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

type orderDetailResponse struct {
	Order       *domain.Order          `json:"order"`
	StatusLabel string                 `json:"status_label"`
	Timeline    []domain.TimelineEvent `json:"timeline"`
	CanManage   bool                   `json:"can_manage"`
}

type createOrderRequest struct {
	Client      string `json:"cliente"        validate:"required,max=200"`
	Description string `json:"descricao"      validate:"required,max=2000"`
	AssigneeID  string `json:"responsavel_id"`
}

type orderMutationResponse struct {
	Order        *domain.Order `json:"order,omitempty"`
	Notification notification  `json:"notification"`
}

// --- Reports ---

type dailyReportQuery struct {
	DateFrom string `query:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `query:"dateTo"   validate:"omitempty,datetime=2006-01-02"`
}

type dailyReportResponse struct {
	Reports []domain.DailyReport `json:"reports"`
}

// --- Users ---

type usersResponse struct {
	Users []domain.User `json:"users"`
}

// --- Dashboard ---

type dashboardResponse struct {
	User   *domain.User        `json:"user"`
	Orders orderPageResponse   `json:"orders"`
	Today  *domain.DailyReport `json:"today"`
	AsOf   time.Time           `json:"as_of"`
}

func toPageResponse(p *domain.OrderPage) orderPageResponse {
	items := p.Items
	if items == nil {
		items = []domain.Order{}
	}
	return orderPageResponse{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}
