package domain

import (
	"strings"
	"time"
)

// OrderStatus represents the lifecycle state of a service order. Transitions
// are performed by the upstream API; this side only requests them.
type OrderStatus string

const (
	StatusOpen       OrderStatus = "aberta"
	StatusInProgress OrderStatus = "em_andamento"
	StatusCompleted  OrderStatus = "concluida"
	StatusCancelled  OrderStatus = "cancelada"
)

// OrdersPageSize is the fixed number of orders shown per page.
const OrdersPageSize = 10

var statusLabels = map[OrderStatus]string{
	StatusOpen:       "Open",
	StatusInProgress: "In progress",
	StatusCompleted:  "Completed",
	StatusCancelled:  "Cancelled",
}

// Valid reports whether s is one of the closed set of statuses.
func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// StatusAll is the filter value that matches every status.
const StatusAll = "all"

// ValidStatusFilter reports whether s is empty, StatusAll or a known status.
func ValidStatusFilter(s string) bool {
	return s == "" || s == StatusAll || OrderStatus(s).Valid()
}

// Label returns a display name, falling back to the raw value.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Order is a work order as returned by GET ordens.
type Order struct {
	ID          string       `json:"id"`
	Client      string       `json:"cliente"`
	Description string       `json:"descricao"`
	Status      OrderStatus  `json:"status"`
	CreatedAt   time.Time    `json:"data_criacao"`
	UpdatedAt   time.Time    `json:"data_atualizacao"`
	CompletedAt *time.Time   `json:"data_conclusao,omitempty"`
	CreatedByID string       `json:"criado_por_id"`
	AssigneeID  string       `json:"responsavel_id,omitempty"`
	CreatedBy   *UserSummary `json:"criadoPor,omitempty"`
	Assignee    *UserSummary `json:"responsavel,omitempty"`
}

// CanBeManagedBy reports whether u may check the order in or out: admins
// always, agents only when assigned to it.
func (o *Order) CanBeManagedBy(u *User) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleAgent:
		return o.AssigneeID != "" && o.AssigneeID == u.ID
	default:
		return false
	}
}

// NewOrder is the payload for POST ordens.
type NewOrder struct {
	Client      string `json:"cliente"`
	Description string `json:"descricao"`
	CreatedByID string `json:"criado_por_id"`
	AssigneeID  string `json:"responsavel_id,omitempty"`
}

// WithDefaults fills the creator from the current user and, when no assignee
// was chosen, assigns the order to its creator.
func (n NewOrder) WithDefaults(creator *User) NewOrder {
	if creator != nil {
		n.CreatedByID = creator.ID
	}
	if strings.TrimSpace(n.AssigneeID) == "" {
		n.AssigneeID = n.CreatedByID
	}
	return n
}

// OrderFilter narrows a list of orders on this side of the wire.
type OrderFilter struct {
	Search string
	Status string // empty or "all" = no filter
	Page   int    // 1-based
}

// OrderPage is one page of filtered orders.
type OrderPage struct {
	Items      []Order
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// FilterOrders applies search and status filters, then slices out the requested page.
func FilterOrders(orders []Order, f OrderFilter) OrderPage {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	status := strings.TrimSpace(f.Status)

	matched := make([]Order, 0, len(orders))
	for _, o := range orders {
		if search != "" &&
			!strings.Contains(strings.ToLower(o.ID), search) &&
			!strings.Contains(strings.ToLower(o.Client), search) &&
			!strings.Contains(strings.ToLower(o.Description), search) {
			continue
		}
		if status != "" && status != StatusAll && string(o.Status) != status {
			continue
		}
		matched = append(matched, o)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	total := len(matched)
	totalPages := (total + OrdersPageSize - 1) / OrdersPageSize

	start := (page - 1) * OrdersPageSize
	if start > total {
		start = total
	}
	end := start + OrdersPageSize
	if end > total {
		end = total
	}

	return OrderPage{
		Items:      matched[start:end],
		Total:      total,
		Page:       page,
		PageSize:   OrdersPageSize,
		TotalPages: totalPages,
	}
}

// FindOrder returns the order with id, or ErrOrderNotFound.
func FindOrder(orders []Order, id string) (*Order, error) {
	for i := range orders {
		if orders[i].ID == id {
			o := orders[i]
			return &o, nil
		}
	}
	return nil, ErrOrderNotFound
}
