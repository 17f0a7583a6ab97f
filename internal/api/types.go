package api

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled}

var statusLabels = map[OrderStatus]string{
	StatusPending:   "Pendiente",
	StatusPreparing: "En preparación",
	StatusReady:     "Listo",
	StatusDelivered: "Entregado",
	StatusCancelled: "Cancelado",
}

// Label returns the operator-facing name of the status.
func (s OrderStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// User is the authenticated staff member or an order's customer.
type User struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	NationalID string `json:"nationalId"`
}

// Pagination describes one page of a paginated listing.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// OrderProduct is the product embedded in an order line.
type OrderProduct struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Photo string          `json:"photo,omitempty"`
}

// OrderSide is the side dish chosen for an order line.
type OrderSide struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID        int64           `json:"id"`
	Product   OrderProduct    `json:"product"`
	Side      *OrderSide      `json:"side,omitempty"`
	Quantity  int             `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Order is a customer order as listed by /orders.
type Order struct {
	ID         int64           `json:"id"`
	User       User            `json:"user"`
	Status     OrderStatus     `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Shift      string          `json:"shift"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt"`
	Items      []OrderItem     `json:"orderItems"`
}

// OrderPage is one page of orders.
type OrderPage struct {
	Orders     []Order
	Pagination Pagination
}

// OrderQuery filters /orders. Empty fields are omitted.
type OrderQuery struct {
	OrderID    string
	NationalID string
	UserName   string
	Search     string
	Status     OrderStatus
	StartDate  string
	EndDate    string
	Shift      string
	Page       int
	Limit      int
}

// Values encodes the query parameters understood by /orders.
func (q OrderQuery) Values() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			values.Set(key, value)
		}
	}
	set("orderId", q.OrderID)
	set("nationalId", q.NationalID)
	set("userName", q.UserName)
	set("search", q.Search)
	set("status", string(q.Status))
	set("startDate", q.StartDate)
	set("endDate", q.EndDate)
	set("shift", q.Shift)
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

// PreparedDish is a line of the kitchen's shift summary.
type PreparedDish struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Photo              string `json:"photo,omitempty"`
	TotalToPrepare     int    `json:"totalToPrepare"`
	PreparedQuantity   int    `json:"preparedQuantity"`
	RemainingToPrepare int    `json:"remainingToPrepare"`
}

// ShiftSummary aggregates what the kitchen must prepare for a shift.
type ShiftSummary struct {
	Shift           string         `json:"shift"`
	MainDishes      []PreparedDish `json:"mainDishes"`
	Sides           []PreparedDish `json:"sides"`
	TotalMainDishes int            `json:"totalMainDishes"`
	TotalSides      int            `json:"totalSides"`
}

// ProductType distinguishes dishes from drinks.
type ProductType string

const (
	ProductFood     ProductType = "FOOD"
	ProductBeverage ProductType = "BEVERAGE"
)

// SideNames holds the side dishes offered with a product. The API returns
// either plain names or side objects; both decode to names.
type SideNames []string

// UnmarshalJSON accepts ["Puré"] as well as [{"id":1,"name":"Puré"}].
func (s *SideNames) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	names := make(SideNames, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			names = append(names, name)
			continue
		}
		var obj OrderSide
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		names = append(names, obj.Name)
	}
	*s = names
	return nil
}

// Product is a catalog entry.
type Product struct {
	ID                   int64           `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	Photo                string          `json:"photo,omitempty"`
	Price                decimal.Decimal `json:"price"`
	Restrictions         []string        `json:"restrictions"`
	Sides                SideNames       `json:"sides"`
	AllowsClarifications bool            `json:"allowsClarifications"`
	Type                 ProductType     `json:"type"`
	Stock                int             `json:"stock"`
	CreatedAt            string          `json:"createdAt"`
	UpdatedAt            string          `json:"updatedAt"`
}

// Side is a side dish that can be attached to products.
type Side struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// SideUpdate is a partial update of a side. Nil fields are left unchanged.
type SideUpdate struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// StatsSummary holds the headline numbers for a date range.
type StatsSummary struct {
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	TotalOrders     int             `json:"totalOrders"`
	CancelledOrders int             `json:"cancelledOrders"`
	DeliveredOrders int             `json:"deliveredOrders"`
}

// StatsUser is the customer embedded in a stats order.
type StatsUser struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	NationalID string `json:"national_id"`
}

// StatsItemSide links an order line to its side dish.
type StatsItemSide struct {
	ID     int64     `json:"id"`
	SideID int64     `json:"sideId"`
	Side   OrderSide `json:"side"`
}

// StatsItem is one order line in the stats payload.
type StatsItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Notes     string          `json:"notes,omitempty"`
	Product   OrderProduct    `json:"product"`
	Side      *StatsItemSide  `json:"orderItemSide,omitempty"`
}

// StatsOrder is an order as returned by /stats.
type StatsOrder struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	Status     OrderStatus     `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	PickUpTime string          `json:"pickUpTime"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt"`
	User       StatsUser       `json:"user"`
	Items      []StatsItem     `json:"orderItems"`
}

// Stats is the /stats payload.
type Stats struct {
	Summary    StatsSummary `json:"summary"`
	Orders     []StatsOrder `json:"orders"`
	Pagination Pagination   `json:"pagination"`
}

// StatsQuery selects the date range for /stats. Dates are YYYY-MM-DD.
type StatsQuery struct {
	StartDate string
	EndDate   string
}

// LoginRequest is the /auth/login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the tokens issued by /auth/login.
type LoginResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IDToken      string `json:"idToken"`
	Data         struct {
		Email     string `json:"email"`
		ExpiresIn int    `json:"expiresIn"`
	} `json:"data"`
}
