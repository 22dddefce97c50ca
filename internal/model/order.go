package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a placed customer order. Customer fields are a snapshot
// taken at checkout and do not follow later customer edits.
type Order struct {
	ID             int64           `json:"id" db:"id"`
	OrderNumber    string          `json:"order_number" db:"order_number"`
	CustomerID     *int64          `json:"customer_id,omitempty" db:"customer_id"`
	CustomerName   string          `json:"customer_name" db:"customer_name"`
	CustomerEmail  *string         `json:"customer_email,omitempty" db:"customer_email"`
	CustomerPhone  string          `json:"customer_phone" db:"customer_phone"`
	Status         string          `json:"status" db:"status"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	PromoCode      *string         `json:"promo_code,omitempty" db:"promo_code"`
	Notes          *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem is an immutable line of an order with the product denormalised.
type OrderItem struct {
	ID           int64           `json:"id,omitempty" db:"id"`
	OrderID      int64           `json:"order_id,omitempty" db:"order_id"`
	ProductID    int64           `json:"product_id" db:"product_id"`
	ProductName  string          `json:"product_name" db:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price" db:"product_price"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal" db:"subtotal"`
	CreatedAt    time.Time       `json:"created_at,omitempty" db:"created_at"`
}

// CreateOrderRequest represents the checkout payload.
type CreateOrderRequest struct {
	CustomerName  string                   `json:"customer_name"`
	CustomerPhone string                   `json:"customer_phone"`
	CustomerEmail *string                  `json:"customer_email,omitempty"`
	Items         []CreateOrderItemRequest `json:"items"`
	PromoCode     *string                  `json:"promo_code,omitempty"`
}

// CreateOrderItemRequest represents a single line in the checkout payload.
type CreateOrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Normalise trims free-text fields and drops empty optionals.
func (r *CreateOrderRequest) Normalise() {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
	r.CustomerEmail = trimOptional(r.CustomerEmail)
	r.PromoCode = trimOptional(r.PromoCode)
}

// MaxItemQuantity bounds a single order line.
const MaxItemQuantity = 1000

// MaxAmount is the largest money value the NUMERIC(12, 2) columns hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Validate checks the request before any transaction is opened.
func (r *CreateOrderRequest) Validate() error {
	if r == nil {
		return ValidationError("Missing required fields")
	}
	if r.CustomerName == "" || r.CustomerPhone == "" || len(r.Items) == 0 {
		return ErrValidation
	}
	for i, item := range r.Items {
		if item.ProductID <= 0 {
			return ValidationError("Item %d: product_id is required", i)
		}
		if item.Quantity <= 0 {
			return ValidationError("Item %d: quantity must be greater than zero", i)
		}
		if item.Quantity > MaxItemQuantity {
			return ValidationError("Item %d: quantity cannot exceed %d", i, MaxItemQuantity)
		}
	}
	return nil
}

// OrderReceipt is returned after a successful checkout.
type OrderReceipt struct {
	Order       *Order      `json:"order"`
	Items       []OrderItem `json:"items"`
	WhatsAppURL string      `json:"whatsapp_url,omitempty"`
}

// OrderWithItems is an order together with its lines.
type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status    string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// Pagination describes a page of results.
type Pagination struct {
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	Limit       int `json:"limit"`
}

// NewPagination computes page counts for total rows.
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		Total:       total,
		TotalPages:  pages,
		CurrentPage: page,
		Limit:       limit,
	}
}

// OrderPage is a page of orders.
type OrderPage struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// OrderStatusUpdate is the admin payload for moving an order along.
type OrderStatusUpdate struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// DashboardStats summarises the store for the admin dashboard.
type DashboardStats struct {
	TotalProducts    int             `json:"totalProducts"`
	LowStockProducts int             `json:"lowStockProducts"`
	TotalOrders      int             `json:"totalOrders"`
	PendingOrders    int             `json:"pendingOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TodayRevenue     decimal.Decimal `json:"todayRevenue"`
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
