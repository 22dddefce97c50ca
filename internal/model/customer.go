package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is keyed by phone number and only mutated by checkout.
type Customer struct {
	ID            int64     `json:"id" db:"id"`
	PhoneNumber   string    `json:"phone_number" db:"phone_number"`
	OrderCount    int       `json:"order_count" db:"order_count"`
	LastOrderDate time.Time `json:"last_order_date" db:"last_order_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerPage is a page of customers.
type CustomerPage struct {
	Customers []Customer `json:"customers"`
	Total     int        `json:"total"`
}

// CustomerDetail is the admin view of a single customer.
type CustomerDetail struct {
	Customer     Customer         `json:"customer"`
	CustomerName *string          `json:"customer_name,omitempty"`
	Orders       []OrderWithItems `json:"orders"`
	TotalOrders  int              `json:"total_orders"`
	TotalSpent   decimal.Decimal  `json:"total_spent"`
}
