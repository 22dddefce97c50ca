package repository

import (
	"context"
	"time"

	"storefront/internal/model"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves active products matching the filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// Count returns the number of active products matching the filter.
	Count(ctx context.Context, filter model.ProductFilter) (int, error)

	// GetByID retrieves a single active product. Returns nil when not found.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetBySlug retrieves a single active product by slug. Returns nil when not found.
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, in *model.ProductInput) (*model.Product, error)

	// Update overwrites a product. Returns nil when not found.
	Update(ctx context.Context, id int64, in *model.ProductInput) (*model.Product, error)

	// Deactivate hides a product from the storefront.
	Deactivate(ctx context.Context, id int64) (bool, error)

	// AdjustStock applies an add, subtract or set operation. Returns nil when not found.
	AdjustStock(ctx context.Context, id int64, quantity int, operation string) (*model.Product, error)

	// ListLowStock retrieves active products at or below their stock threshold.
	ListLowStock(ctx context.Context) ([]model.Product, error)

	// ListStock retrieves a page of all products, inactive ones included,
	// and the total matching the search.
	ListStock(ctx context.Context, q model.ListQuery) ([]model.Product, int, error)
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)

	// ListPage retrieves a page of categories and the total matching the search.
	ListPage(ctx context.Context, q model.ListQuery) ([]model.Category, int, error)

	Create(ctx context.Context, in *model.CategoryInput) (*model.Category, error)
	Update(ctx context.Context, id int64, in *model.CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// OrderRepository defines read and admin operations on placed orders.
// Orders are only created through the UnitOfWork.
type OrderRepository interface {
	// List retrieves a page of orders and the total matching the filter.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error)

	// GetByID retrieves an order along with its items. Returns nil when not found.
	GetByID(ctx context.Context, id int64) (*model.OrderWithItems, error)

	// ListByCustomer retrieves a customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID int64) ([]model.OrderWithItems, error)

	// UpdateStatus moves an order to a new status. Returns nil when not found.
	UpdateStatus(ctx context.Context, id int64, status string, notes *string) (*model.Order, error)

	// Stats computes the dashboard counters.
	Stats(ctx context.Context) (*model.DashboardStats, error)
}

// CustomerRepository defines read operations on customers.
type CustomerRepository interface {
	List(ctx context.Context, search string, limit, offset int) ([]model.Customer, int, error)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
}

// PromoRepository defines operations on promo codes outside checkout.
type PromoRepository interface {
	// GetByCode looks a code up case-insensitively. Returns nil when not found.
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)

	// ListActive retrieves promo codes usable at the given time.
	ListActive(ctx context.Context, now time.Time) ([]model.PromoCode, error)

	Create(ctx context.Context, in *model.PromoCodeInput) (*model.PromoCode, error)
	SetActive(ctx context.Context, id int64, active bool) (bool, error)
}

// SettingsRepository stores the single store settings row.
type SettingsRepository interface {
	// Get returns the latest settings row. Returns nil when none exists.
	Get(ctx context.Context) (*model.StoreSettings, error)

	// Update applies a partial update to the latest row. Returns nil when none exists.
	Update(ctx context.Context, upd *model.StoreSettingsUpdate) (*model.StoreSettings, error)

	// CreateDefault inserts the default settings row.
	CreateDefault(ctx context.Context) (*model.StoreSettings, error)
}

// UserRepository stores back-office accounts.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	Create(ctx context.Context, user *model.AdminUser) error
}

// CheckoutStore is the set of reads and writes available inside the order
// transaction. Every call participates in the same all-or-nothing scope.
type CheckoutStore interface {
	// LockProduct reads an active product and locks its row. Returns nil when
	// the product is missing or inactive.
	LockProduct(ctx context.Context, id int64) (*model.Product, error)

	// DecrementStock takes quantity units off a product.
	DecrementStock(ctx context.Context, id int64, quantity int) error

	// LockPromoByCode reads a promo case-insensitively and locks its row.
	// Returns nil when not found.
	LockPromoByCode(ctx context.Context, code string) (*model.PromoCode, error)

	// IncrementPromoUsage bumps a promo's usage counter.
	IncrementPromoUsage(ctx context.Context, id int64) error

	// LockCustomer returns the customer with the phone number, creating it
	// with an order count of zero when missing, and locks its row.
	LockCustomer(ctx context.Context, phone string, at time.Time) (*model.Customer, error)

	// RecordCustomerOrder increments the order count and sets the last order date.
	RecordCustomerOrder(ctx context.Context, id int64, at time.Time) (*model.Customer, error)

	// InsertOrder persists the order and fills in its ID.
	InsertOrder(ctx context.Context, order *model.Order) error

	// InsertOrderItems persists the lines of an order and fills in their IDs.
	InsertOrderItems(ctx context.Context, orderID int64, items []model.OrderItem) error
}

// UnitOfWork runs fn inside one transaction. The transaction commits when
// fn returns nil and rolls back otherwise, leaving no partial writes.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ctx context.Context, store CheckoutStore) error) error
}
