package service

import (
	"context"
	"io"

	"storefront/internal/auth"
	"storefront/internal/model"
)

// ProductService defines catalog operations on products.
type ProductService interface {
	// List retrieves active products matching the filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// ListPage retrieves one page of active products with the total count.
	ListPage(ctx context.Context, filter model.ProductFilter, page, limit int) (*model.ProductPage, error)

	// GetByID retrieves a single active product.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetBySlug retrieves a single active product by slug.
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)

	Create(ctx context.Context, in *model.ProductInput) (*model.Product, error)
	Update(ctx context.Context, id int64, in *model.ProductInput) (*model.Product, error)

	// Delete hides a product from the storefront.
	Delete(ctx context.Context, id int64) error

	// AdjustStock changes stock outside checkout.
	AdjustStock(ctx context.Context, adj *model.StockAdjustment) (*model.Product, error)

	// ListLowStock retrieves products that need restocking.
	ListLowStock(ctx context.Context) ([]model.Product, error)

	// ListStock retrieves one page of all products for stock management.
	ListStock(ctx context.Context, q model.ListQuery) (*model.StockPage, error)

	// UploadImage stores a product image and returns its URL.
	UploadImage(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*model.ImageUpload, error)
}

// CategoryService defines catalog operations on categories.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	ListPage(ctx context.Context, q model.ListQuery) (*model.CategoryPage, error)
	Create(ctx context.Context, in *model.CategoryInput) (*model.Category, error)
	Update(ctx context.Context, id int64, in *model.CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id int64) error
}

// OrderService defines checkout and order administration.
type OrderService interface {
	// PlaceOrder runs the checkout transaction.
	PlaceOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderReceipt, error)

	List(ctx context.Context, filter model.OrderFilter) (*model.OrderPage, error)
	GetByID(ctx context.Context, id int64) (*model.OrderWithItems, error)
	UpdateStatus(ctx context.Context, id int64, upd *model.OrderStatusUpdate) (*model.Order, error)
	Stats(ctx context.Context) (*model.DashboardStats, error)
}

// CustomerService defines read access to customers.
type CustomerService interface {
	List(ctx context.Context, search string, limit, offset int) (*model.CustomerPage, error)
	GetDetail(ctx context.Context, id int64) (*model.CustomerDetail, error)
}

// PromoService defines promo code validation and administration.
type PromoService interface {
	// Validate explains whether a code applies to a cart total.
	Validate(ctx context.Context, req *model.PromoValidationRequest) (*model.PromoValidation, error)

	ListActive(ctx context.Context) ([]model.PromoCode, error)
	Create(ctx context.Context, in *model.PromoCodeInput) (*model.PromoCode, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// SettingsService defines store settings and logo management.
type SettingsService interface {
	// Public returns what the storefront shows. It never fails.
	Public(ctx context.Context) *model.PublicStoreInfo

	// Get returns the settings, creating the default row when missing.
	Get(ctx context.Context) (*model.StoreSettings, error)

	Update(ctx context.Context, upd *model.StoreSettingsUpdate) (*model.StoreSettings, error)
	UploadLogo(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*model.LogoUpload, error)
	RemoveLogo(ctx context.Context) (*model.StoreSettings, error)
}

// AuthService defines admin login and session checks.
type AuthService interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error)
	Authenticate(token string) (*auth.Claims, error)
}
