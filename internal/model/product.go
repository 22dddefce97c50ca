package model

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Product types
const (
	ProductTypePhysical = "physical"
	ProductTypeVoucher  = "voucher"
)

// Stock statuses derived from stock and min_stock.
const (
	StockStatusInStock    = "in_stock"
	StockStatusLowStock   = "low_stock"
	StockStatusOutOfStock = "out_of_stock"
)

// DefaultMinStock is the low-stock threshold used when a product has none.
const DefaultMinStock = 5

// MaxStock bounds stock levels and adjustments.
const MaxStock = 1_000_000

// Product represents an item in the storefront catalogue.
type Product struct {
	ID            int64            `json:"id" db:"id"`
	CategoryID    *int64           `json:"category_id,omitempty" db:"category_id"`
	CategoryName  *string          `json:"category_name,omitempty" db:"category_name"`
	CategorySlug  *string          `json:"category_slug,omitempty" db:"category_slug"`
	Name          string           `json:"name" db:"name"`
	Slug          string           `json:"slug" db:"slug"`
	Description   string           `json:"description" db:"description"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty" db:"original_price"`
	Stock         int              `json:"stock" db:"stock"`
	MinStock      *int             `json:"min_stock,omitempty" db:"min_stock"`
	Type          string           `json:"type" db:"type"`
	IsActive      bool             `json:"is_active" db:"is_active"`
	ImageURL      *string          `json:"image_url,omitempty" db:"image_url"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// IsPhysical reports whether the product carries a meaningful stock count.
func (p *Product) IsPhysical() bool {
	return p.Type == ProductTypePhysical
}

// StockStatus derives the stock badge shown in listings.
func (p *Product) StockStatus() string {
	if !p.IsPhysical() {
		return StockStatusInStock
	}
	threshold := DefaultMinStock
	if p.MinStock != nil {
		threshold = *p.MinStock
	}
	switch {
	case p.Stock <= 0:
		return StockStatusOutOfStock
	case p.Stock <= threshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// MarshalJSON adds the derived stock_status to the encoded product.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		StockStatus string `json:"stock_status"`
	}{plain(p), p.StockStatus()})
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategorySlug string
	Search       string
	Limit        int
	Offset       int
}

// ProductInput is the admin payload for creating or updating a product.
type ProductInput struct {
	CategoryID    *int64           `json:"category_id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Stock         int              `json:"stock"`
	MinStock      *int             `json:"min_stock"`
	Type          string           `json:"type"`
	IsActive      *bool            `json:"is_active"`
	ImageURL      *string          `json:"image_url"`
}

// Stock adjustment operations
const (
	StockOperationAdd      = "add"
	StockOperationSubtract = "subtract"
	StockOperationSet      = "set"
)

// StockAdjustment is the admin payload for changing stock outside checkout.
type StockAdjustment struct {
	ProductID int64  `json:"productId"`
	Quantity  *int   `json:"quantity"`
	Operation string `json:"operation"`
}

// Category groups products in the storefront.
type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Icon         *string   `json:"icon,omitempty"`
	DisplayOrder int       `json:"display_order"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// CategoryInput is the admin payload for creating or updating a category.
type CategoryInput struct {
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Icon         *string `json:"icon"`
	DisplayOrder int     `json:"display_order"`
}

// ProductPage is a page of products for the paginated storefront listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
}

// ListQuery carries the search, sort and paging of a back-office table.
// Sort names a column the listing understands. Unknown names fall back to
// the listing's default order.
type ListQuery struct {
	Search string
	Sort   string
	Desc   bool
	Page   int
	Limit  int
}

// Offset returns the number of rows before the page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// CategoryPage is a page of categories.
type CategoryPage struct {
	Categories []Category `json:"categories"`
	Pagination Pagination `json:"pagination"`
}

// StockPage is a page of the admin stock table. Products carry their
// stock_status.
type StockPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// ImageUpload is the result of storing a product image. URL goes into
// ProductInput.ImageURL.
type ImageUpload struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Validate normalises and checks a product definition.
func (in *ProductInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ValidationError("name is required")
	}
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}
	if in.Type == "" {
		in.Type = ProductTypePhysical
	}
	if in.Type != ProductTypePhysical && in.Type != ProductTypeVoucher {
		return ValidationError("type must be physical or voucher")
	}
	if in.Price.IsNegative() {
		return ValidationError("price cannot be negative")
	}
	if in.Price.GreaterThan(MaxAmount) {
		return ValidationError("price is too large")
	}
	if in.OriginalPrice != nil && (in.OriginalPrice.IsNegative() || in.OriginalPrice.GreaterThan(MaxAmount)) {
		return ValidationError("original_price must be between 0 and %s", MaxAmount)
	}
	if in.Stock < 0 {
		return ValidationError("stock cannot be negative")
	}
	if in.Stock > MaxStock {
		return ValidationError("stock cannot exceed %d", MaxStock)
	}
	if in.MinStock != nil && *in.MinStock < 0 {
		return ValidationError("min_stock cannot be negative")
	}
	return nil
}

// Validate checks a stock adjustment request.
func (a *StockAdjustment) Validate() error {
	if a.ProductID <= 0 || a.Quantity == nil || a.Operation == "" {
		return ValidationError("productId, quantity, and operation are required")
	}
	if *a.Quantity < 0 {
		return ValidationError("quantity cannot be negative")
	}
	if *a.Quantity > MaxStock {
		return ValidationError("quantity cannot exceed %d", MaxStock)
	}
	switch a.Operation {
	case StockOperationAdd, StockOperationSubtract, StockOperationSet:
		return nil
	}
	return ValidationError("operation must be add, subtract, or set")
}

// Validate normalises and checks a category definition.
func (in *CategoryInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ValidationError("name is required")
	}
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}
	return nil
}

// Slugify lower-cases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
