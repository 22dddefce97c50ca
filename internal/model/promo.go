package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Discount types
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// PromoCode is a discount rule identified by a case-insensitive code.
type PromoCode struct {
	ID            int64            `json:"id" db:"id"`
	Code          string           `json:"code" db:"code"`
	Description   string           `json:"description" db:"description"`
	DiscountType  string           `json:"discount_type" db:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value" db:"discount_value"`
	MinPurchase   decimal.Decimal  `json:"min_purchase" db:"min_purchase"`
	MaxDiscount   *decimal.Decimal `json:"max_discount,omitempty" db:"max_discount"`
	UsageLimit    *int             `json:"usage_limit,omitempty" db:"usage_limit"`
	UsageCount    int              `json:"usage_count" db:"usage_count"`
	ValidFrom     time.Time        `json:"valid_from" db:"valid_from"`
	ValidUntil    *time.Time       `json:"valid_until,omitempty" db:"valid_until"`
	IsActive      bool             `json:"is_active" db:"is_active"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// PromoValidationRequest is the payload of the explicit promo check.
type PromoValidationRequest struct {
	Code        string           `json:"code"`
	TotalAmount *decimal.Decimal `json:"totalAmount"`
}

// PromoValidation is the answer of the explicit promo check.
type PromoValidation struct {
	IsValid        bool            `json:"is_valid"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Message        string          `json:"message"`
	PromoID        *int64          `json:"promo_id"`
}

// PromoCodeInput is the admin payload for creating a promo code.
type PromoCodeInput struct {
	Code          string           `json:"code"`
	Description   string           `json:"description"`
	DiscountType  string           `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	MinPurchase   decimal.Decimal  `json:"min_purchase"`
	MaxDiscount   *decimal.Decimal `json:"max_discount"`
	UsageLimit    *int             `json:"usage_limit"`
	ValidFrom     *time.Time       `json:"valid_from"`
	ValidUntil    *time.Time       `json:"valid_until"`
}

// Validate checks a promo code definition.
func (in *PromoCodeInput) Validate() error {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if in.Code == "" {
		return ValidationError("code is required")
	}
	switch in.DiscountType {
	case DiscountTypePercentage:
		if in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return ValidationError("percentage discount cannot exceed 100")
		}
	case DiscountTypeFixed:
	default:
		return ValidationError("discount_type must be percentage or fixed")
	}
	if !in.DiscountValue.IsPositive() {
		return ValidationError("discount_value must be greater than zero")
	}
	if in.MinPurchase.IsNegative() {
		return ValidationError("min_purchase cannot be negative")
	}
	if in.MaxDiscount != nil && !in.MaxDiscount.IsPositive() {
		return ValidationError("max_discount must be greater than zero")
	}
	if in.UsageLimit != nil && *in.UsageLimit <= 0 {
		return ValidationError("usage_limit must be greater than zero")
	}
	if in.ValidFrom != nil && in.ValidUntil != nil && !in.ValidUntil.After(*in.ValidFrom) {
		return ValidationError("valid_until must be after valid_from")
	}
	return nil
}
