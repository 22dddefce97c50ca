// Package promo decides whether a promo code applies to a purchase and how
// much it takes off. The same rules back checkout and the explicit
// validation endpoint; only the caller decides whether a miss is an error.
package promo

import (
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// Reasons a promo code does not apply.
const (
	ReasonNotFound    = "Promo code not found"
	ReasonInactive    = "Promo code is not active"
	ReasonNotStarted  = "Promo code is not valid yet"
	ReasonExpired     = "Promo code has expired"
	ReasonExhausted   = "Promo code usage limit reached"
	ReasonMinPurchase = "Minimum purchase not reached"
	ReasonApplied     = "Promo code applied"
)

var hundred = decimal.NewFromInt(100)

// Result is the outcome of evaluating a promo code against a subtotal.
type Result struct {
	Qualifies bool
	Discount  decimal.Decimal
	Reason    string
}

// NormaliseCode prepares a user-entered code for lookup.
func NormaliseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate applies the eligibility rules and discount math. A nil promo
// means the code did not match any row.
func Evaluate(p *model.PromoCode, subtotal decimal.Decimal, now time.Time) Result {
	if reason, ok := eligible(p, subtotal, now); !ok {
		return Result{Discount: decimal.Zero, Reason: reason}
	}

	return Result{
		Qualifies: true,
		Discount:  Discount(p, subtotal),
		Reason:    ReasonApplied,
	}
}

// Discount computes the amount taken off subtotal, ignoring eligibility.
// The result never exceeds max_discount (when set) nor the subtotal.
func Discount(p *model.PromoCode, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch p.DiscountType {
	case model.DiscountTypePercentage:
		amount = subtotal.Mul(p.DiscountValue).Div(hundred)
	default:
		amount = p.DiscountValue
	}

	if p.MaxDiscount != nil && amount.GreaterThan(*p.MaxDiscount) {
		amount = *p.MaxDiscount
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return amount.Round(2)
}

func eligible(p *model.PromoCode, subtotal decimal.Decimal, now time.Time) (string, bool) {
	switch {
	case p == nil:
		return ReasonNotFound, false
	case !p.IsActive:
		return ReasonInactive, false
	case now.Before(p.ValidFrom):
		return ReasonNotStarted, false
	case p.ValidUntil != nil && !now.Before(*p.ValidUntil):
		return ReasonExpired, false
	case p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit:
		return ReasonExhausted, false
	case subtotal.LessThan(p.MinPurchase):
		return ReasonMinPurchase, false
	}
	return "", true
}
