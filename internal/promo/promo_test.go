package promo

import (
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	base := func() *model.PromoCode {
		return &model.PromoCode{
			ID:            1,
			Code:          "WELCOME10",
			DiscountType:  model.DiscountTypePercentage,
			DiscountValue: dec("10"),
			MinPurchase:   dec("50000"),
			ValidFrom:     now.Add(-24 * time.Hour),
			IsActive:      true,
		}
	}

	tests := []struct {
		name             string
		promo            func() *model.PromoCode
		subtotal         string
		expectQualifies  bool
		expectedDiscount string
		expectedReason   string
	}{
		{
			name:             "Percentage without cap",
			promo:            base,
			subtotal:         "100000",
			expectQualifies:  true,
			expectedDiscount: "10000",
			expectedReason:   ReasonApplied,
		},
		{
			name: "Percentage capped by max discount",
			promo: func() *model.PromoCode {
				p := base()
				p.DiscountValue = dec("50")
				p.MaxDiscount = decPtr("15000")
				return p
			},
			subtotal:         "100000",
			expectQualifies:  true,
			expectedDiscount: "15000",
			expectedReason:   ReasonApplied,
		},
		{
			name: "Fixed discount clamped to subtotal",
			promo: func() *model.PromoCode {
				p := base()
				p.DiscountType = model.DiscountTypeFixed
				p.DiscountValue = dec("80000")
				p.MinPurchase = decimal.Zero
				return p
			},
			subtotal:         "60000",
			expectQualifies:  true,
			expectedDiscount: "60000",
			expectedReason:   ReasonApplied,
		},
		{
			name:             "Unknown code",
			promo:            func() *model.PromoCode { return nil },
			subtotal:         "100000",
			expectedDiscount: "0",
			expectedReason:   ReasonNotFound,
		},
		{
			name: "Inactive",
			promo: func() *model.PromoCode {
				p := base()
				p.IsActive = false
				return p
			},
			subtotal:         "100000",
			expectedDiscount: "0",
			expectedReason:   ReasonInactive,
		},
		{
			name: "Not started",
			promo: func() *model.PromoCode {
				p := base()
				p.ValidFrom = now.Add(time.Hour)
				return p
			},
			subtotal:         "100000",
			expectedDiscount: "0",
			expectedReason:   ReasonNotStarted,
		},
		{
			name: "Expired exactly at valid_until",
			promo: func() *model.PromoCode {
				p := base()
				p.ValidUntil = timePtr(now)
				return p
			},
			subtotal:         "100000",
			expectedDiscount: "0",
			expectedReason:   ReasonExpired,
		},
		{
			name: "Usage limit reached",
			promo: func() *model.PromoCode {
				p := base()
				p.UsageLimit = intPtr(3)
				p.UsageCount = 3
				return p
			},
			subtotal:         "100000",
			expectedDiscount: "0",
			expectedReason:   ReasonExhausted,
		},
		{
			name:             "Below minimum purchase",
			promo:            base,
			subtotal:         "49999",
			expectedDiscount: "0",
			expectedReason:   ReasonMinPurchase,
		},
		{
			name:             "Exactly minimum purchase",
			promo:            base,
			subtotal:         "50000",
			expectQualifies:  true,
			expectedDiscount: "5000",
			expectedReason:   ReasonApplied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(tt.promo(), dec(tt.subtotal), now)

			assert.Equal(t, tt.expectQualifies, result.Qualifies)
			assert.True(t, dec(tt.expectedDiscount).Equal(result.Discount),
				"expected discount %s, got %s", tt.expectedDiscount, result.Discount)
			assert.Equal(t, tt.expectedReason, result.Reason)
		})
	}
}

func TestDiscount_NeverExceedsSubtotalOrCap(t *testing.T) {
	p := &model.PromoCode{
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: dec("100"),
		MaxDiscount:   decPtr("25000"),
	}

	for _, subtotal := range []string{"0", "1", "9999.99", "25000", "25000.01", "1000000"} {
		s := dec(subtotal)
		d := Discount(p, s)

		assert.False(t, d.GreaterThan(s), "discount %s exceeds subtotal %s", d, s)
		assert.False(t, d.GreaterThan(*p.MaxDiscount), "discount %s exceeds cap", d)
		assert.False(t, d.IsNegative())
	}
}

func TestDiscount_RoundsToCents(t *testing.T) {
	p := &model.PromoCode{
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: dec("12.5"),
	}

	assert.Equal(t, "4.17", Discount(p, dec("33.33")).StringFixed(2))
}

func TestNormaliseCode(t *testing.T) {
	assert.Equal(t, "WELCOME10", NormaliseCode("  welcome10 "))
	assert.Equal(t, "", NormaliseCode("   "))
}
