// Package whatsapp builds the wa.me deep link that hands a placed order over
// to the store admin.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

const baseURL = "https://wa.me/"

// NormalisePhone keeps only digits and turns a local 0 prefix into the
// Indonesian country code.
func NormalisePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	return digits
}

// OrderLink returns the wa.me URL with the order summary as the prefilled
// message. It returns "" when adminPhone has no digits.
func OrderLink(adminPhone string, receipt *model.OrderReceipt) string {
	phone := NormalisePhone(adminPhone)
	if phone == "" || receipt == nil || receipt.Order == nil {
		return ""
	}
	text := strings.ReplaceAll(url.QueryEscape(OrderMessage(receipt)), "+", "%20")
	return baseURL + phone + "?text=" + text
}

// OrderMessage renders the order summary sent to the admin.
func OrderMessage(receipt *model.OrderReceipt) string {
	o := receipt.Order

	var b strings.Builder
	b.WriteString("Halo, saya ingin memesan:\n\n")
	for _, item := range receipt.Items {
		fmt.Fprintf(&b, "%s x%d = %s\n", item.ProductName, item.Quantity, FormatRupiah(item.Subtotal))
	}
	b.WriteString("\n")

	if o.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "Subtotal: %s\n", FormatRupiah(o.Subtotal))
		code := ""
		if o.PromoCode != nil {
			code = *o.PromoCode
		}
		fmt.Fprintf(&b, "Kode Promo (%s): -%s\n", code, FormatRupiah(o.DiscountAmount))
	}
	fmt.Fprintf(&b, "*Total: %s*\n\n", FormatRupiah(o.TotalAmount))

	fmt.Fprintf(&b, "Nama: %s\n", o.CustomerName)
	fmt.Fprintf(&b, "No. HP: %s\n", o.CustomerPhone)
	if o.CustomerEmail != nil {
		fmt.Fprintf(&b, "Email: %s\n", *o.CustomerEmail)
	}
	fmt.Fprintf(&b, "No. Pesanan: %s", o.OrderNumber)

	return b.String()
}

// FormatRupiah formats an amount the Indonesian way, e.g. Rp 1.250.000 or
// Rp 4.500,50 when there are cents.
func FormatRupiah(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	amount = amount.Round(2)
	whole := amount.Truncate(0)
	frac := amount.Sub(whole)

	digits := whole.String()
	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := sign + "Rp " + grouped.String()
	if !frac.IsZero() {
		out += fmt.Sprintf(",%02d", frac.Shift(2).IntPart())
	}
	return out
}
