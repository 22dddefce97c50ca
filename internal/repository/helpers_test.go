package repository

import (
	"testing"

	"storefront/internal/testutil/pgtest"
)

func seedCategory(t *testing.T, db *pgtest.TestDB, name, slug string) int64 {
	t.Helper()
	return db.InsertID(t, `INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id`, name, slug)
}

func seedProduct(t *testing.T, db *pgtest.TestDB, categoryID *int64, name, price string, stock int, productType string) int64 {
	t.Helper()
	return db.InsertID(t, `
		INSERT INTO products (category_id, name, slug, description, price, stock, type)
		VALUES ($1, $2, lower(replace($2, ' ', '-')), $2 || ' description', $3::numeric, $4, $5)
		RETURNING id`,
		categoryID, name, price, stock, productType)
}

func seedPromo(t *testing.T, db *pgtest.TestDB, code, discountType, value, minPurchase string) int64 {
	t.Helper()
	return db.InsertID(t, `
		INSERT INTO promo_codes (code, discount_type, discount_value, min_purchase, valid_from)
		VALUES ($1, $2, $3::numeric, $4::numeric, NOW() - INTERVAL '1 day')
		RETURNING id`,
		code, discountType, value, minPurchase)
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
