package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// orderNumberConstraint is the unique constraint on orders.order_number.
const orderNumberConstraint = "orders_order_number_key"

// TxBeginner starts a new database transaction. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err is a unique constraint failure on
// the named constraint. An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// numericReader converts scanned NUMERIC columns to decimals and keeps the
// first conversion error, so a scan function checks once at the end.
type numericReader struct {
	err error
}

func (r *numericReader) decimal(n pgtype.Numeric) decimal.Decimal {
	d, err := numericToDecimal(n)
	if err != nil && r.err == nil {
		r.err = err
	}
	return d
}

func (r *numericReader) decimalPtr(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := r.decimal(n)
	return &d
}

// numericToDecimal converts a NUMERIC value exactly. NULL reads as zero; NaN
// and infinities have no decimal form and are rejected.
func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, errors.New("numeric value is not a finite number")
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func decimalPtrToNumeric(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{}
	}
	return decimalToNumeric(*d)
}

// orderBy builds an ORDER BY clause from a whitelisted sort column. Unknown
// sort names fall back to def, which is used verbatim. tie keeps pages
// stable when the sort column has duplicates.
func orderBy(columns map[string]string, q model.ListQuery, def, tie string) string {
	col, ok := columns[q.Sort]
	if !ok {
		return "ORDER BY " + def + ", " + tie
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s NULLS LAST, %s", col, dir, tie)
}
