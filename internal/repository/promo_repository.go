package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const promoColumns = `
	id, code, description, discount_type, discount_value, min_purchase, max_discount,
	usage_limit, usage_count, valid_from, valid_until, is_active, created_at, updated_at
`

type promoRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPromoRepository creates a new PostgreSQL-backed promo code repository.
func NewPromoRepository(pool *pgxpool.Pool, logger zerolog.Logger) PromoRepository {
	return &promoRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "promo").Logger(),
	}
}

func scanPromo(row scanner) (*model.PromoCode, error) {
	var (
		p                         model.PromoCode
		value, minPurchase, maxDi pgtype.Numeric
	)
	err := row.Scan(
		&p.ID, &p.Code, &p.Description, &p.DiscountType, &value, &minPurchase, &maxDi,
		&p.UsageLimit, &p.UsageCount, &p.ValidFrom, &p.ValidUntil, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	var nr numericReader
	p.DiscountValue = nr.decimal(value)
	p.MinPurchase = nr.decimal(minPurchase)
	p.MaxDiscount = nr.decimalPtr(maxDi)
	if nr.err != nil {
		return nil, nr.err
	}
	return &p, nil
}

// GetByCode looks a code up case-insensitively.
func (r *promoRepository) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	p, err := scanPromo(r.pool.QueryRow(ctx,
		`SELECT `+promoColumns+` FROM promo_codes WHERE UPPER(code) = UPPER($1) LIMIT 1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("promo_code", code).Msg("promo code not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("promo_code", code).Msg("failed to query promo code")
		return nil, fmt.Errorf("failed to query promo code: %w", err)
	}
	return p, nil
}

// ListActive retrieves promo codes usable at the given time.
func (r *promoRepository) ListActive(ctx context.Context, now time.Time) ([]model.PromoCode, error) {
	query := `
		SELECT ` + promoColumns + `
		FROM promo_codes
		WHERE is_active = true
		  AND valid_from <= $1
		  AND (valid_until IS NULL OR valid_until > $1)
		  AND (usage_limit IS NULL OR usage_count < usage_limit)
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query active promo codes")
		return nil, fmt.Errorf("failed to query active promo codes: %w", err)
	}
	defer rows.Close()

	promos := []model.PromoCode{}
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		promos = append(promos, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promo codes: %w", err)
	}
	return promos, nil
}

func (r *promoRepository) Create(ctx context.Context, in *model.PromoCodeInput) (*model.PromoCode, error) {
	query := `
		INSERT INTO promo_codes (
			code, description, discount_type, discount_value, min_purchase,
			max_discount, usage_limit, valid_from, valid_until
		) VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()), $9)
		RETURNING ` + promoColumns

	p, err := scanPromo(r.pool.QueryRow(ctx, query,
		in.Code, in.Description, in.DiscountType,
		decimalToNumeric(in.DiscountValue), decimalToNumeric(in.MinPurchase), decimalPtrToNumeric(in.MaxDiscount),
		in.UsageLimit, in.ValidFrom, in.ValidUntil,
	))
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, model.ValidationError("Promo code %s already exists", in.Code)
		}
		r.logger.Error().Err(err).Str("promo_code", in.Code).Msg("failed to create promo code")
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}

	r.logger.Info().Str("promo_code", p.Code).Msg("promo code created")

	return p, nil
}

func (r *promoRepository) SetActive(ctx context.Context, id int64, active bool) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE promo_codes SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		r.logger.Error().Err(err).Int64("promo_id", id).Msg("failed to update promo code status")
		return false, fmt.Errorf("failed to update promo code status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
