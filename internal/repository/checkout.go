package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
)

// unitOfWork implements UnitOfWork on top of a PostgreSQL transaction.
type unitOfWork struct {
	db     TxBeginner
	logger zerolog.Logger
}

// NewUnitOfWork creates a transactional unit of work. db is usually the
// *pgxpool.Pool.
func NewUnitOfWork(db TxBeginner, logger zerolog.Logger) UnitOfWork {
	return &unitOfWork{
		db:     db,
		logger: logger.With().Str("repository", "checkout").Logger(),
	}
}

// Run begins a transaction, hands fn a store bound to it and commits when fn
// succeeds. Any error or panic rolls everything back.
func (u *unitOfWork) Run(ctx context.Context, fn func(ctx context.Context, store CheckoutStore) error) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		u.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			u.rollback(ctx, tx)
			panic(p)
		}
	}()

	if err := fn(ctx, &checkoutStore{tx: tx, logger: u.logger}); err != nil {
		u.rollback(ctx, tx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		u.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		u.logger.Error().Err(err).Msg("failed to rollback transaction")
	}
}

// checkoutStore implements CheckoutStore against an open transaction.
type checkoutStore struct {
	tx     pgx.Tx
	logger zerolog.Logger
}

func (s *checkoutStore) LockProduct(ctx context.Context, id int64) (*model.Product, error) {
	query := `
		SELECT p.id, p.category_id, NULL::text, NULL::text, p.name, p.slug, p.description,
		       p.price, p.original_price, p.stock, p.min_stock, p.type, p.is_active,
		       p.image_url, p.created_at, p.updated_at
		FROM products p
		WHERE p.id = $1 AND p.is_active = true
		FOR UPDATE
	`

	p, err := scanProduct(s.tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to lock product")
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	return p, nil
}

func (s *checkoutStore) DecrementStock(ctx context.Context, id int64, quantity int) error {
	_, err := s.tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Int("quantity", quantity).Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	return nil
}

func (s *checkoutStore) LockPromoByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	p, err := scanPromo(s.tx.QueryRow(ctx,
		`SELECT `+promoColumns+` FROM promo_codes WHERE UPPER(code) = UPPER($1) LIMIT 1 FOR UPDATE`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error().Err(err).Str("promo_code", code).Msg("failed to lock promo code")
		return nil, fmt.Errorf("failed to lock promo code: %w", err)
	}
	return p, nil
}

func (s *checkoutStore) IncrementPromoUsage(ctx context.Context, id int64) error {
	_, err := s.tx.Exec(ctx,
		`UPDATE promo_codes SET usage_count = usage_count + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("promo_id", id).Msg("failed to increment promo usage")
		return fmt.Errorf("failed to increment promo usage: %w", err)
	}
	return nil
}

// LockCustomer makes sure a customer row exists for phone and locks it. A
// concurrent first order for the same phone waits on the unique index and
// then locks the row the other transaction created.
func (s *checkoutStore) LockCustomer(ctx context.Context, phone string, at time.Time) (*model.Customer, error) {
	tag, err := s.tx.Exec(ctx, `
		INSERT INTO customers (phone_number, order_count, last_order_date)
		VALUES ($1, 0, $2)
		ON CONFLICT (phone_number) DO NOTHING
	`, phone, at)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create customer")
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	if tag.RowsAffected() > 0 {
		s.logger.Debug().Msg("customer created")
	}

	c, err := scanCustomer(s.tx.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE phone_number = $1 FOR UPDATE`, phone))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to lock customer")
		return nil, fmt.Errorf("failed to lock customer: %w", err)
	}
	return c, nil
}

func (s *checkoutStore) RecordCustomerOrder(ctx context.Context, id int64, at time.Time) (*model.Customer, error) {
	query := `
		UPDATE customers
		SET order_count = order_count + 1, last_order_date = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + customerColumns

	c, err := scanCustomer(s.tx.QueryRow(ctx, query, id, at))
	if err != nil {
		s.logger.Error().Err(err).Int64("customer_id", id).Msg("failed to record customer order")
		return nil, fmt.Errorf("failed to record customer order: %w", err)
	}
	return c, nil
}

// InsertOrder persists the order header and fills in its ID. A clash on the
// order number surfaces as ErrDuplicateOrderNumber.
func (s *checkoutStore) InsertOrder(ctx context.Context, order *model.Order) error {
	query := `
		INSERT INTO orders (
			order_number, customer_id, customer_name, customer_email, customer_phone,
			status, subtotal, discount_amount, total_amount, promo_code, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := s.tx.QueryRow(ctx, query,
		order.OrderNumber, order.CustomerID, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.Status, decimalToNumeric(order.Subtotal), decimalToNumeric(order.DiscountAmount),
		decimalToNumeric(order.TotalAmount), order.PromoCode, order.Notes,
		order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		if isUniqueViolation(err, orderNumberConstraint) {
			return &model.DomainError{
				Code:    model.ErrCodeDuplicateOrderNumber,
				Message: fmt.Sprintf("Order number %s already exists", order.OrderNumber),
				Err:     err,
			}
		}
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Debug().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// InsertOrderItems persists all lines of an order in one batch.
func (s *checkoutStore) InsertOrderItems(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (order_id, product_id, product_name, product_price, quantity, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, orderID, item.ProductID, item.ProductName,
			decimalToNumeric(item.ProductPrice), item.Quantity, decimalToNumeric(item.Subtotal), item.CreatedAt)
	}

	results := s.tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		var id pgtype.Int8
		if err := results.QueryRow().Scan(&id); err != nil {
			s.logger.Error().
				Err(err).
				Int64("order_id", orderID).
				Int64("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
		items[i].ID = id.Int64
		items[i].OrderID = orderID
	}

	s.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}
