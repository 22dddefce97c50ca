package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	id, order_number, customer_id, customer_name, customer_email, customer_phone,
	status, subtotal, discount_amount, total_amount, promo_code, notes,
	created_at, updated_at
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row scanner) (*model.Order, error) {
	var (
		o                         model.Order
		subtotal, discount, total pgtype.Numeric
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.Status, &subtotal, &discount, &total, &o.PromoCode, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	var nr numericReader
	o.Subtotal = nr.decimal(subtotal)
	o.DiscountAmount = nr.decimal(discount)
	o.TotalAmount = nr.decimal(total)
	if nr.err != nil {
		return nil, nr.err
	}
	return &o, nil
}

func scanOrderItem(row scanner) (*model.OrderItem, error) {
	var (
		item            model.OrderItem
		price, subtotal pgtype.Numeric
	)
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
		&price, &item.Quantity, &subtotal, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	var nr numericReader
	item.ProductPrice = nr.decimal(price)
	item.Subtotal = nr.decimal(subtotal)
	if nr.err != nil {
		return nil, nr.err
	}
	return &item, nil
}

// orderWhere builds the WHERE clause for the admin listing.
func orderWhere(filter model.OrderFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(order_number ILIKE $%d OR customer_name ILIKE $%d OR customer_phone ILIKE $%d)", n, n, n))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List retrieves a page of orders and the total matching the filter.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error) {
	where, args := orderWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders "+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf("SELECT %s FROM orders %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		orderColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, total, nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.OrderWithItems, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("order_id", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.itemsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	return &model.OrderWithItems{Order: *order, Items: items[id]}, nil
}

// ListByCustomer retrieves a customer's orders, newest first.
func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]model.OrderWithItems, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE customer_id = $1 ORDER BY created_at DESC, id DESC", customerID)
	if err != nil {
		r.logger.Error().Err(err).Int64("customer_id", customerID).Msg("failed to query customer orders")
		return nil, fmt.Errorf("failed to query customer orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []model.OrderWithItems
		ids    []int64
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, model.OrderWithItems{Order: *o})
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	rows.Close()

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

func (r *orderRepository) itemsFor(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	result := make(map[int64][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, order_id, product_id, product_name, product_price, quantity, subtotal, created_at
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("order_count", len(orderIDs)).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result[item.OrderID] = append(result[item.OrderID], *item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return result, nil
}

// UpdateStatus moves an order to a new status, keeping existing notes when
// none are given.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string, notes *string) (*model.Order, error) {
	query := `
		UPDATE orders
		SET status = $1, notes = COALESCE($2, notes), updated_at = NOW()
		WHERE id = $3
		RETURNING ` + orderColumns

	order, err := scanOrder(r.pool.QueryRow(ctx, query, status, notes, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Str("status", status).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	r.logger.Info().Int64("order_id", id).Str("status", status).Msg("order status updated")

	return order, nil
}

// Stats computes the dashboard counters in a single round trip.
func (r *orderRepository) Stats(ctx context.Context) (*model.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM products
			  WHERE is_active = true AND type = 'physical' AND stock <= COALESCE(min_stock, 5)),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = 'pending'),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> 'cancelled'),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders
			  WHERE status <> 'cancelled' AND created_at::date = CURRENT_DATE)
	`

	var (
		stats              model.DashboardStats
		totalRev, todayRev pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalProducts, &stats.LowStockProducts,
		&stats.TotalOrders, &stats.PendingOrders,
		&totalRev, &todayRev,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to compute dashboard stats")
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	var nr numericReader
	stats.TotalRevenue = nr.decimal(totalRev)
	stats.TodayRevenue = nr.decimal(todayRev)
	if nr.err != nil {
		return nil, fmt.Errorf("failed to read dashboard revenue: %w", nr.err)
	}

	return &stats, nil
}
