package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const customerColumns = `id, phone_number, order_count, last_order_date, created_at, updated_at`

type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

func scanCustomer(row scanner) (*model.Customer, error) {
	var c model.Customer
	if err := row.Scan(&c.ID, &c.PhoneNumber, &c.OrderCount, &c.LastOrderDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List retrieves customers ordered by most recent order, with the total
// number of matches computed by a window function.
func (r *customerRepository) List(ctx context.Context, search string, limit, offset int) ([]model.Customer, int, error) {
	query := `SELECT ` + customerColumns + `, COUNT(*) OVER() FROM customers`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` WHERE phone_number ILIKE $1`
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY last_order_date DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query customers")
		return nil, 0, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	total := 0
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.PhoneNumber, &c.OrderCount, &c.LastOrderDate, &c.CreatedAt, &c.UpdatedAt, &total); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan customer row")
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, total, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("customer_id", id).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}
	return c, nil
}
