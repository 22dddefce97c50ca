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

const productSelect = `
	SELECT p.id, p.category_id, c.name, c.slug, p.name, p.slug, p.description,
	       p.price, p.original_price, p.stock, p.min_stock, p.type, p.is_active,
	       p.image_url, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON p.category_id = c.id
`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row scanner) (*model.Product, error) {
	var (
		p             model.Product
		price         pgtype.Numeric
		originalPrice pgtype.Numeric
	)
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.CategoryName, &p.CategorySlug, &p.Name, &p.Slug, &p.Description,
		&price, &originalPrice, &p.Stock, &p.MinStock, &p.Type, &p.IsActive,
		&p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	var nr numericReader
	p.Price = nr.decimal(price)
	p.OriginalPrice = nr.decimalPtr(originalPrice)
	if nr.err != nil {
		return nil, nr.err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// productWhere builds the WHERE clause shared by List and Count.
func productWhere(filter model.ProductFilter) (string, []any) {
	conditions := []string{"p.is_active = true"}
	var args []any

	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List retrieves active products matching the filter.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	where, args := productWhere(filter)
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf("%s %s ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d",
		productSelect, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, err
	}
	return products, nil
}

// Count returns the number of active products matching the filter.
func (r *productRepository) Count(ctx context.Context, filter model.ProductFilter) (int, error) {
	where, args := productWhere(filter)
	query := `SELECT COUNT(*) FROM products p LEFT JOIN categories c ON p.category_id = c.id ` + where

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// GetByID retrieves a single active product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return r.get(ctx, id, true)
}

// GetBySlug retrieves a single active product by its slug.
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.slug = $1 AND p.is_active = true`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("slug", slug).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (r *productRepository) get(ctx context.Context, id int64, activeOnly bool) (*model.Product, error) {
	query := productSelect + ` WHERE p.id = $1`
	if activeOnly {
		query += ` AND p.is_active = true`
	}

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, in *model.ProductInput) (*model.Product, error) {
	query := `
		INSERT INTO products (
			category_id, name, slug, description, price, original_price,
			stock, min_stock, type, is_active, image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, true), $11)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		in.CategoryID, in.Name, in.Slug, in.Description,
		decimalToNumeric(in.Price), decimalPtrToNumeric(in.OriginalPrice),
		in.Stock, in.MinStock, in.Type, in.IsActive, in.ImageURL,
	).Scan(&id)
	if err != nil {
		r.logger.Error().Err(err).Str("slug", in.Slug).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Int64("product_id", id).Msg("product created successfully")

	return r.get(ctx, id, false)
}

// Update overwrites a product.
func (r *productRepository) Update(ctx context.Context, id int64, in *model.ProductInput) (*model.Product, error) {
	query := `
		UPDATE products
		SET category_id = $2, name = $3, slug = $4, description = $5, price = $6,
		    original_price = $7, stock = $8, min_stock = $9, type = $10,
		    is_active = COALESCE($11, is_active), image_url = $12, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id,
		in.CategoryID, in.Name, in.Slug, in.Description,
		decimalToNumeric(in.Price), decimalPtrToNumeric(in.OriginalPrice),
		in.Stock, in.MinStock, in.Type, in.IsActive, in.ImageURL,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	return r.get(ctx, id, false)
}

// Deactivate hides a product from the storefront.
func (r *productRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to deactivate product")
		return false, fmt.Errorf("failed to deactivate product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AdjustStock applies an add, subtract or set operation.
func (r *productRepository) AdjustStock(ctx context.Context, id int64, quantity int, operation string) (*model.Product, error) {
	var query string
	switch operation {
	case model.StockOperationAdd:
		query = `UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`
	case model.StockOperationSubtract:
		query = `UPDATE products SET stock = GREATEST(0, stock - $2), updated_at = NOW() WHERE id = $1`
	case model.StockOperationSet:
		query = `UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1`
	default:
		return nil, fmt.Errorf("unknown stock operation %q", operation)
	}

	tag, err := r.pool.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("product_id", id).
			Str("operation", operation).
			Msg("failed to adjust stock")
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	r.logger.Info().
		Int64("product_id", id).
		Str("operation", operation).
		Int("quantity", quantity).
		Msg("stock adjusted")

	return r.get(ctx, id, false)
}

// ListLowStock retrieves active products at or below their stock threshold.
func (r *productRepository) ListLowStock(ctx context.Context) ([]model.Product, error) {
	query := productSelect + `
		WHERE p.is_active = true
		  AND p.type = 'physical'
		  AND (p.stock = 0 OR p.stock <= COALESCE(p.min_stock, 5))
		ORDER BY p.stock ASC, p.name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query low stock products")
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}
	return collectProducts(rows)
}

// stockSortColumns maps the stock table's sort names to columns.
var stockSortColumns = map[string]string{
	"name":       "p.name",
	"stock":      "p.stock",
	"category":   "c.name",
	"created_at": "p.created_at",
}

// ListStock retrieves a page of all products, inactive ones included, for
// the stock table. Search matches the product or category name.
func (r *productRepository) ListStock(ctx context.Context, q model.ListQuery) ([]model.Product, int, error) {
	where := ""
	var args []any
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where = "WHERE (p.name ILIKE $1 OR c.name ILIKE $1)"
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM products p LEFT JOIN categories c ON p.category_id = c.id ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count stock products")
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	args = append(args, q.Limit, q.Offset())
	query := fmt.Sprintf("%s %s %s LIMIT $%d OFFSET $%d",
		productSelect, where, orderBy(stockSortColumns, q, "p.name ASC", "p.id ASC"), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).
			Str("sort", q.Sort).
			Int("page", q.Page).
			Msg("failed to query stock products")
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read stock product rows")
		return nil, 0, err
	}
	return products, total, nil
}
