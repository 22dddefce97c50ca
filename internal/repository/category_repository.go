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

const categorySelect = `
	SELECT c.id, c.name, c.slug, c.icon, c.display_order, c.created_at, COUNT(p.id)
	FROM categories c
	LEFT JOIN products p ON c.id = p.category_id AND p.is_active = true
`

type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

func scanCategory(row scanner) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.DisplayOrder, &c.CreatedAt, &c.ProductCount); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, categorySelect+` GROUP BY c.id ORDER BY c.display_order ASC, c.name ASC`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	return collectCategories(rows)
}

func collectCategories(rows pgx.Rows) ([]model.Category, error) {
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, categorySelect+` WHERE c.id = $1 GROUP BY c.id`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return c, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, categorySelect+` WHERE c.slug = $1 GROUP BY c.id`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return c, nil
}

// categorySortColumns maps the category table's sort names to columns.
var categorySortColumns = map[string]string{
	"name":          "c.name",
	"created_at":    "c.created_at",
	"product_count": "COUNT(p.id)",
}

// ListPage retrieves a page of categories whose name matches the search.
func (r *categoryRepository) ListPage(ctx context.Context, q model.ListQuery) ([]model.Category, int, error) {
	where := ""
	var args []any
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where = "WHERE c.name ILIKE $1"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories c `+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count categories")
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	args = append(args, q.Limit, q.Offset())
	query := fmt.Sprintf("%s %s GROUP BY c.id %s LIMIT $%d OFFSET $%d",
		categorySelect, where,
		orderBy(categorySortColumns, q, "c.display_order ASC, c.name ASC", "c.id ASC"),
		len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("sort", q.Sort).Int("page", q.Page).Msg("failed to query categories page")
		return nil, 0, fmt.Errorf("failed to query categories: %w", err)
	}
	categories, err := collectCategories(rows)
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func (r *categoryRepository) Create(ctx context.Context, in *model.CategoryInput) (*model.Category, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, slug, icon, display_order) VALUES ($1, $2, $3, $4) RETURNING id`,
		in.Name, in.Slug, in.Icon, in.DisplayOrder,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, model.ValidationError("Category slug %q already exists", in.Slug)
		}
		r.logger.Error().Err(err).Str("slug", in.Slug).Msg("failed to create category")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *categoryRepository) Update(ctx context.Context, id int64, in *model.CategoryInput) (*model.Category, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $2, slug = $3, icon = $4, display_order = $5 WHERE id = $1`,
		id, in.Name, in.Slug, in.Icon, in.DisplayOrder,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, model.ValidationError("Category slug %q already exists", in.Slug)
		}
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to update category")
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to delete category")
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
