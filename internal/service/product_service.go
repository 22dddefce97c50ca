package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"storefront/internal/media"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultProductLimit = 20
	defaultPageLimit    = 12
	defaultTableLimit   = 10
	maxLimit            = 100

	// maxPage keeps (page-1)*limit far inside the OFFSET range.
	maxPage = 100_000
)

// checkPage rejects page numbers whose offset could not be queried.
func checkPage(page int) error {
	if page > maxPage {
		return model.ValidationError("page cannot exceed %d", maxPage)
	}
	return nil
}

// normaliseListQuery applies the back-office table defaults and bounds.
func normaliseListQuery(q model.ListQuery) (model.ListQuery, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if err := checkPage(q.Page); err != nil {
		return q, err
	}
	if q.Limit <= 0 {
		q.Limit = defaultTableLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Sort = strings.ToLower(strings.TrimSpace(q.Sort))
	return q, nil
}

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	media       media.Store
	logger      zerolog.Logger

	now func() time.Time
}

// NewProductService creates a new product service. store receives product
// images.
func NewProductService(productRepo repository.ProductRepository, store media.Store, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		media:       store,
		logger:      logger.With().Str("service", "product").Logger(),
		now:         time.Now,
	}
}

// List retrieves active products with limit/offset paging.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultProductLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", filter.Limit).
		Int("offset", filter.Offset).
		Msg("retrieved products")

	return products, nil
}

// ListPage retrieves one page of active products along with the total.
func (s *productService) ListPage(ctx context.Context, filter model.ProductFilter, page, limit int) (*model.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if err := checkPage(page); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Int("page", page).Msg("failed to list products page")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count products")
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	return &model.ProductPage{Products: products, Page: page, Limit: limit, Total: total}, nil
}

// GetByID retrieves a single active product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, model.ValidationError("Invalid product ID")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.ProductNotFoundError(id)
	}

	return product, nil
}

// GetBySlug retrieves a single active product by slug.
func (s *productService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get product by slug")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.NewDomainError(model.ErrCodeProductNotFound, "Product not found")
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, in *model.ProductInput) (*model.Product, error) {
	if in == nil {
		return nil, model.ErrValidation
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Int64("product_id", product.ID).Str("slug", product.Slug).Msg("product created")

	return product, nil
}

func (s *productService) Update(ctx context.Context, id int64, in *model.ProductInput) (*model.Product, error) {
	if in == nil {
		return nil, model.ErrValidation
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if product == nil {
		return nil, model.ProductNotFoundError(id)
	}

	return product, nil
}

// Delete soft-deletes a product so past orders keep their reference.
func (s *productService) Delete(ctx context.Context, id int64) error {
	found, err := s.productRepo.Deactivate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !found {
		return model.ProductNotFoundError(id)
	}

	s.logger.Info().Int64("product_id", id).Msg("product deactivated")

	return nil
}

func (s *productService) AdjustStock(ctx context.Context, adj *model.StockAdjustment) (*model.Product, error) {
	if adj == nil {
		return nil, model.ValidationError("productId, quantity, and operation are required")
	}
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.AdjustStock(ctx, adj.ProductID, *adj.Quantity, adj.Operation)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	if product == nil {
		return nil, model.ProductNotFoundError(adj.ProductID)
	}

	return product, nil
}

func (s *productService) ListLowStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	return products, nil
}

// ListStock retrieves one page of the admin stock table.
func (s *productService) ListStock(ctx context.Context, q model.ListQuery) (*model.StockPage, error) {
	q, err := normaliseListQuery(q)
	if err != nil {
		return nil, err
	}

	products, total, err := s.productRepo.ListStock(ctx, q)
	if err != nil {
		s.logger.Error().Err(err).Int("page", q.Page).Msg("failed to list stock")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return &model.StockPage{
		Products:   products,
		Pagination: model.NewPagination(total, q.Page, q.Limit),
	}, nil
}

// UploadImage stores a product image under <unix millis>-<sanitised name>
// and returns its URL.
func (s *productService) UploadImage(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*model.ImageUpload, error) {
	if !media.IsAllowedProductImageType(contentType) {
		return nil, model.ValidationError("Invalid file type. Only JPEG, PNG, and WebP are allowed.")
	}
	if size > media.MaxImageSize {
		return nil, model.ValidationError("File too large. Maximum size is 5MB.")
	}

	clean := media.SanitiseName(filename)
	if clean == "" {
		clean = "image" + media.ExtensionFor(contentType)
	}
	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), clean)

	url, err := s.media.Save(ctx, name, contentType, body)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", name).Msg("failed to store product image")
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	s.logger.Info().Str("filename", name).Int64("size", size).Msg("product image uploaded")

	return &model.ImageUpload{Filename: name, URL: url}, nil
}
