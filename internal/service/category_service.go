package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

func categoryNotFound() error {
	return model.NewDomainError(model.ErrCodeNotFound, "Category not found")
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, categoryNotFound()
	}
	return category, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, categoryNotFound()
	}
	return category, nil
}

// ListPage retrieves one page of categories for the back-office table.
func (s *categoryService) ListPage(ctx context.Context, q model.ListQuery) (*model.CategoryPage, error) {
	q, err := normaliseListQuery(q)
	if err != nil {
		return nil, err
	}

	categories, total, err := s.categoryRepo.ListPage(ctx, q)
	if err != nil {
		s.logger.Error().Err(err).Int("page", q.Page).Msg("failed to list categories page")
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	return &model.CategoryPage{
		Categories: categories,
		Pagination: model.NewPagination(total, q.Page, q.Limit),
	}, nil
}

func (s *categoryService) Create(ctx context.Context, in *model.CategoryInput) (*model.Category, error) {
	if in == nil {
		return nil, model.ErrValidation
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().Int64("category_id", category.ID).Str("slug", category.Slug).Msg("category created")

	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, in *model.CategoryInput) (*model.Category, error) {
	if in == nil {
		return nil, model.ErrValidation
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	if category == nil {
		return nil, categoryNotFound()
	}
	return category, nil
}

// Delete removes a category; its products keep existing without one.
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	found, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if !found {
		return categoryNotFound()
	}

	s.logger.Info().Int64("category_id", id).Msg("category deleted")

	return nil
}
