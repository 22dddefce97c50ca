package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/promo"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

type promoService struct {
	promoRepo repository.PromoRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPromoService creates a new promo code service.
func NewPromoService(promoRepo repository.PromoRepository, logger zerolog.Logger) PromoService {
	return &promoService{
		promoRepo: promoRepo,
		logger:    logger.With().Str("service", "promo").Logger(),
		now:       time.Now,
	}
}

// Validate applies the checkout rules to a code and total without
// reserving anything. A code that does not apply is a normal answer.
func (s *promoService) Validate(ctx context.Context, req *model.PromoValidationRequest) (*model.PromoValidation, error) {
	if req == nil || req.TotalAmount == nil {
		return nil, model.ValidationError("Code and total amount are required")
	}
	code := promo.NormaliseCode(req.Code)
	if code == "" {
		return nil, model.ValidationError("Code and total amount are required")
	}

	p, err := s.promoRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to validate promo code: %w", err)
	}

	result := promo.Evaluate(p, *req.TotalAmount, s.now())
	validation := &model.PromoValidation{
		IsValid:        result.Qualifies,
		DiscountAmount: result.Discount,
		Message:        result.Reason,
	}
	if result.Qualifies {
		id := p.ID
		validation.PromoID = &id
	}

	s.logger.Debug().
		Str("promo_code", code).
		Bool("is_valid", validation.IsValid).
		Str("discount", validation.DiscountAmount.StringFixed(2)).
		Msg("promo code validated")

	return validation, nil
}

func (s *promoService) ListActive(ctx context.Context) ([]model.PromoCode, error) {
	promos, err := s.promoRepo.ListActive(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get promo codes: %w", err)
	}
	return promos, nil
}

func (s *promoService) Create(ctx context.Context, in *model.PromoCodeInput) (*model.PromoCode, error) {
	if in == nil {
		return nil, model.ErrValidation
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p, err := s.promoRepo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}
	return p, nil
}

func (s *promoService) SetActive(ctx context.Context, id int64, active bool) error {
	found, err := s.promoRepo.SetActive(ctx, id, active)
	if err != nil {
		return fmt.Errorf("failed to update promo code: %w", err)
	}
	if !found {
		return model.NewDomainError(model.ErrCodeNotFound, "Promo code not found")
	}

	s.logger.Info().Int64("promo_id", id).Bool("is_active", active).Msg("promo code status changed")

	return nil
}
