package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type customerService struct {
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
	logger       zerolog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
	logger zerolog.Logger,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		logger:       logger.With().Str("service", "customer").Logger(),
	}
}

func (s *customerService) List(ctx context.Context, search string, limit, offset int) (*model.CustomerPage, error) {
	if limit <= 0 {
		limit = defaultProductLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	customers, total, err := s.customerRepo.List(ctx, strings.TrimSpace(search), limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list customers")
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}

	return &model.CustomerPage{Customers: customers, Total: total}, nil
}

// GetDetail returns a customer with their order history. The display name
// comes from the most recent order since customers only store a phone.
func (s *customerService) GetDetail(ctx context.Context, id int64) (*model.CustomerDetail, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, model.NewDomainError(model.ErrCodeNotFound, "Customer not found")
	}

	orders, err := s.orderRepo.ListByCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer orders: %w", err)
	}
	if orders == nil {
		orders = []model.OrderWithItems{}
	}

	detail := &model.CustomerDetail{
		Customer:    *customer,
		Orders:      orders,
		TotalOrders: len(orders),
		TotalSpent:  decimal.Zero,
	}
	for _, o := range orders {
		detail.TotalSpent = detail.TotalSpent.Add(o.TotalAmount)
	}
	if len(orders) > 0 {
		name := orders[0].CustomerName
		detail.CustomerName = &name
	}

	return detail, nil
}
