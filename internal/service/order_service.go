package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/promo"
	"storefront/internal/repository"
	"storefront/internal/whatsapp"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	uow          repository.UnitOfWork
	orderRepo    repository.OrderRepository
	settingsRepo repository.SettingsRepository
	logger       zerolog.Logger

	now         func() time.Time
	orderNumber func(time.Time) string
}

// NewOrderService creates a new order service.
func NewOrderService(
	uow repository.UnitOfWork,
	orderRepo repository.OrderRepository,
	settingsRepo repository.SettingsRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		uow:          uow,
		orderRepo:    orderRepo,
		settingsRepo: settingsRepo,
		logger:       logger.With().Str("service", "order").Logger(),
		now:          time.Now,
		orderNumber:  newOrderNumber,
	}
}

// newOrderNumber returns ORD-<unix millis>-<5 upper-case hex chars>.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:5])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}

// checkout carries the state built up inside the transaction.
type checkout struct {
	req      *model.CreateOrderRequest
	now      time.Time
	items    []model.OrderItem
	subtotal decimal.Decimal
	discount decimal.Decimal
	promo    *model.PromoCode
	customer *model.Customer
	order    *model.Order
}

// PlaceOrder validates the request and then, in one transaction, reserves
// stock, applies the promo, records the customer and inserts the order.
// Any failure leaves the database untouched.
func (s *orderService) PlaceOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderReceipt, error) {
	if req != nil {
		req.Normalise()
	}
	if err := req.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("invalid order request")
		return nil, err
	}

	now := s.now()
	co := &checkout{req: req, now: now, subtotal: decimal.Zero, discount: decimal.Zero}

	err := s.uow.Run(ctx, func(ctx context.Context, store repository.CheckoutStore) error {
		if err := s.reserveItems(ctx, store, co); err != nil {
			return err
		}
		if err := s.applyPromo(ctx, store, co); err != nil {
			return err
		}
		if err := s.recordCustomer(ctx, store, co); err != nil {
			return err
		}
		return s.persist(ctx, store, co)
	})
	if err != nil {
		return nil, s.classify(err, req)
	}

	receipt := &model.OrderReceipt{Order: co.order, Items: co.items}
	receipt.WhatsAppURL = s.whatsAppURL(ctx, receipt)

	s.logger.Info().
		Int64("order_id", co.order.ID).
		Str("order_number", co.order.OrderNumber).
		Int("item_count", len(co.items)).
		Str("total", co.order.TotalAmount.StringFixed(2)).
		Msg("order created successfully")

	return receipt, nil
}

// reserveItems checks and decrements stock line by line, in request order.
func (s *orderService) reserveItems(ctx context.Context, store repository.CheckoutStore, co *checkout) error {
	co.items = make([]model.OrderItem, 0, len(co.req.Items))

	for _, line := range co.req.Items {
		product, err := store.LockProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			s.logger.Warn().Int64("product_id", line.ProductID).Msg("product not found")
			return model.ProductNotFoundError(line.ProductID)
		}

		if product.IsPhysical() {
			if product.Stock < line.Quantity {
				s.logger.Warn().
					Int64("product_id", product.ID).
					Int("stock", product.Stock).
					Int("quantity", line.Quantity).
					Msg("insufficient stock")
				return model.InsufficientStockError(product.Name)
			}
			if err := store.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
				return err
			}
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		co.subtotal = co.subtotal.Add(lineTotal)
		co.items = append(co.items, model.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     line.Quantity,
			Subtotal:     lineTotal,
			CreatedAt:    co.now,
		})
	}

	if co.subtotal.GreaterThan(model.MaxAmount) {
		s.logger.Warn().Str("subtotal", co.subtotal.String()).Msg("order total too large")
		return model.ValidationError("Order total is too large")
	}

	return nil
}

// applyPromo applies a qualifying promo code. A code that does not qualify
// is ignored.
func (s *orderService) applyPromo(ctx context.Context, store repository.CheckoutStore, co *checkout) error {
	if co.req.PromoCode == nil {
		return nil
	}

	p, err := store.LockPromoByCode(ctx, promo.NormaliseCode(*co.req.PromoCode))
	if err != nil {
		return err
	}

	result := promo.Evaluate(p, co.subtotal, co.now)
	if !result.Qualifies {
		s.logger.Info().
			Str("promo_code", *co.req.PromoCode).
			Str("reason", result.Reason).
			Msg("promo code not applied")
		return nil
	}

	if err := store.IncrementPromoUsage(ctx, p.ID); err != nil {
		return err
	}
	co.promo = p
	co.discount = result.Discount
	return nil
}

// recordCustomer upserts the customer keyed by phone number.
func (s *orderService) recordCustomer(ctx context.Context, store repository.CheckoutStore, co *checkout) error {
	customer, err := store.LockCustomer(ctx, co.req.CustomerPhone, co.now)
	if err != nil {
		return err
	}

	co.customer, err = store.RecordCustomerOrder(ctx, customer.ID, co.now)
	return err
}

func (s *orderService) persist(ctx context.Context, store repository.CheckoutStore, co *checkout) error {
	order := &model.Order{
		OrderNumber:    s.orderNumber(co.now),
		CustomerID:     &co.customer.ID,
		CustomerName:   co.req.CustomerName,
		CustomerEmail:  co.req.CustomerEmail,
		CustomerPhone:  co.req.CustomerPhone,
		Status:         model.OrderStatusPending,
		Subtotal:       co.subtotal,
		DiscountAmount: co.discount,
		TotalAmount:    co.subtotal.Sub(co.discount),
		CreatedAt:      co.now,
		UpdatedAt:      co.now,
	}
	if co.promo != nil {
		code := co.promo.Code
		order.PromoCode = &code
	}

	if err := store.InsertOrder(ctx, order); err != nil {
		return err
	}
	if err := store.InsertOrderItems(ctx, order.ID, co.items); err != nil {
		return err
	}

	co.order = order
	return nil
}

// classify passes business failures through and wraps everything else as a
// persistence failure.
func (s *orderService) classify(err error, req *model.CreateOrderRequest) error {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	s.logger.Error().
		Err(err).
		Str("customer_phone", req.CustomerPhone).
		Int("item_count", len(req.Items)).
		Msg("failed to create order")
	return model.PersistenceError(err)
}

// whatsAppURL builds the hand-off link. Settings problems only drop the link.
func (s *orderService) whatsAppURL(ctx context.Context, receipt *model.OrderReceipt) string {
	phone := model.DefaultAdminPhone
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load store settings for WhatsApp link")
		return ""
	}
	if settings != nil && settings.AdminPhone != "" {
		phone = settings.AdminPhone
	}
	return whatsapp.OrderLink(phone, receipt)
}

// List retrieves a page of orders.
func (s *orderService) List(ctx context.Context, filter model.OrderFilter) (*model.OrderPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if err := checkPage(filter.Page); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Status != "" && !model.IsValidOrderStatus(filter.Status) {
		return nil, model.ValidationError("Invalid status")
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.OrderPage{
		Orders:     orders,
		Pagination: model.NewPagination(total, filter.Page, filter.Limit),
	}, nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id int64) (*model.OrderWithItems, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.NewDomainError(model.ErrCodeNotFound, "Order not found")
	}
	return order, nil
}

// UpdateStatus moves an order to a new status.
func (s *orderService) UpdateStatus(ctx context.Context, id int64, upd *model.OrderStatusUpdate) (*model.Order, error) {
	if upd == nil || !model.IsValidOrderStatus(upd.Status) {
		return nil, model.ValidationError("Invalid status")
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, upd.Status, upd.Notes)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.NewDomainError(model.ErrCodeNotFound, "Order not found")
	}
	return order, nil
}

// Stats computes the dashboard counters.
func (s *orderService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get dashboard stats")
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return stats, nil
}
