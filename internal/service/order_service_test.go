package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository/memstore"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var checkoutTime = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newCheckoutService(store *memstore.Store) (*orderService, *MockSettingsRepository) {
	settingsRepo := new(MockSettingsRepository)
	settingsRepo.On("Get", mock.Anything).
		Return(&model.StoreSettings{AdminPhone: "081234567890"}, nil).Maybe()

	svc := NewOrderService(store, new(MockOrderRepository), settingsRepo, zerolog.Nop()).(*orderService)
	svc.now = func() time.Time { return checkoutTime }
	seq := 0
	svc.orderNumber = func(now time.Time) string {
		seq++
		return fmt.Sprintf("ORD-%d-%05d", now.UnixMilli(), seq)
	}
	return svc, settingsRepo
}

func physical(id int64, name string, price int64, stock int) model.Product {
	return model.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		Type:     model.ProductTypePhysical,
		IsActive: true,
	}
}

func activePromo(id int64, code, discountType string, value, minPurchase int64) model.PromoCode {
	return model.PromoCode{
		ID:            id,
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: decimal.NewFromInt(value),
		MinPurchase:   decimal.NewFromInt(minPurchase),
		ValidFrom:     checkoutTime.Add(-24 * time.Hour),
		IsActive:      true,
	}
}

func orderRequest(items ...model.CreateOrderItemRequest) *model.CreateOrderRequest {
	return &model.CreateOrderRequest{
		CustomerName:  "Siti",
		CustomerPhone: "081299990000",
		Items:         items,
	}
}

func line(productID int64, quantity int) model.CreateOrderItemRequest {
	return model.CreateOrderItemRequest{ProductID: productID, Quantity: quantity}
}

func strPtr(s string) *string { return &s }

func TestOrderService_PlaceOrder_Success(t *testing.T) {
	store := memstore.New()
	store.AddProduct(physical(1, "Beras 5kg", 65000, 10))
	store.AddProduct(physical(2, "Minyak Goreng 1L", 18000, 4))
	svc, _ := newCheckoutService(store)

	req := orderRequest(line(1, 2), line(2, 1))
	req.CustomerEmail = strPtr("siti@example.com")

	receipt, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, receipt)

	order := receipt.Order
	assert.NotZero(t, order.ID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, decimal.NewFromInt(148000).Equal(order.Subtotal))
	assert.True(t, order.DiscountAmount.IsZero())
	assert.True(t, decimal.NewFromInt(148000).Equal(order.TotalAmount))
	assert.Nil(t, order.PromoCode)
	assert.Equal(t, checkoutTime, order.CreatedAt)

	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "Beras 5kg", receipt.Items[0].ProductName)
	assert.True(t, decimal.NewFromInt(130000).Equal(receipt.Items[0].Subtotal))
	assert.Equal(t, order.ID, receipt.Items[1].OrderID)

	p1, _ := store.Product(1)
	p2, _ := store.Product(2)
	assert.Equal(t, 8, p1.Stock)
	assert.Equal(t, 3, p2.Stock)

	customer, ok := store.CustomerByPhone("081299990000")
	require.True(t, ok)
	assert.Equal(t, 1, customer.OrderCount)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, customer.ID, *order.CustomerID)

	assert.True(t, strings.HasPrefix(receipt.WhatsAppURL, "https://wa.me/6281234567890?text="))
	assert.Len(t, store.Items(order.ID), 2)
}

func TestOrderService_PlaceOrder_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  *model.CreateOrderRequest
	}{
		{name: "nil request", req: nil},
		{name: "missing name", req: &model.CreateOrderRequest{CustomerPhone: "0812", Items: []model.CreateOrderItemRequest{line(1, 1)}}},
		{name: "blank name", req: &model.CreateOrderRequest{CustomerName: "  ", CustomerPhone: "0812", Items: []model.CreateOrderItemRequest{line(1, 1)}}},
		{name: "missing phone", req: &model.CreateOrderRequest{CustomerName: "Siti", Items: []model.CreateOrderItemRequest{line(1, 1)}}},
		{name: "no items", req: &model.CreateOrderRequest{CustomerName: "Siti", CustomerPhone: "0812"}},
		{name: "zero quantity", req: orderRequest(line(1, 0))},
		{name: "missing product id", req: orderRequest(line(0, 1))},
		{name: "quantity over the line limit", req: orderRequest(line(1, 1<<31))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			store.AddProduct(physical(1, "Gula", 15000, 10))
			svc, _ := newCheckoutService(store)

			receipt, err := svc.PlaceOrder(context.Background(), tt.req)
			assert.Nil(t, receipt)
			assert.ErrorIs(t, err, model.ErrValidation)
			assert.Empty(t, store.Orders())
		})
	}
}

func TestOrderService_PlaceOrder_InsufficientStockLeavesStock(t *testing.T) {
	store := memstore.New()
	store.AddProduct(physical(1, "Telur 1kg", 28000, 3))
	svc, _ := newCheckoutService(store)

	receipt, err := svc.PlaceOrder(context.Background(), orderRequest(line(1, 5)))
	assert.Nil(t, receipt)
	require.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Telur 1kg")

	p, _ := store.Product(1)
	assert.Equal(t, 3, p.Stock)
	assert.Equal(t, 0, store.Customers())
	assert.Empty(t, store.Orders())
}

func TestOrderService_PlaceOrder_RollsBackEarlierLines(t *testing.T) {
	tests := []struct {
		name    string
		second  model.Product
		wantErr error
	}{
		{name: "unknown product", second: model.Product{}, wantErr: model.ErrProductNotFound},
		{name: "inactive product", second: model.Product{ID: 2, Name: "Kopi", Price: decimal.NewFromInt(5000), Stock: 10, Type: model.ProductTypePhysical}, wantErr: model.ErrProductNotFound},
		{name: "insufficient stock", second: physical(2, "Kopi", 5000, 1), wantErr: model.ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			store.AddProduct(physical(1, "Beras", 60000, 10))
			if tt.second.ID != 0 {
				store.AddProduct(tt.second)
			}
			promo := activePromo(1, "HEMAT", model.DiscountTypeFixed, 1000, 0)
			store.AddPromo(promo)
			svc, _ := newCheckoutService(store)

			req := orderRequest(line(1, 4), line(2, 2))
			req.PromoCode = strPtr("HEMAT")

			_, err := svc.PlaceOrder(context.Background(), req)
			require.ErrorIs(t, err, tt.wantErr)

			p, _ := store.Product(1)
			assert.Equal(t, 10, p.Stock)
			got, _ := store.Promo(1)
			assert.Equal(t, 0, got.UsageCount)
			assert.Equal(t, 0, store.Customers())
			assert.Empty(t, store.Orders())
		})
	}
}

func TestOrderService_PlaceOrder_ProductNotFoundNamesID(t *testing.T) {
	svc, _ := newCheckoutService(memstore.New())

	_, err := svc.PlaceOrder(context.Background(), orderRequest(line(42, 1)))
	require.ErrorIs(t, err, model.ErrProductNotFound)
	assert.Equal(t, "Product with ID 42 not found", err.Error())
}

func TestOrderService_PlaceOrder_SameProductTwice(t *testing.T) {
	t.Run("second line sees reduced stock", func(t *testing.T) {
		store := memstore.New()
		store.AddProduct(physical(1, "Sabun", 4000, 5))
		svc, _ := newCheckoutService(store)

		_, err := svc.PlaceOrder(context.Background(), orderRequest(line(1, 3), line(1, 3)))
		require.ErrorIs(t, err, model.ErrInsufficientStock)

		p, _ := store.Product(1)
		assert.Equal(t, 5, p.Stock)
	})

	t.Run("both lines fit", func(t *testing.T) {
		store := memstore.New()
		store.AddProduct(physical(1, "Sabun", 4000, 5))
		svc, _ := newCheckoutService(store)

		receipt, err := svc.PlaceOrder(context.Background(), orderRequest(line(1, 2), line(1, 3)))
		require.NoError(t, err)
		assert.Len(t, receipt.Items, 2)
		assert.True(t, decimal.NewFromInt(20000).Equal(receipt.Order.Subtotal))

		p, _ := store.Product(1)
		assert.Equal(t, 0, p.Stock)
	})
}

func TestOrderService_PlaceOrder_VoucherIgnoresStock(t *testing.T) {
	store := memstore.New()
	voucher := physical(1, "Pulsa 50rb", 51000, 0)
	voucher.Type = model.ProductTypeVoucher
	store.AddProduct(voucher)
	svc, _ := newCheckoutService(store)

	receipt, err := svc.PlaceOrder(context.Background(), orderRequest(line(1, 3)))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(153000).Equal(receipt.Order.TotalAmount))

	p, _ := store.Product(1)
	assert.Equal(t, 0, p.Stock)
}

func TestOrderService_PlaceOrder_TotalTooLarge(t *testing.T) {
	store := memstore.New()
	voucher := physical(1, "Voucher Emas", 9_000_000_000, 0)
	voucher.Type = model.ProductTypeVoucher
	store.AddProduct(voucher)
	store.AddProduct(physical(2, "Beras", 60000, 10))
	svc, _ := newCheckoutService(store)

	receipt, err := svc.PlaceOrder(context.Background(), orderRequest(line(2, 1), line(1, 2)))
	assert.Nil(t, receipt)
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, "Order total is too large", err.Error())

	p, _ := store.Product(2)
	assert.Equal(t, 10, p.Stock)
	assert.Empty(t, store.Orders())
}

func TestOrderService_PlaceOrder_Welcome10(t *testing.T) {
	store := memstore.New()
	store.AddProduct(physical(1, "Paket Sembako", 50000, 10))
	store.AddPromo(activePromo(1, "WELCOME10", model.DiscountTypePercentage, 10, 50000))
	svc, _ := newCheckoutService(store)

	req := orderRequest(line(1, 2))
	req.PromoCode = strPtr(" welcome10 ")

	receipt, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	order := receipt.Order
	assert.True(t, decimal.NewFromInt(100000).Equal(order.Subtotal))
	assert.True(t, decimal.NewFromInt(10000).Equal(order.DiscountAmount))
	assert.True(t, decimal.NewFromInt(90000).Equal(order.TotalAmount))
	require.NotNil(t, order.PromoCode)
	assert.Equal(t, "WELCOME10", *order.PromoCode)

	p, _ := store.Promo(1)
	assert.Equal(t, 1, p.UsageCount)
}

func TestOrderService_PlaceOrder_PromoPolicy(t *testing.T) {
	expired := activePromo(1, "OLD", model.DiscountTypeFixed, 5000, 0)
	past := checkoutTime.Add(-time.Hour)
	expired.ValidUntil = &past

	exhausted := activePromo(1, "FULL", model.DiscountTypeFixed, 5000, 0)
	limit := 3
	exhausted.UsageLimit = &limit
	exhausted.UsageCount = 3

	inactive := activePromo(1, "OFF", model.DiscountTypeFixed, 5000, 0)
	inactive.IsActive = false

	future := activePromo(1, "SOON", model.DiscountTypeFixed, 5000, 0)
	future.ValidFrom = checkoutTime.Add(time.Hour)

	capped := activePromo(1, "BIG20", model.DiscountTypePercentage, 20, 0)
	maxDiscount := decimal.NewFromInt(25000)
	capped.MaxDiscount = &maxDiscount

	tests := []struct {
		name         string
		promo        *model.PromoCode
		code         string
		wantDiscount int64
		wantUsage    int
	}{
		{name: "unknown code", code: "NOPE", wantDiscount: 0},
		{name: "min purchase not reached", promo: ptrPromo(activePromo(1, "MIN", model.DiscountTypePercentage, 10, 600000)), code: "MIN", wantDiscount: 0},
		{name: "expired", promo: &expired, code: "OLD", wantDiscount: 0},
		{name: "usage exhausted", promo: &exhausted, code: "FULL", wantDiscount: 0, wantUsage: 3},
		{name: "inactive", promo: &inactive, code: "OFF", wantDiscount: 0},
		{name: "not started", promo: &future, code: "SOON", wantDiscount: 0},
		{name: "percentage capped", promo: &capped, code: "big20", wantDiscount: 25000, wantUsage: 1},
		{name: "fixed larger than subtotal", promo: ptrPromo(activePromo(1, "MEGA", model.DiscountTypeFixed, 900000, 0)), code: "MEGA", wantDiscount: 500000, wantUsage: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			store.AddProduct(physical(1, "Karung Beras", 250000, 10))
			if tt.promo != nil {
				store.AddPromo(*tt.promo)
			}
			svc, _ := newCheckoutService(store)

			req := orderRequest(line(1, 2))
			req.PromoCode = strPtr(tt.code)

			receipt, err := svc.PlaceOrder(context.Background(), req)
			require.NoError(t, err)

			order := receipt.Order
			assert.True(t, decimal.NewFromInt(tt.wantDiscount).Equal(order.DiscountAmount), "discount %s", order.DiscountAmount)
			assert.True(t, order.Subtotal.Sub(order.DiscountAmount).Equal(order.TotalAmount))
			assert.True(t, order.DiscountAmount.LessThanOrEqual(order.Subtotal))
			assert.False(t, order.TotalAmount.IsNegative())
			if tt.wantDiscount == 0 {
				assert.Nil(t, order.PromoCode)
			}

			if tt.promo != nil {
				p, _ := store.Promo(1)
				assert.Equal(t, tt.wantUsage, p.UsageCount)
			}
		})
	}
}

func ptrPromo(p model.PromoCode) *model.PromoCode { return &p }

func TestOrderService_PlaceOrder_RepeatCustomer(t *testing.T) {
	store := memstore.New()
	store.AddProduct(physical(1, "Air Mineral", 3500, 100))
	svc, _ := newCheckoutService(store)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, orderRequest(line(1, 1)))
	require.NoError(t, err)

	second := checkoutTime.Add(2 * time.Hour)
	svc.now = func() time.Time { return second }

	_, err = svc.PlaceOrder(ctx, orderRequest(line(1, 2)))
	require.NoError(t, err)

	assert.Equal(t, 1, store.Customers())
	customer, ok := store.CustomerByPhone("081299990000")
	require.True(t, ok)
	assert.Equal(t, 2, customer.OrderCount)
	assert.Equal(t, second, customer.LastOrderDate)
	assert.Len(t, store.Orders(), 2)
}

func TestOrderService_PlaceOrder_DuplicateOrderNumber(t *testing.T) {
	store := memstore.New()
	store.AddProduct(physical(1, "Mie Instan", 3000, 40))
	store.AddOrder(model.Order{OrderNumber: "ORD-1-AAAAA"})
	svc, _ := newCheckoutService(store)
	svc.orderNumber = func(time.Time) string { return "ORD-1-AAAAA" }

	receipt, err := svc.PlaceOrder(context.Background(), orderRequest(line(1, 10)))
	assert.Nil(t, receipt)
	require.ErrorIs(t, err, model.ErrDuplicateOrderNumber)

	p, _ := store.Product(1)
	assert.Equal(t, 40, p.Stock)
	assert.Equal(t, 0, store.Customers())
	assert.Len(t, store.Orders(), 1)
}

func TestOrderService_PlaceOrder_PersistenceFailure(t *testing.T) {
	store := memstore.New()
	store.AddProduct(physical(1, "Teh Celup", 7000, 20))
	connErr := errors.New("connection reset by peer")
	store.FailOn("InsertOrderItems", connErr)
	svc, _ := newCheckoutService(store)

	_, err := svc.PlaceOrder(context.Background(), orderRequest(line(1, 2)))
	require.ErrorIs(t, err, model.ErrPersistence)
	assert.ErrorIs(t, err, connErr)
	assert.Equal(t, "Failed to create order", err.Error())

	p, _ := store.Product(1)
	assert.Equal(t, 20, p.Stock)
	assert.Empty(t, store.Orders())
	assert.Equal(t, 0, store.Customers())
}

func TestOrderService_PlaceOrder_SettingsFailureOmitsLink(t *testing.T) {
	store := memstore.New()
	store.AddProduct(physical(1, "Kecap", 12000, 5))

	settingsRepo := new(MockSettingsRepository)
	settingsRepo.On("Get", mock.Anything).Return(nil, errors.New("db down"))
	svc := NewOrderService(store, new(MockOrderRepository), settingsRepo, zerolog.Nop())

	receipt, err := svc.PlaceOrder(context.Background(), orderRequest(line(1, 1)))
	require.NoError(t, err)
	assert.Empty(t, receipt.WhatsAppURL)
	assert.Len(t, store.Orders(), 1)
}

func TestOrderService_PlaceOrder_DefaultAdminPhone(t *testing.T) {
	store := memstore.New()
	store.AddProduct(physical(1, "Kecap", 12000, 5))

	settingsRepo := new(MockSettingsRepository)
	settingsRepo.On("Get", mock.Anything).Return(nil, nil)
	svc := NewOrderService(store, new(MockOrderRepository), settingsRepo, zerolog.Nop())

	receipt, err := svc.PlaceOrder(context.Background(), orderRequest(line(1, 1)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(receipt.WhatsAppURL, "https://wa.me/"+model.DefaultAdminPhone+"?text="))
}

func TestNewOrderNumber(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	a := newOrderNumber(now)
	b := newOrderNumber(now)

	assert.Regexp(t, `^ORD-1700000000123-[0-9A-F]{5}$`, a)
	assert.Regexp(t, `^ORD-1700000000123-[0-9A-F]{5}$`, b)
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc := NewOrderService(memstore.New(), orderRepo, new(MockSettingsRepository), zerolog.Nop())

		orders := []model.Order{{ID: 1, OrderNumber: "ORD-1"}}
		orderRepo.On("List", ctx, model.OrderFilter{Page: 1, Limit: 10}).Return(orders, 23, nil)

		page, err := svc.List(ctx, model.OrderFilter{})
		require.NoError(t, err)
		assert.Equal(t, orders, page.Orders)
		assert.Equal(t, model.Pagination{Total: 23, TotalPages: 3, CurrentPage: 1, Limit: 10}, page.Pagination)
		orderRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc := NewOrderService(memstore.New(), orderRepo, new(MockSettingsRepository), zerolog.Nop())

		_, err := svc.List(ctx, model.OrderFilter{Status: "shipped"})
		assert.ErrorIs(t, err, model.ErrValidation)
		orderRepo.AssertNotCalled(t, "List")
	})

	t.Run("rejects page beyond range", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc := NewOrderService(memstore.New(), orderRepo, new(MockSettingsRepository), zerolog.Nop())

		_, err := svc.List(ctx, model.OrderFilter{Page: math.MaxInt / 2})
		assert.ErrorIs(t, err, model.ErrValidation)
		orderRepo.AssertNotCalled(t, "List")
	})

	t.Run("repository error", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc := NewOrderService(memstore.New(), orderRepo, new(MockSettingsRepository), zerolog.Nop())
		orderRepo.On("List", ctx, mock.Anything).Return(nil, 0, errors.New("timeout"))

		_, err := svc.List(ctx, model.OrderFilter{Page: 2, Limit: 500})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list orders")
	})
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	svc := NewOrderService(memstore.New(), orderRepo, new(MockSettingsRepository), zerolog.Nop())

	found := &model.OrderWithItems{Order: model.Order{ID: 5}}
	orderRepo.On("GetByID", ctx, int64(5)).Return(found, nil)
	orderRepo.On("GetByID", ctx, int64(6)).Return(nil, nil)

	got, err := svc.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, found, got)

	_, err = svc.GetByID(ctx, 6)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	notes := strPtr("dikirim kurir")

	tests := []struct {
		name    string
		upd     *model.OrderStatusUpdate
		setup   func(m *MockOrderRepository)
		wantErr error
	}{
		{
			name: "success",
			upd:  &model.OrderStatusUpdate{Status: model.OrderStatusProcessing, Notes: notes},
			setup: func(m *MockOrderRepository) {
				m.On("UpdateStatus", ctx, int64(1), model.OrderStatusProcessing, notes).
					Return(&model.Order{ID: 1, Status: model.OrderStatusProcessing, Notes: notes}, nil)
			},
		},
		{
			name:    "invalid status",
			upd:     &model.OrderStatusUpdate{Status: "lost"},
			setup:   func(m *MockOrderRepository) {},
			wantErr: model.ErrValidation,
		},
		{
			name: "not found",
			upd:  &model.OrderStatusUpdate{Status: model.OrderStatusCancelled},
			setup: func(m *MockOrderRepository) {
				m.On("UpdateStatus", ctx, int64(1), model.OrderStatusCancelled, (*string)(nil)).Return(nil, nil)
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			tt.setup(orderRepo)
			svc := NewOrderService(memstore.New(), orderRepo, new(MockSettingsRepository), zerolog.Nop())

			order, err := svc.UpdateStatus(ctx, 1, tt.upd)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, order)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.upd.Status, order.Status)
			orderRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_Stats(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	svc := NewOrderService(memstore.New(), orderRepo, new(MockSettingsRepository), zerolog.Nop())

	stats := &model.DashboardStats{TotalOrders: 4, PendingOrders: 1, TotalRevenue: decimal.NewFromInt(90000)}
	orderRepo.On("Stats", ctx).Return(stats, nil)

	got, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}
