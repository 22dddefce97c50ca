// Package memstore is an in-memory UnitOfWork used by service tests. Each
// Run works on a copy of the state that replaces the live state only when
// the callback succeeds.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"
)

type state struct {
	products  map[int64]model.Product
	promos    map[int64]model.PromoCode
	customers map[int64]model.Customer
	orders    []model.Order
	items     []model.OrderItem

	nextCustomerID int64
	nextOrderID    int64
	nextItemID     int64
}

func (s *state) clone() *state {
	c := *s
	c.products = make(map[int64]model.Product, len(s.products))
	for k, v := range s.products {
		c.products[k] = v
	}
	c.promos = make(map[int64]model.PromoCode, len(s.promos))
	for k, v := range s.promos {
		c.promos[k] = v
	}
	c.customers = make(map[int64]model.Customer, len(s.customers))
	for k, v := range s.customers {
		c.customers[k] = v
	}
	c.orders = append([]model.Order(nil), s.orders...)
	c.items = append([]model.OrderItem(nil), s.items...)
	return &c
}

// Store is a thread-safe in-memory implementation of repository.UnitOfWork.
type Store struct {
	mu    sync.Mutex
	state *state

	// failOn holds injected errors keyed by CheckoutStore method name.
	failOn map[string]error
}

var _ repository.UnitOfWork = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		state: &state{
			products:  map[int64]model.Product{},
			promos:    map[int64]model.PromoCode{},
			customers: map[int64]model.Customer{},
		},
		failOn: map[string]error{},
	}
}

// AddProduct seeds a product.
func (s *Store) AddProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[p.ID] = p
}

// AddPromo seeds a promo code.
func (s *Store) AddPromo(p model.PromoCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.promos[p.ID] = p
}

// AddOrder seeds an existing order, e.g. to force an order number clash.
func (s *Store) AddOrder(o model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextOrderID++
	o.ID = s.state.nextOrderID
	s.state.orders = append(s.state.orders, o)
}

// FailOn makes the named CheckoutStore method fail with err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[method] = err
}

// Product returns the committed state of a product.
func (s *Store) Product(id int64) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.products[id]
	return p, ok
}

// Promo returns the committed state of a promo code.
func (s *Store) Promo(id int64) (model.PromoCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.promos[id]
	return p, ok
}

// CustomerByPhone returns the committed customer with the phone number.
func (s *Store) CustomerByPhone(phone string) (model.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.customers {
		if c.PhoneNumber == phone {
			return c, true
		}
	}
	return model.Customer{}, false
}

// Customers returns the number of committed customers.
func (s *Store) Customers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.customers)
}

// Orders returns the committed orders.
func (s *Store) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.state.orders...)
}

// Items returns the committed lines of an order.
func (s *Store) Items(orderID int64) []model.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []model.OrderItem
	for _, it := range s.state.items {
		if it.OrderID == orderID {
			items = append(items, it)
		}
	}
	return items
}

// Run serialises units of work. fn sees a private copy of the state which is
// published only when fn returns nil.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, store repository.CheckoutStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(ctx, &txStore{state: working, failOn: s.failOn}); err != nil {
		return err
	}
	s.state = working
	return nil
}

type txStore struct {
	state  *state
	failOn map[string]error
}

func (t *txStore) fail(method string) error {
	return t.failOn[method]
}

func (t *txStore) LockProduct(_ context.Context, id int64) (*model.Product, error) {
	if err := t.fail("LockProduct"); err != nil {
		return nil, err
	}
	p, ok := t.state.products[id]
	if !ok || !p.IsActive {
		return nil, nil
	}
	return &p, nil
}

func (t *txStore) DecrementStock(_ context.Context, id int64, quantity int) error {
	if err := t.fail("DecrementStock"); err != nil {
		return err
	}
	p, ok := t.state.products[id]
	if !ok {
		return fmt.Errorf("product %d not found", id)
	}
	p.Stock -= quantity
	t.state.products[id] = p
	return nil
}

func (t *txStore) LockPromoByCode(_ context.Context, code string) (*model.PromoCode, error) {
	if err := t.fail("LockPromoByCode"); err != nil {
		return nil, err
	}
	for _, p := range t.state.promos {
		if strings.EqualFold(p.Code, code) {
			return &p, nil
		}
	}
	return nil, nil
}

func (t *txStore) IncrementPromoUsage(_ context.Context, id int64) error {
	if err := t.fail("IncrementPromoUsage"); err != nil {
		return err
	}
	p, ok := t.state.promos[id]
	if !ok {
		return fmt.Errorf("promo %d not found", id)
	}
	p.UsageCount++
	t.state.promos[id] = p
	return nil
}

func (t *txStore) LockCustomer(_ context.Context, phone string, at time.Time) (*model.Customer, error) {
	if err := t.fail("LockCustomer"); err != nil {
		return nil, err
	}
	for _, c := range t.state.customers {
		if c.PhoneNumber == phone {
			return &c, nil
		}
	}

	t.state.nextCustomerID++
	c := model.Customer{
		ID:            t.state.nextCustomerID,
		PhoneNumber:   phone,
		LastOrderDate: at,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	t.state.customers[c.ID] = c
	return &c, nil
}

func (t *txStore) RecordCustomerOrder(_ context.Context, id int64, at time.Time) (*model.Customer, error) {
	if err := t.fail("RecordCustomerOrder"); err != nil {
		return nil, err
	}
	c, ok := t.state.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d not found", id)
	}
	c.OrderCount++
	c.LastOrderDate = at
	c.UpdatedAt = at
	t.state.customers[id] = c
	return &c, nil
}

func (t *txStore) InsertOrder(_ context.Context, order *model.Order) error {
	if err := t.fail("InsertOrder"); err != nil {
		return err
	}
	for _, o := range t.state.orders {
		if o.OrderNumber == order.OrderNumber {
			return &model.DomainError{
				Code:    model.ErrCodeDuplicateOrderNumber,
				Message: fmt.Sprintf("Order number %s already exists", order.OrderNumber),
			}
		}
	}
	t.state.nextOrderID++
	order.ID = t.state.nextOrderID
	t.state.orders = append(t.state.orders, *order)
	return nil
}

func (t *txStore) InsertOrderItems(_ context.Context, orderID int64, items []model.OrderItem) error {
	if err := t.fail("InsertOrderItems"); err != nil {
		return err
	}
	for i := range items {
		t.state.nextItemID++
		items[i].ID = t.state.nextItemID
		items[i].OrderID = orderID
		t.state.items = append(t.state.items, items[i])
	}
	return nil
}
