package repository

import (
	"context"
	"sync"

	"github.com/boutiq-shop/checkout-service/internal/models"
)

// MemoryProductRepository is an in-memory ProductRepository used by
// tests and local development.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[int64]models.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[int64]models.Product)}
}

func (r *MemoryProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProductRepository) List(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	return products, nil
}

func (r *MemoryProductRepository) ReplaceAll(ctx context.Context, products []models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = make(map[int64]models.Product, len(products))
	for _, p := range products {
		r.products[p.ID] = p
	}
	return nil
}

// MemoryOrderRepository is an in-memory OrderRepository. The mutex
// spans MarkPaid's check-and-set, giving the same exactly-once paid
// guarantee as the SQL row predicate.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[int64]models.Order
	nextID int64
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[int64]models.Order), nextID: 1}
}

func (r *MemoryOrderRepository) Create(ctx context.Context, order *models.Order) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextID
	r.nextID++
	r.orders[order.ID] = *order
	return order.ID, nil
}

func (r *MemoryOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (r *MemoryOrderRepository) SetCustomerInfo(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return ErrNotFound
	}

	stored.Email = order.Email
	stored.ShippingCountry = order.ShippingCountry
	stored.ShippingAddress = order.ShippingAddress
	stored.ShippingPostalCode = order.ShippingPostalCode
	stored.ShippingCity = order.ShippingCity
	stored.ShippingProvince = order.ShippingProvince
	stored.ShippingPrice = order.ShippingPrice
	stored.TotalPriceTax = order.TotalPriceTax
	r.orders[order.ID] = stored
	return nil
}

func (r *MemoryOrderRepository) MarkPaid(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Paid {
		return ErrAlreadyPaid
	}

	stored.Paid = true
	stored.CreditCardName = order.CreditCardName
	stored.CreditCardFirstDigits = order.CreditCardFirstDigits
	stored.CreditCardLastDigits = order.CreditCardLastDigits
	stored.CreditCardExpirationYear = order.CreditCardExpirationYear
	stored.CreditCardExpirationMonth = order.CreditCardExpirationMonth
	stored.TransactionID = order.TransactionID
	stored.TransactionSuccess = order.TransactionSuccess
	stored.TransactionAmountCharged = order.TransactionAmountCharged
	r.orders[order.ID] = stored
	order.Paid = true
	return nil
}
