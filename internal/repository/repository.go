package repository

import (
	"context"
	"errors"

	"github.com/boutiq-shop/checkout-service/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrAlreadyPaid is returned by MarkPaid when the order's paid flag was
// already set. The flag flips false to true exactly once.
var ErrAlreadyPaid = errors.New("repository: order already paid")

// ProductRepository reads the catalog. Products are immutable to the
// order flow; ReplaceAll is only called by the catalog loader.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	ReplaceAll(ctx context.Context, products []models.Product) error
}

// OrderRepository persists orders. Each mutation touches exactly one
// order row.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)

	// SetCustomerInfo persists the customer block and the recomputed
	// pricing fields as a unit.
	SetCustomerInfo(ctx context.Context, order *models.Order) error

	// MarkPaid persists the payment block and sets paid, guarded by
	// paid = FALSE so concurrent attempts cannot both commit.
	MarkPaid(ctx context.Context, order *models.Order) error
}

// OrderCache defines caching operations for orders.
type OrderCache interface {
	Get(ctx context.Context, id int64) (*models.Order, error)
	Set(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id int64) error
}
