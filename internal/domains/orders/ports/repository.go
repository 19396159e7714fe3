package ports

import (
	"context"
	"errors"

	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	productdomain "github.com/Apurer/secondhand-market/internal/domains/products/domain"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateOrderNumber is returned by Insert when the number is taken.
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	// ErrActiveOrderExists is returned by Insert when the store-level guard
	// finds another active order for the same product.
	ErrActiveOrderExists = errors.New("product already has an active order")
)

// WriteResult is the outcome of a conditional write.
type WriteResult int

const (
	WriteApplied WriteResult = iota
	WritePreconditionFailed
	WriteNotFound
)

func (r WriteResult) String() string {
	switch r {
	case WriteApplied:
		return "applied"
	case WritePreconditionFailed:
		return "precondition_failed"
	case WriteNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// OrderRepository is the transaction-scoped view of persisted orders.
type OrderRepository interface {
	Insert(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)
	ExistsActiveForProduct(ctx context.Context, productID int64) (bool, error)
	// UpdateStatus persists the order's status, timestamps and seller remark
	// only if the stored status still equals expected.
	UpdateStatus(ctx context.Context, order *domain.Order, expected domain.Status) (WriteResult, error)
}

// ProductStore is the transaction-scoped view of listings used by the order engine.
type ProductStore interface {
	Find(ctx context.Context, productID int64) (*productdomain.Product, error)
	// FindForUpdate loads the product and serializes concurrent order
	// creation for it until the transaction ends.
	FindForUpdate(ctx context.Context, productID int64) (*productdomain.Product, error)
	// MarkSold flips an ON_SALE product owned by expectedSellerID to SOLD.
	MarkSold(ctx context.Context, productID, expectedSellerID int64) (WriteResult, error)
}

// Tx groups the repositories bound to one transaction.
type Tx interface {
	Orders() OrderRepository
	Products() ProductStore
}

// Transactor runs fn atomically: all writes commit together or none do.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// ListFilter narrows role-scoped order listings.
type ListFilter struct {
	Status *domain.Status
	Offset int
	Limit  int
}

// OrderQueries serves the lock-free read side.
type OrderQueries interface {
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64, filter ListFilter) ([]*domain.Order, int64, error)
	ListBySeller(ctx context.Context, sellerID int64, filter ListFilter) ([]*domain.Order, int64, error)
	FindProduct(ctx context.Context, productID int64) (*productdomain.Product, error)
}

// Store is implemented by adapters that serve both the write and read sides.
type Store interface {
	Transactor
	OrderQueries
}
