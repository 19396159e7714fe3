package ports

import (
	"context"
	"errors"

	"github.com/Apurer/secondhand-market/internal/domains/products/domain"
)

var ErrNotFound = errors.New("product not found")

// Repository persists listings. Update never touches availability.
type Repository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	ListBySeller(ctx context.Context, sellerID int64, offset, limit int) ([]*domain.Product, int64, error)
}
