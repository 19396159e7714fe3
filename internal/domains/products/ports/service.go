package ports

import (
	"context"

	types "github.com/Apurer/secondhand-market/internal/domains/products/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/products/domain"
)

// Service exposes listing use cases to adapters.
type Service interface {
	CreateProduct(ctx context.Context, input types.CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ReviseProduct(ctx context.Context, input types.ReviseProductInput) (*domain.Product, error)
	ListSellerProducts(ctx context.Context, input types.ListSellerProductsInput) (*types.ProductPage, error)
}
