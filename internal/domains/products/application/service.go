package application

import (
	"context"
	"time"

	types "github.com/Apurer/secondhand-market/internal/domains/products/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/products/domain"
	"github.com/Apurer/secondhand-market/internal/domains/products/ports"
	"github.com/Apurer/secondhand-market/internal/shared/projection"
)

// Service orchestrates the listing use cases.
type Service struct {
	repo ports.Repository
	now  func() time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the products service with its repository.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateProduct lists a new item as ON_SALE.
func (s *Service) CreateProduct(ctx context.Context, input types.CreateProductInput) (*domain.Product, error) {
	product, err := domain.NewProduct(input.SellerID, input.Title, input.Description, input.Price, input.ImageURLs)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	saved, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// GetProduct loads a single listing.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return product, nil
}

// ReviseProduct lets the owner edit the descriptive fields. Orders already
// placed keep their snapshot.
func (s *Service) ReviseProduct(ctx context.Context, input types.ReviseProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, mapError(err)
	}
	if product.SellerID != input.SellerID {
		return nil, ErrForbidden
	}
	if err := product.EnsureRevisable(); err != nil {
		return nil, mapError(err)
	}
	title, description, price, images := product.Title, product.Description, product.Price, product.ImageURLs
	if input.Title != nil {
		title = *input.Title
	}
	if input.Description != nil {
		description = *input.Description
	}
	if input.Price != nil {
		price = *input.Price
	}
	if input.ImageURLs != nil {
		images = *input.ImageURLs
	}
	if err := product.Revise(title, description, price, images); err != nil {
		return nil, mapError(err)
	}
	product.UpdatedAt = s.now().UTC()
	saved, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// ListSellerProducts returns the seller's listings, newest first.
func (s *Service) ListSellerProducts(ctx context.Context, input types.ListSellerProductsInput) (*types.ProductPage, error) {
	if input.SellerID <= 0 {
		return nil, mapError(domain.ErrInvalidSeller)
	}
	req := input.PageRequest.Normalize()
	items, total, err := s.repo.ListBySeller(ctx, input.SellerID, req.Offset(), req.Limit())
	if err != nil {
		return nil, mapError(err)
	}
	return projection.NewPage(items, total, req), nil
}

var _ ports.Service = (*Service)(nil)
