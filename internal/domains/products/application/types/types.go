package types

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/secondhand-market/internal/domains/products/domain"
	"github.com/Apurer/secondhand-market/internal/shared/projection"
)

// CreateProductInput lists a new item for the given seller.
type CreateProductInput struct {
	SellerID    int64
	Title       string
	Description string
	Price       decimal.Decimal
	ImageURLs   []string
}

// ReviseProductInput carries a partial update; nil fields are left untouched.
type ReviseProductInput struct {
	ProductID   int64
	SellerID    int64
	Title       *string
	Description *string
	Price       *decimal.Decimal
	ImageURLs   *[]string
}

// ListSellerProductsInput pages through one seller's listings.
type ListSellerProductsInput struct {
	SellerID int64
	projection.PageRequest
}

// ProductPage is one page of listings.
type ProductPage = projection.Page[*domain.Product]
