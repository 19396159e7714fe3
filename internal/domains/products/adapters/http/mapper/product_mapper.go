package mapper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	types "github.com/Apurer/secondhand-market/internal/domains/products/application/types"
	productdomain "github.com/Apurer/secondhand-market/internal/domains/products/domain"
)

// CreateProductRequest is the payload of POST /products.
type CreateProductRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURLs   []string        `json:"imageUrls"`
}

// ReviseProductRequest is the payload of PUT /products/:id; omitted fields stay unchanged.
type ReviseProductRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURLs   *[]string        `json:"imageUrls"`
}

// Product is the transport shape of a listing.
type Product struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"sellerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	ImageURLs   []string  `json:"imageUrls"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductPage mirrors the list envelope used across the API.
type ProductPage struct {
	List     []Product `json:"list"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

func ToCreateInput(sellerID int64, req CreateProductRequest) types.CreateProductInput {
	return types.CreateProductInput{
		SellerID:    sellerID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURLs:   req.ImageURLs,
	}
}

func ToReviseInput(productID, sellerID int64, req ReviseProductRequest) types.ReviseProductInput {
	return types.ReviseProductInput{
		ProductID:   productID,
		SellerID:    sellerID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURLs:   req.ImageURLs,
	}
}

// FromDomainProduct converts a listing to its transport representation.
func FromDomainProduct(p *productdomain.Product) Product {
	if p == nil {
		return Product{}
	}
	images := p.ImageURLs
	if images == nil {
		images = []string{}
	}
	return Product{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		ImageURLs:   images,
		Status:      strings.ToLower(string(p.Status)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromProductPage(page *types.ProductPage) ProductPage {
	if page == nil {
		return ProductPage{List: []Product{}}
	}
	list := make([]Product, 0, len(page.Items))
	for _, p := range page.Items {
		list = append(list, FromDomainProduct(p))
	}
	return ProductPage{List: list, Total: page.Total, Page: page.Page, PageSize: page.PageSize}
}
