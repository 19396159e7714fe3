package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the availability of a listing.
type Status string

const (
	StatusOnSale    Status = "ON_SALE"
	StatusSold      Status = "SOLD"
	StatusWithdrawn Status = "WITHDRAWN"
	StatusDeleted   Status = "DELETED"
)

const maxImagesPerListing = 9

var (
	ErrEmptyTitle    = errors.New("product title is required")
	ErrInvalidPrice  = errors.New("product price must be greater than zero")
	ErrInvalidSeller = errors.New("product seller id must be greater than zero")
	ErrInvalidStatus = errors.New("product status is invalid")
	ErrNotOnSale     = errors.New("product is not on sale")
	ErrNotRevisable  = errors.New("product can no longer be edited")
	ErrTooManyImages = errors.New("product accepts at most 9 images")
)

// Product is a single second-hand listing. Availability is only changed by the
// order engine; sellers revise the descriptive fields.
type Product struct {
	ID          int64
	SellerID    int64
	Title       string
	Description string
	Price       decimal.Decimal
	ImageURLs   []string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct validates the listing fields and returns an on-sale product.
func NewProduct(sellerID int64, title, description string, price decimal.Decimal, imageURLs []string) (*Product, error) {
	if sellerID <= 0 {
		return nil, ErrInvalidSeller
	}
	p := &Product{SellerID: sellerID, Status: StatusOnSale}
	if err := p.Revise(title, description, price, imageURLs); err != nil {
		return nil, err
	}
	return p, nil
}

// Revise replaces the descriptive fields of the listing.
func (p *Product) Revise(title, description string, price decimal.Decimal, imageURLs []string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if len(imageURLs) > maxImagesPerListing {
		return ErrTooManyImages
	}
	images := make([]string, 0, len(imageURLs))
	for _, u := range imageURLs {
		if u = strings.TrimSpace(u); u != "" {
			images = append(images, u)
		}
	}
	p.Title = title
	p.Description = strings.TrimSpace(description)
	p.Price = price.Round(2)
	p.ImageURLs = images
	return nil
}

// EnsureRevisable rejects edits to listings that left the catalog.
func (p *Product) EnsureRevisable() error {
	switch p.Status {
	case StatusSold, StatusDeleted:
		return ErrNotRevisable
	default:
		return nil
	}
}

// EnsureOnSale reports ErrNotOnSale unless the listing can currently be bought.
func (p *Product) EnsureOnSale() error {
	if p.Status != StatusOnSale {
		return ErrNotOnSale
	}
	return nil
}

// CoverImage returns the first image, used as the order snapshot image.
func (p *Product) CoverImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.ImageURLs = append([]string(nil), p.ImageURLs...)
	return &c
}

// ParseStatus accepts the canonical upper-case names in any case.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case StatusOnSale, StatusSold, StatusWithdrawn, StatusDeleted:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}
