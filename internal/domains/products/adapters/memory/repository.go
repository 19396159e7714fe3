package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/secondhand-market/internal/domains/products/domain"
	"github.com/Apurer/secondhand-market/internal/domains/products/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory listing store. The order memory adapter reuses it
// as its product store, so status changes go through CompareAndSetStatus.
type Repository struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	nextID   int64
	now      func() time.Time
}

func NewRepository() *Repository {
	return &Repository{products: map[int64]*domain.Product{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := product.Clone()
	if clone.Status == "" {
		clone.Status = domain.StatusOnSale
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	now := r.now().UTC()
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	if clone.UpdatedAt.IsZero() {
		clone.UpdatedAt = clone.CreatedAt
	}
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return product.Clone(), nil
}

// Update stores the descriptive fields; the stored status is preserved.
func (r *Repository) Update(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[product.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := product.Clone()
	clone.Status = existing.Status
	clone.SellerID = existing.SellerID
	clone.CreatedAt = existing.CreatedAt
	if clone.UpdatedAt.IsZero() {
		clone.UpdatedAt = r.now().UTC()
	}
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) ListBySeller(_ context.Context, sellerID int64, offset, limit int) ([]*domain.Product, int64, error) {
	r.mu.RLock()
	matched := make([]*domain.Product, 0)
	for _, product := range r.products {
		if product.SellerID == sellerID && product.Status != domain.StatusDeleted {
			matched = append(matched, product.Clone())
		}
	}
	r.mu.RUnlock()
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	if offset < 0 || offset >= len(matched) {
		return []*domain.Product{}, total, nil
	}
	end := len(matched)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

// CompareAndSetStatus moves the product from expected to next and reports
// whether the swap happened. A missing product yields ports.ErrNotFound.
func (r *Repository) CompareAndSetStatus(_ context.Context, id int64, expected, next domain.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return false, ports.ErrNotFound
	}
	if product.Status != expected {
		return false, nil
	}
	product.Status = next
	product.UpdatedAt = r.now().UTC()
	return true, nil
}
