package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	"github.com/Apurer/secondhand-market/internal/domains/orders/ports"
	productsmemory "github.com/Apurer/secondhand-market/internal/domains/products/adapters/memory"
	productdomain "github.com/Apurer/secondhand-market/internal/domains/products/domain"
	productports "github.com/Apurer/secondhand-market/internal/domains/products/ports"
)

var _ ports.Store = (*Store)(nil)

// Store is an in-memory order store backed by the in-memory product
// repository. Write transactions are serialized by a single lock and their
// writes are staged until the callback returns without error.
type Store struct {
	txMu     sync.Mutex
	mu       sync.RWMutex
	orders   map[int64]*domain.Order
	byNumber map[string]int64
	nextID   int64
	products *productsmemory.Repository
}

func NewStore(products *productsmemory.Repository) *Store {
	if products == nil {
		products = productsmemory.NewRepository()
	}
	return &Store{
		orders:   map[int64]*domain.Order{},
		byNumber: map[string]int64{},
		products: products,
	}
}

// WithinTx runs fn with exclusive write access and commits its staged writes on success.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	tx := &memTx{store: s, staged: map[int64]*domain.Order{}, sold: map[int64]struct{}{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return s.commit(ctx, tx)
}

func (s *Store) commit(ctx context.Context, tx *memTx) error {
	for id := range tx.sold {
		swapped, err := s.products.CompareAndSetStatus(ctx, id, productdomain.StatusOnSale, productdomain.StatusSold)
		if err != nil {
			return err
		}
		if !swapped {
			return fmt.Errorf("product %d changed during commit", id)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, order := range tx.staged {
		s.orders[id] = order
		s.byNumber[order.Number] = id
	}
	return nil
}

func (s *Store) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (s *Store) FindByNumber(_ context.Context, number string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNumber[number]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return s.orders[id].Clone(), nil
}

func (s *Store) ListByBuyer(_ context.Context, buyerID int64, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	return s.list(func(o *domain.Order) bool { return o.BuyerID == buyerID }, filter)
}

func (s *Store) ListBySeller(_ context.Context, sellerID int64, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	return s.list(func(o *domain.Order) bool { return o.SellerID == sellerID }, filter)
}

func (s *Store) FindProduct(ctx context.Context, productID int64) (*productdomain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, productports.ErrNotFound) {
		return nil, ports.ErrProductNotFound
	}
	return product, err
}

func (s *Store) list(match func(*domain.Order) bool, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	s.mu.RLock()
	matched := make([]*domain.Order, 0)
	for _, order := range s.orders {
		if !match(order) {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		matched = append(matched, order.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	if filter.Offset < 0 || filter.Offset >= len(matched) {
		return []*domain.Order{}, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Limit < end-filter.Offset {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

type memTx struct {
	store  *Store
	staged map[int64]*domain.Order
	sold   map[int64]struct{}
}

func (tx *memTx) Orders() ports.OrderRepository { return memOrders{tx} }

func (tx *memTx) Products() ports.ProductStore { return memProducts{tx} }

// current returns the order as this transaction sees it.
func (tx *memTx) current(id int64) (*domain.Order, bool) {
	if order, ok := tx.staged[id]; ok {
		return order, true
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	order, ok := tx.store.orders[id]
	return order, ok
}

type memOrders struct{ tx *memTx }

func (r memOrders) Insert(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if _, err := r.FindByNumber(ctx, order.Number); err == nil {
		return nil, ports.ErrDuplicateOrderNumber
	}
	if order.Status.IsActive() {
		active, err := r.ExistsActiveForProduct(ctx, order.ProductID)
		if err != nil {
			return nil, err
		}
		if active {
			return nil, ports.ErrActiveOrderExists
		}
	}
	clone := order.Clone()
	r.tx.store.mu.Lock()
	r.tx.store.nextID++
	clone.ID = r.tx.store.nextID
	r.tx.store.mu.Unlock()
	r.tx.staged[clone.ID] = clone
	return clone.Clone(), nil
}

func (r memOrders) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	order, ok := r.tx.current(id)
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r memOrders) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	for _, order := range r.tx.staged {
		if order.Number == number {
			return order.Clone(), nil
		}
	}
	return r.tx.store.FindByNumber(ctx, number)
}

func (r memOrders) ExistsActiveForProduct(_ context.Context, productID int64) (bool, error) {
	for _, order := range r.tx.staged {
		if order.ProductID == productID && order.Status.IsActive() {
			return true, nil
		}
	}
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	for id, order := range r.tx.store.orders {
		if _, shadowed := r.tx.staged[id]; shadowed {
			continue
		}
		if order.ProductID == productID && order.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r memOrders) UpdateStatus(_ context.Context, order *domain.Order, expected domain.Status) (ports.WriteResult, error) {
	if order == nil {
		return ports.WriteNotFound, errors.New("order is nil")
	}
	current, ok := r.tx.current(order.ID)
	if !ok {
		return ports.WriteNotFound, nil
	}
	if current.Status != expected {
		return ports.WritePreconditionFailed, nil
	}
	incoming := order.Clone()
	next := current.Clone()
	next.Status = incoming.Status
	next.PaidAt = incoming.PaidAt
	next.ShippedAt = incoming.ShippedAt
	next.CompletedAt = incoming.CompletedAt
	next.CancelledAt = incoming.CancelledAt
	next.SellerRemark = incoming.SellerRemark
	r.tx.staged[next.ID] = next
	return ports.WriteApplied, nil
}

type memProducts struct{ tx *memTx }

func (p memProducts) Find(ctx context.Context, productID int64) (*productdomain.Product, error) {
	product, err := p.tx.store.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if _, sold := p.tx.sold[productID]; sold {
		product.Status = productdomain.StatusSold
	}
	return product, nil
}

// FindForUpdate needs no extra locking: the transaction already holds the store's write lock.
func (p memProducts) FindForUpdate(ctx context.Context, productID int64) (*productdomain.Product, error) {
	return p.Find(ctx, productID)
}

func (p memProducts) MarkSold(ctx context.Context, productID, expectedSellerID int64) (ports.WriteResult, error) {
	product, err := p.Find(ctx, productID)
	if errors.Is(err, ports.ErrProductNotFound) {
		return ports.WriteNotFound, nil
	}
	if err != nil {
		return ports.WriteNotFound, err
	}
	if product.SellerID != expectedSellerID || product.Status != productdomain.StatusOnSale {
		return ports.WritePreconditionFailed, nil
	}
	p.tx.sold[productID] = struct{}{}
	return ports.WriteApplied, nil
}
