package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	"github.com/Apurer/secondhand-market/internal/domains/orders/ports"
	productdomain "github.com/Apurer/secondhand-market/internal/domains/products/domain"
)

var _ ports.Store = (*Store)(nil)

// Store persists orders in PostgreSQL using GORM. Schema, including the
// partial unique index on active orders, is owned by the migrations package.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed order store. Caller manages DB lifecycle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithinTx runs fn inside a database transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &pgTx{db: db})
	})
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	return findOrder(s.db.WithContext(ctx), "id = ?", id)
}

func (s *Store) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	return findOrder(s.db.WithContext(ctx), "order_no = ?", number)
}

func (s *Store) ListByBuyer(ctx context.Context, buyerID int64, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	return s.list(ctx, "buyer_id = ?", buyerID, filter)
}

func (s *Store) ListBySeller(ctx context.Context, sellerID int64, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	return s.list(ctx, "seller_id = ?", sellerID, filter)
}

func (s *Store) FindProduct(ctx context.Context, productID int64) (*productdomain.Product, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	return findProduct(s.db.WithContext(ctx), productID)
}

func (s *Store) list(ctx context.Context, owner string, userID int64, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	if err := s.ensureDB(); err != nil {
		return nil, 0, err
	}
	query := s.db.WithContext(ctx).Model(&orderRecord{}).Where(owner, userID)
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []orderRecord
	if err := query.Order("created_at DESC, id DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, total, nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres order store not configured")
	}
	return nil
}

type pgTx struct {
	db *gorm.DB
}

func (t *pgTx) Orders() ports.OrderRepository { return txOrders{db: t.db} }

func (t *pgTx) Products() ports.ProductStore { return txProducts{db: t.db} }

type txOrders struct {
	db *gorm.DB
}

func (r txOrders) Insert(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toOrderRecord(order)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, classifyInsertError(err)
	}
	return record.toDomain(), nil
}

// FindByID locks the order row so concurrent transitions queue behind each other.
func (r txOrders) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	return findOrder(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (r txOrders) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return findOrder(r.db.WithContext(ctx), "order_no = ?", number)
}

func (r txOrders) ExistsActiveForProduct(ctx context.Context, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("product_id = ? AND status IN ?", productID, activeStatuses()).
		Count(&count).Error
	return count > 0, err
}

func (r txOrders) UpdateStatus(ctx context.Context, order *domain.Order, expected domain.Status) (ports.WriteResult, error) {
	if order == nil {
		return ports.WriteNotFound, errors.New("order is nil")
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ? AND status = ?", order.ID, string(expected)).
		Updates(map[string]any{
			"status":        string(order.Status),
			"paid_at":       order.PaidAt,
			"shipped_at":    order.ShippedAt,
			"completed_at":  order.CompletedAt,
			"cancelled_at":  order.CancelledAt,
			"seller_remark": order.SellerRemark,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return ports.WriteNotFound, result.Error
	}
	if result.RowsAffected > 0 {
		return ports.WriteApplied, nil
	}
	return missingOrStale(ctx, r.db, &orderRecord{}, order.ID)
}

type txProducts struct {
	db *gorm.DB
}

func (p txProducts) Find(ctx context.Context, productID int64) (*productdomain.Product, error) {
	return findProduct(p.db.WithContext(ctx), productID)
}

// FindForUpdate takes a row lock on the product for the rest of the transaction.
func (p txProducts) FindForUpdate(ctx context.Context, productID int64) (*productdomain.Product, error) {
	return findProduct(p.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), productID)
}

func (p txProducts) MarkSold(ctx context.Context, productID, expectedSellerID int64) (ports.WriteResult, error) {
	result := p.db.WithContext(ctx).
		Model(&productRow{}).
		Where("id = ? AND seller_id = ? AND status = ?", productID, expectedSellerID, string(productdomain.StatusOnSale)).
		Updates(map[string]any{
			"status":     string(productdomain.StatusSold),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return ports.WriteNotFound, result.Error
	}
	if result.RowsAffected > 0 {
		return ports.WriteApplied, nil
	}
	return missingOrStale(ctx, p.db, &productRow{}, productID)
}

func findOrder(db *gorm.DB, where string, arg any) (*domain.Order, error) {
	var record orderRecord
	if err := db.First(&record, where, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func findProduct(db *gorm.DB, productID int64) (*productdomain.Product, error) {
	var row productRow
	if err := db.First(&row, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrProductNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// missingOrStale tells a conditional write that matched no row apart from one whose row is gone.
func missingOrStale(ctx context.Context, db *gorm.DB, model any, id int64) (ports.WriteResult, error) {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return ports.WriteNotFound, err
	}
	if count == 0 {
		return ports.WriteNotFound, nil
	}
	return ports.WritePreconditionFailed, nil
}

func activeStatuses() []string {
	statuses := make([]string, 0, len(domain.ActiveStatuses))
	for _, s := range domain.ActiveStatuses {
		statuses = append(statuses, string(s))
	}
	return statuses
}
