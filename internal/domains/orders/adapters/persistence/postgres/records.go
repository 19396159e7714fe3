package postgres

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	productdomain "github.com/Apurer/secondhand-market/internal/domains/products/domain"
)

const (
	activeOrderIndex = "uq_orders_active_product"
	orderNumberIndex = "uq_orders_order_no"
)

type orderRecord struct {
	ID           int64           `gorm:"primaryKey;column:id"`
	OrderNo      string          `gorm:"column:order_no;size:32;uniqueIndex:uq_orders_order_no"`
	ProductID    int64           `gorm:"column:product_id;index"`
	BuyerID      int64           `gorm:"column:buyer_id;index:idx_orders_buyer_created,priority:1"`
	SellerID     int64           `gorm:"column:seller_id;index:idx_orders_seller_created,priority:1"`
	ProductName  string          `gorm:"column:product_name;size:200"`
	ProductImage string          `gorm:"column:product_image;size:500"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Quantity     int32           `gorm:"column:quantity"`
	TotalAmount  decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)"`
	Status       string          `gorm:"column:status;type:varchar(16);index"`
	BuyerRemark  string          `gorm:"column:buyer_remark;size:500"`
	SellerRemark string          `gorm:"column:seller_remark;size:500"`
	CreatedAt    time.Time       `gorm:"column:created_at;index:idx_orders_buyer_created,priority:2;index:idx_orders_seller_created,priority:2"`
	PaidAt       *time.Time      `gorm:"column:paid_at"`
	ShippedAt    *time.Time      `gorm:"column:shipped_at"`
	CompletedAt  *time.Time      `gorm:"column:completed_at"`
	CancelledAt  *time.Time      `gorm:"column:cancelled_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// productRow is the slice of the products table the order engine reads and locks.
type productRow struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	SellerID    int64           `gorm:"column:seller_id"`
	Title       string          `gorm:"column:title"`
	Description string          `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price"`
	ImageURLs   pq.StringArray  `gorm:"column:image_urls;type:text[]"`
	Status      string          `gorm:"column:status"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (productRow) TableName() string { return "products" }

func toOrderRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:           order.ID,
		OrderNo:      order.Number,
		ProductID:    order.ProductID,
		BuyerID:      order.BuyerID,
		SellerID:     order.SellerID,
		ProductName:  order.Snapshot.Title,
		ProductImage: order.Snapshot.ImageURL,
		Price:        order.Snapshot.Price,
		Quantity:     order.Quantity,
		TotalAmount:  order.Total,
		Status:       string(order.Status),
		BuyerRemark:  order.BuyerRemark,
		SellerRemark: order.SellerRemark,
		CreatedAt:    order.CreatedAt,
		PaidAt:       order.PaidAt,
		ShippedAt:    order.ShippedAt,
		CompletedAt:  order.CompletedAt,
		CancelledAt:  order.CancelledAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:        r.ID,
		Number:    r.OrderNo,
		ProductID: r.ProductID,
		BuyerID:   r.BuyerID,
		SellerID:  r.SellerID,
		Snapshot: domain.Snapshot{
			Title:    r.ProductName,
			ImageURL: r.ProductImage,
			Price:    r.Price,
		},
		Quantity:     r.Quantity,
		Total:        r.TotalAmount,
		Status:       domain.Status(r.Status),
		CreatedAt:    r.CreatedAt.UTC(),
		BuyerRemark:  r.BuyerRemark,
		SellerRemark: r.SellerRemark,
		PaidAt:       utc(r.PaidAt),
		ShippedAt:    utc(r.ShippedAt),
		CompletedAt:  utc(r.CompletedAt),
		CancelledAt:  utc(r.CancelledAt),
	}
}

func (r productRow) toDomain() *productdomain.Product {
	return &productdomain.Product{
		ID:          r.ID,
		SellerID:    r.SellerID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		ImageURLs:   append([]string(nil), r.ImageURLs...),
		Status:      productdomain.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
