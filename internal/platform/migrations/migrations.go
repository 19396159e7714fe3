package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// activeOrderIndex backs the single-active-order rule at the storage level:
// at most one PENDING, PAID or SHIPPED order may reference a product.
const activeOrderIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uq_orders_active_product
	ON orders (product_id)
	WHERE status IN ('PENDING', 'PAID', 'SHIPPED')`

// Run applies the schema for the bounded contexts.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&productRecord{},
		&orderRecord{},
		&idempotencyRecord{},
	); err != nil {
		return err
	}
	return db.Exec(activeOrderIndex).Error
}

// Product schema mirrors the products Postgres adapter.
type productRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	SellerID    int64           `gorm:"column:seller_id;index"`
	Title       string          `gorm:"column:title;size:200"`
	Description string          `gorm:"column:description;type:text"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	ImageURLs   pq.StringArray  `gorm:"column:image_urls;type:text[]"`
	Status      string          `gorm:"column:status;type:varchar(16);index"`
	CreatedAt   time.Time       `gorm:"column:created_at;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Order schema mirrors the orders Postgres adapter.
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

// Idempotency schema mirrors the orders idempotency store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     int64     `gorm:"column:order_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }
