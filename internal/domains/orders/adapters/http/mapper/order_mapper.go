package mapper

import (
	"strings"
	"time"

	types "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
)

// CreateOrderRequest is the payload of POST /orders.
type CreateOrderRequest struct {
	ProductID int64  `json:"productId" binding:"required"`
	Quantity  *int32 `json:"quantity"`
	Remark    string `json:"remark"`
}

// PayOrderRequest is the payload of POST /orders/pay. The payment method is
// accepted for client compatibility; settlement is out of scope.
type PayOrderRequest struct {
	OrderID       int64  `json:"orderId" binding:"required"`
	PaymentMethod string `json:"paymentMethod"`
}

// ShipOrderRequest is the optional payload of POST /orders/:id/ship.
type ShipOrderRequest struct {
	Remark string `json:"remark"`
}

// Order is the transport shape of an order.
type Order struct {
	ID           int64      `json:"id"`
	OrderNo      string     `json:"orderNo"`
	ProductID    int64      `json:"productId"`
	ProductName  string     `json:"productName"`
	ProductImage string     `json:"productImage"`
	Price        string     `json:"price"`
	Quantity     int32      `json:"quantity"`
	TotalAmount  string     `json:"totalAmount"`
	Status       string     `json:"status"`
	BuyerID      int64      `json:"buyerId"`
	SellerID     int64      `json:"sellerId"`
	CreatedAt    time.Time  `json:"createdAt"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
	ShippedAt    *time.Time `json:"shippedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
	BuyerRemark  string     `json:"buyerRemark,omitempty"`
	SellerRemark string     `json:"sellerRemark,omitempty"`
	Listing      *Listing   `json:"listing,omitempty"`
}

// Listing is the current state of the product behind an order.
type Listing struct {
	Title     string `json:"title"`
	Price     string `json:"price"`
	Status    string `json:"status"`
	Available bool   `json:"available"`
}

// OrderPage mirrors the list envelope used across the API.
type OrderPage struct {
	List     []Order `json:"list"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

func ToCreateInput(buyerID int64, idempotencyKey string, req CreateOrderRequest) types.CreateOrderInput {
	return types.CreateOrderInput{
		BuyerID:        buyerID,
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		Remark:         req.Remark,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

// FromDomainOrder converts an order to its transport representation. Status
// is rendered lower-case; money is rendered with two decimals.
func FromDomainOrder(o *domain.Order) Order {
	if o == nil {
		return Order{}
	}
	return Order{
		ID:           o.ID,
		OrderNo:      o.Number,
		ProductID:    o.ProductID,
		ProductName:  o.Snapshot.Title,
		ProductImage: o.Snapshot.ImageURL,
		Price:        o.Snapshot.Price.StringFixed(2),
		Quantity:     o.Quantity,
		TotalAmount:  o.Total.StringFixed(2),
		Status:       strings.ToLower(string(o.Status)),
		BuyerID:      o.BuyerID,
		SellerID:     o.SellerID,
		CreatedAt:    o.CreatedAt,
		PaidAt:       o.PaidAt,
		ShippedAt:    o.ShippedAt,
		CompletedAt:  o.CompletedAt,
		CancelledAt:  o.CancelledAt,
		BuyerRemark:  o.BuyerRemark,
		SellerRemark: o.SellerRemark,
	}
}

func FromOrderDetail(detail *types.OrderDetail) Order {
	if detail == nil {
		return Order{}
	}
	out := FromDomainOrder(detail.Order)
	if l := detail.Listing; l != nil {
		out.Listing = &Listing{
			Title:     l.Title,
			Price:     l.Price.StringFixed(2),
			Status:    strings.ToLower(l.Status),
			Available: l.Available,
		}
	}
	return out
}

func FromOrderPage(page *types.OrderPage) OrderPage {
	if page == nil {
		return OrderPage{List: []Order{}}
	}
	list := make([]Order, 0, len(page.Items))
	for _, o := range page.Items {
		list = append(list, FromDomainOrder(o))
	}
	return OrderPage{List: list, Total: page.Total, Page: page.Page, PageSize: page.PageSize}
}
