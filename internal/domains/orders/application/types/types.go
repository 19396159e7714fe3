package types

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	"github.com/Apurer/secondhand-market/internal/shared/projection"
)

// CreateOrderInput opens an order for one listing. A nil Quantity means 1.
type CreateOrderInput struct {
	BuyerID        int64
	ProductID      int64
	Quantity       *int32
	Remark         string
	IdempotencyKey string
}

// TransitionInput identifies the order and the acting user of a lifecycle call.
// Remark is stored as the seller remark on shipment and ignored otherwise.
type TransitionInput struct {
	OrderID int64
	UserID  int64
	Remark  string
}

// OrderLookup loads one order on behalf of a participant.
type OrderLookup struct {
	OrderID int64
	UserID  int64
}

// OrderNumberLookup loads one order by its public number on behalf of a participant.
type OrderNumberLookup struct {
	Number string
	UserID int64
}

// ListOrdersInput pages through the orders where UserID plays Role.
// Status "" or "all" disables the filter.
type ListOrdersInput struct {
	UserID int64
	Role   domain.Role
	Status string
	projection.PageRequest
}

// OrderPage is one page of orders, newest first.
type OrderPage = projection.Page[*domain.Order]

// ListingSummary is the current state of the product behind an order. The
// order snapshot remains the source of truth for what was bought.
type ListingSummary struct {
	Title     string
	Price     decimal.Decimal
	Status    string
	Available bool
}

// OrderDetail is the read model returned by the detail endpoints.
type OrderDetail struct {
	Order   *domain.Order
	Listing *ListingSummary
}
