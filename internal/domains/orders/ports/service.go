package ports

import (
	"context"

	types "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
)

// Service exposes the order lifecycle and query use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error)
	PayOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error)
	ShipOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error)
	CompleteOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error)
	GetOrder(ctx context.Context, input types.OrderLookup) (*types.OrderDetail, error)
	GetOrderByNumber(ctx context.Context, input types.OrderNumberLookup) (*types.OrderDetail, error)
	ListOrders(ctx context.Context, input types.ListOrdersInput) (*types.OrderPage, error)
}
