package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/secondhand-market/internal/domains/orders/application"
	types "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	"github.com/Apurer/secondhand-market/internal/domains/orders/ports"
)

// CreateOrderActivityName opens a PENDING order through the order engine.
const CreateOrderActivityName = "orders.activities.CreateOrder"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the order service into the Temporal activities bundle.
// The service should carry an idempotency store so retried attempts replay instead of failing.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// CreateOrder runs the create use case. Business rejections are returned as
// non-retryable application errors typed with their error kind.
func (a *Activities) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order create activity not initialized", "productId", input.ProductID)
		return nil, errors.New("order create activity not initialized")
	}
	logger.Info("CreateOrder activity started", "productId", input.ProductID, "buyerId", input.BuyerID)
	order, err := a.service.CreateOrder(ctx, input)
	if err != nil {
		kind := application.KindOf(err)
		if kind == application.KindInternal {
			logger.Error("CreateOrder activity failed", "productId", input.ProductID, "error", err)
			return nil, err
		}
		logger.Warn("CreateOrder activity rejected", "productId", input.ProductID, "kind", string(kind), "error", err)
		return nil, temporal.NewNonRetryableApplicationError(application.Message(err), string(kind), nil)
	}
	logger.Info("CreateOrder activity completed", "orderId", order.ID, "orderNo", order.Number)
	return order, nil
}
