package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/secondhand-market/internal/domains/orders/application"
	types "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/secondhand-market/internal/platform/temporal/activities/orders"
)

// RunOrderCheckoutSequence executes the activities needed to open an order.
func RunOrderCheckoutSequence(ctx workflow.Context, input types.CreateOrderInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order checkout sequence started", "productId", input.ProductID, "buyerId", input.BuyerID)
	createOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: businessErrorTypes(),
		},
	}

	var order domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, createOptions), orderactivities.CreateOrderActivityName, input).Get(ctx, &order)
	if err != nil {
		logger.Error("order checkout sequence failed", "productId", input.ProductID, "error", err)
		return nil, err
	}
	logger.Info("order checkout sequence created order", "orderId", order.ID, "orderNo", order.Number)
	return &order, nil
}

func businessErrorTypes() []string {
	kinds := application.Kinds()
	types := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		types = append(types, string(kind))
	}
	return types
}
