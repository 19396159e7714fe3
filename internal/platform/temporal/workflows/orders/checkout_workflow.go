package orders

import (
	"go.temporal.io/sdk/workflow"

	types "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	"github.com/Apurer/secondhand-market/internal/platform/temporal/sequences"
)

const (
	// CheckoutWorkflowName is the public identifier for registering the workflow.
	CheckoutWorkflowName = "orders.workflows.Checkout"
	// CheckoutTaskQueue is the queue consumed by the worker processing order workflows.
	CheckoutTaskQueue = "ORDER_CHECKOUT"
)

// CheckoutWorkflowInput captures the payload required to open an order.
type CheckoutWorkflowInput struct {
	Command types.CreateOrderInput
	TraceID string
}

// CheckoutWorkflow orchestrates the activities needed to open an order.
func CheckoutWorkflow(ctx workflow.Context, input CheckoutWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	productID := input.Command.ProductID
	logger.Info("CheckoutWorkflow started", withTraceID(input.TraceID, "productId", productID)...)
	order, err := sequences.RunOrderCheckoutSequence(ctx, input.Command)
	if err != nil {
		logger.Error("CheckoutWorkflow failed", withTraceID(input.TraceID, "productId", productID, "error", err)...)
		return nil, err
	}
	logger.Info("CheckoutWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
