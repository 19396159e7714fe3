package marketserver

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/secondhand-market/internal/domains/orders/adapters/http/mapper"
	orderstypes "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
	orderdomain "github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	ordersports "github.com/Apurer/secondhand-market/internal/domains/orders/ports"
	apierrors "github.com/Apurer/secondhand-market/internal/shared/errors"
	"github.com/Apurer/secondhand-market/internal/shared/projection"
)

// IdempotencyKeyHeader makes order creation safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderAPI wires HTTP transport with the orders bounded context service and workflows.
type OrderAPI struct {
	service   ordersports.Service
	workflows ordersports.WorkflowOrchestrator
}

// NewOrderAPI creates an OrderAPI. A nil orchestrator creates orders through the service directly.
func NewOrderAPI(service ordersports.Service, workflows ordersports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Post /api/orders
// Open an order for a listing
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload ordermapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := ordermapper.ToCreateInput(CurrentUserID(c), c.GetHeader(IdempotencyKeyHeader), payload)
	order, err := api.createOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	apierrors.OK(c, "order created", ordermapper.FromDomainOrder(order))
}

func (api *OrderAPI) createOrder(ctx context.Context, input orderstypes.CreateOrderInput) (*orderdomain.Order, error) {
	if api.workflows != nil {
		return api.workflows.CreateOrder(ctx, input)
	}
	return api.service.CreateOrder(ctx, input)
}

// Get /api/orders/my
// List the orders of the caller as buyer
func (api *OrderAPI) ListMyOrders(c *gin.Context) {
	api.listOrders(c, orderdomain.RoleBuyer)
}

// Get /api/orders/sales
// List the orders of the caller as seller
func (api *OrderAPI) ListMySales(c *gin.Context) {
	api.listOrders(c, orderdomain.RoleSeller)
}

func (api *OrderAPI) listOrders(c *gin.Context, role orderdomain.Role) {
	page, ok := parsePageQuery(c)
	if !ok {
		return
	}
	result, err := api.service.ListOrders(c.Request.Context(), orderstypes.ListOrdersInput{
		UserID:      CurrentUserID(c),
		Role:        role,
		Status:      requestParam(c, "status"),
		PageRequest: page,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	apierrors.OK(c, "", ordermapper.FromOrderPage(result))
}

// Get /api/orders/:id
// Find an order visible to the caller
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := api.service.GetOrder(c.Request.Context(), orderstypes.OrderLookup{OrderID: id, UserID: CurrentUserID(c)})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	apierrors.OK(c, "", ordermapper.FromOrderDetail(detail))
}

// Get /api/orders/number/:orderNo
// Find an order by its public number
func (api *OrderAPI) GetOrderByNumber(c *gin.Context) {
	number := strings.TrimSpace(c.Param("orderNo"))
	detail, err := api.service.GetOrderByNumber(c.Request.Context(), orderstypes.OrderNumberLookup{Number: number, UserID: CurrentUserID(c)})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	apierrors.OK(c, "", ordermapper.FromOrderDetail(detail))
}

// Post /api/orders/pay
// Pay a pending order
func (api *OrderAPI) PayOrder(c *gin.Context) {
	var payload ordermapper.PayOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.PayOrder(c.Request.Context(), orderstypes.TransitionInput{OrderID: payload.OrderID, UserID: CurrentUserID(c)})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	apierrors.OK(c, "order paid", ordermapper.FromDomainOrder(order))
}

// Post /api/orders/:id/ship
// Ship a paid order, optionally leaving a seller remark
func (api *OrderAPI) ShipOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload ordermapper.ShipOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.ShipOrder(c.Request.Context(), orderstypes.TransitionInput{OrderID: id, UserID: CurrentUserID(c), Remark: payload.Remark})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	apierrors.OK(c, "order shipped", ordermapper.FromDomainOrder(order))
}

// Post /api/orders/:id/complete
// Confirm receipt of a shipped order
func (api *OrderAPI) CompleteOrder(c *gin.Context) {
	api.transition(c, api.service.CompleteOrder, "order completed")
}

// Post /api/orders/:id/cancel
// Cancel a pending order
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	api.transition(c, api.service.CancelOrder, "order cancelled")
}

type transitionFunc func(ctx context.Context, input orderstypes.TransitionInput) (*orderdomain.Order, error)

func (api *OrderAPI) transition(c *gin.Context, fn transitionFunc, message string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := fn(c.Request.Context(), orderstypes.TransitionInput{OrderID: id, UserID: CurrentUserID(c)})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	apierrors.OK(c, message, ordermapper.FromDomainOrder(order))
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, errors.New("invalid "+name+": "+value))
		return 0, false
	}
	return id, true
}

// requestParam reads name from the query string and falls back to a
// url-encoded or multipart form body.
func requestParam(c *gin.Context, name string) string {
	if value, ok := c.GetQuery(name); ok {
		return value
	}
	return c.PostForm(name)
}

func parsePageQuery(c *gin.Context) (projection.PageRequest, bool) {
	var page projection.PageRequest
	for _, q := range []struct {
		name   string
		target *int
	}{{"page", &page.Page}, {"pageSize", &page.PageSize}} {
		raw := strings.TrimSpace(requestParam(c, q.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, errors.New("invalid "+q.name+": "+raw))
			return projection.PageRequest{}, false
		}
		*q.target = n
	}
	return page, true
}
