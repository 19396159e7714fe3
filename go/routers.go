package marketserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BasePath prefixes every business route.
const BasePath = "/api"

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions bundles the handler groups served by the router.
type ApiHandleFunctions struct {
	OrderAPI   OrderAPI
	ProductAPI ProductAPI
	// Authenticator resolves the acting user; nil falls back to HeaderAuthenticator.
	Authenticator Authenticator
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if handleFunctions.Metrics != nil {
		router.GET("/metrics", gin.WrapH(handleFunctions.Metrics))
	}

	group := router.Group(BasePath, RequireUser(handleFunctions.Authenticator))
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		group.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	orders := &handleFunctions.OrderAPI
	products := &handleFunctions.ProductAPI
	return []Route{
		{"CreateOrder", http.MethodPost, "/orders", orders.CreateOrder},
		{"ListMyOrders", http.MethodGet, "/orders/my", orders.ListMyOrders},
		{"ListMyOrdersPost", http.MethodPost, "/orders/my", orders.ListMyOrders},
		{"ListMySales", http.MethodGet, "/orders/sales", orders.ListMySales},
		{"GetOrderByNumber", http.MethodGet, "/orders/number/:orderNo", orders.GetOrderByNumber},
		{"GetOrder", http.MethodGet, "/orders/:id", orders.GetOrder},
		{"PayOrder", http.MethodPost, "/orders/pay", orders.PayOrder},
		{"ShipOrder", http.MethodPost, "/orders/:id/ship", orders.ShipOrder},
		{"CompleteOrder", http.MethodPost, "/orders/:id/complete", orders.CompleteOrder},
		{"CancelOrder", http.MethodPost, "/orders/:id/cancel", orders.CancelOrder},
		{"CreateProduct", http.MethodPost, "/products", products.CreateProduct},
		{"ListMyProducts", http.MethodGet, "/products/mine", products.ListMyProducts},
		{"GetProduct", http.MethodGet, "/products/:id", products.GetProduct},
		{"ReviseProduct", http.MethodPut, "/products/:id", products.ReviseProduct},
	}
}
