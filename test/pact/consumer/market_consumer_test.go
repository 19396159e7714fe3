//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	pacttest "github.com/Apurer/secondhand-market/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	ID          int64  `json:"id"`
	OrderNo     string `json:"orderNo"`
	ProductID   int64  `json:"productId"`
	Status      string `json:"status"`
	TotalAmount string `json:"totalAmount"`
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiError struct {
	status  int
	message string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.message, e.status)
}

func TestMarketWebContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	buyerHeader := strconv.FormatInt(pacttest.BuyerID, 10)
	orderMatcher := func(status string) matchers.Map {
		return matchers.Map{
			"id":          matchers.Like(pacttest.ExistingOrderID),
			"orderNo":     matchers.Term("ORD20240309140000ABCDEF12", pacttest.OrderNumberPattern),
			"productId":   matchers.Like(pacttest.ExistingProductID),
			"productName": matchers.S(pacttest.ProductTitle),
			"status":      matchers.S(status),
			"totalAmount": matchers.S(pacttest.ProductPrice),
			"buyerId":     matchers.Like(pacttest.BuyerID),
			"sellerId":    matchers.Like(pacttest.SellerID),
		}
	}

	pact.AddInteraction().
		Given(pacttest.StateProductOnSale).
		UponReceiving("a request to order a listed product").
		WithRequest("POST", "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("X-User-ID", matchers.S(buyerHeader))
			b.JSONBody(matchers.Map{"productId": matchers.Like(pacttest.ExistingProductID), "quantity": matchers.Like(1)})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"code":    matchers.Like(http.StatusOK),
				"message": matchers.Like("order created"),
				"data":    orderMatcher("pending"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StatePendingOrder).
		UponReceiving("a request to pay a pending order").
		WithRequest("POST", "/api/orders/pay", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("X-User-ID", matchers.S(buyerHeader))
			b.JSONBody(matchers.Map{"orderId": matchers.Like(pacttest.ExistingOrderID), "paymentMethod": matchers.Like("card")})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"code":    matchers.Like(http.StatusOK),
				"message": matchers.Like("order paid"),
				"data":    orderMatcher("paid"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateNoOrders).
		UponReceiving("a request for a missing order").
		WithRequest("GET", fmt.Sprintf("/api/orders/%d", pacttest.MissingOrderID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("X-User-ID", matchers.S(buyerHeader))
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"code":    matchers.Like(http.StatusNotFound),
				"message": matchers.Like("order not found"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newMarketClient(config, pacttest.BuyerID)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.CreateOrder(ctx, pacttest.ExistingProductID, 1)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if created.Status != "pending" || created.ID == 0 {
			return fmt.Errorf("unexpected created order %+v", created)
		}

		paid, err := client.PayOrder(ctx, pacttest.ExistingOrderID)
		if err != nil {
			return fmt.Errorf("pay order: %w", err)
		}
		if paid.Status != "paid" {
			return fmt.Errorf("expected paid order, got %+v", paid)
		}

		if _, err := client.GetOrder(ctx, pacttest.MissingOrderID); err == nil {
			return fmt.Errorf("expected 404 for order %d", pacttest.MissingOrderID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.status)
		}
		return nil
	})
	require.NoError(t, err)
}

type marketClient struct {
	baseURL    string
	userID     int64
	httpClient *http.Client
}

func newMarketClient(config pactconsumer.MockServerConfig, userID int64) *marketClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &marketClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		userID:     userID,
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *marketClient) CreateOrder(ctx context.Context, productID int64, quantity int) (*orderPayload, error) {
	return c.send(ctx, http.MethodPost, "/api/orders", map[string]any{"productId": productID, "quantity": quantity})
}

func (c *marketClient) PayOrder(ctx context.Context, orderID int64) (*orderPayload, error) {
	return c.send(ctx, http.MethodPost, "/api/orders/pay", map[string]any{"orderId": orderID, "paymentMethod": "card"})
}

func (c *marketClient) GetOrder(ctx context.Context, orderID int64) (*orderPayload, error) {
	return c.send(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), nil)
}

func (c *marketClient) send(ctx context.Context, method, path string, body any) (*orderPayload, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", strconv.FormatInt(c.userID, 10))

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, apiError{status: res.StatusCode, message: env.Message}
	}
	var order orderPayload
	if err := json.Unmarshal(env.Data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
