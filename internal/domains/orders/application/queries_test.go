package application

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	types "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	productdomain "github.com/Apurer/secondhand-market/internal/domains/products/domain"
	"github.com/Apurer/secondhand-market/internal/shared/projection"
)

func TestGetOrder_ParticipantsOnly(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "100.00")
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)

	for _, user := range []int64{buyerB, sellerS} {
		detail, err := f.svc.GetOrder(ctx, types.OrderLookup{OrderID: order.ID, UserID: user})
		require.NoError(t, err)
		require.Equal(t, order.Number, detail.Order.Number)
		require.NotNil(t, detail.Listing)
		require.True(t, detail.Listing.Available)
		require.Equal(t, string(productdomain.StatusOnSale), detail.Listing.Status)
	}

	_, err = f.svc.GetOrder(ctx, types.OrderLookup{OrderID: order.ID, UserID: buyerC})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetOrder(ctx, types.OrderLookup{OrderID: 999, UserID: buyerB})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrder_ListingReflectsCurrentProduct(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "100.00")
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)
	_, err = f.svc.PayOrder(ctx, types.TransitionInput{OrderID: order.ID, UserID: buyerB})
	require.NoError(t, err)

	edited := product.Clone()
	require.NoError(t, edited.Revise("Film camera (sold)", "", decimal.RequireFromString("90"), nil))
	_, err = f.products.Update(ctx, edited)
	require.NoError(t, err)

	detail, err := f.svc.GetOrder(ctx, types.OrderLookup{OrderID: order.ID, UserID: sellerS})
	require.NoError(t, err)
	require.Equal(t, "Film camera", detail.Order.Snapshot.Title)
	require.Equal(t, "Film camera (sold)", detail.Listing.Title)
	require.False(t, detail.Listing.Available)
	require.True(t, detail.Listing.Price.Equal(decimal.RequireFromString("90")))
}

func TestGetOrderByNumber(t *testing.T) {
	f := newFixture(t)
	product := f.listProduct(t, sellerS, "10")
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)

	detail, err := f.svc.GetOrderByNumber(ctx, types.OrderNumberLookup{Number: " " + order.Number + " ", UserID: buyerB})
	require.NoError(t, err)
	require.Equal(t, order.ID, detail.Order.ID)

	_, err = f.svc.GetOrderByNumber(ctx, types.OrderNumberLookup{Number: "ORD000", UserID: buyerB})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetOrderByNumber(ctx, types.OrderNumberLookup{Number: "", UserID: buyerB})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.GetOrderByNumber(ctx, types.OrderNumberLookup{Number: order.Number, UserID: buyerC})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestListOrders_ByRoleAndStatus(t *testing.T) {
	f := newFixture(t, WithClock(newStepClock().Now))
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		product := f.listProduct(t, sellerS, "10")
		order, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}
	other := f.listProduct(t, buyerC, "5")
	_, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: other.ID})
	require.NoError(t, err)

	_, err = f.svc.PayOrder(ctx, types.TransitionInput{OrderID: ids[0], UserID: buyerB})
	require.NoError(t, err)

	purchases, err := f.svc.ListOrders(ctx, types.ListOrdersInput{UserID: buyerB, Role: domain.RoleBuyer})
	require.NoError(t, err)
	require.Equal(t, int64(4), purchases.Total)

	sales, err := f.svc.ListOrders(ctx, types.ListOrdersInput{UserID: sellerS, Role: domain.RoleSeller, Status: "all"})
	require.NoError(t, err)
	require.Equal(t, int64(3), sales.Total)
	require.Equal(t, ids[2], sales.Items[0].ID, "newest first")

	paid, err := f.svc.ListOrders(ctx, types.ListOrdersInput{UserID: sellerS, Role: domain.RoleSeller, Status: "paid"})
	require.NoError(t, err)
	require.Len(t, paid.Items, 1)
	require.Equal(t, ids[0], paid.Items[0].ID)

	none, err := f.svc.ListOrders(ctx, types.ListOrdersInput{UserID: buyerC, Role: domain.RoleBuyer})
	require.NoError(t, err)
	require.NotNil(t, none.Items)
	require.Empty(t, none.Items)
}

func TestListOrders_Paging(t *testing.T) {
	f := newFixture(t, WithClock(newStepClock().Now))
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		product := f.listProduct(t, sellerS, "10")
		_, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
		require.NoError(t, err)
	}

	page, err := f.svc.ListOrders(ctx, types.ListOrdersInput{
		UserID:      buyerB,
		Role:        domain.RoleBuyer,
		PageRequest: projection.PageRequest{Page: 2, PageSize: 2},
	})
	require.NoError(t, err)
	require.Equal(t, int64(5), page.Total)
	require.Equal(t, 2, page.Page)
	require.Equal(t, 2, page.PageSize)
	require.Len(t, page.Items, 2)

	beyond, err := f.svc.ListOrders(ctx, types.ListOrdersInput{
		UserID:      buyerB,
		Role:        domain.RoleBuyer,
		PageRequest: projection.PageRequest{Page: 9, PageSize: 2},
	})
	require.NoError(t, err)
	require.Empty(t, beyond.Items)
	require.Equal(t, int64(5), beyond.Total)
}

func TestListOrders_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.listProduct(t, sellerS, "10")
	_, err := f.svc.CreateOrder(ctx, types.CreateOrderInput{BuyerID: buyerB, ProductID: product.ID})
	require.NoError(t, err)

	for _, size := range []int{0, 1, 10, projection.MaxPageSize} {
		require.NotPanics(t, func() {
			page, err := f.svc.ListOrders(ctx, types.ListOrdersInput{
				UserID:      buyerB,
				Role:        domain.RoleBuyer,
				PageRequest: projection.PageRequest{Page: math.MaxInt, PageSize: size},
			})
			require.NoError(t, err)
			require.NotNil(t, page.Items)
			require.Empty(t, page.Items)
			require.Equal(t, int64(1), page.Total)
		})
	}
}

func TestListOrders_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListOrders(ctx, types.ListOrdersInput{UserID: buyerB, Role: domain.RoleBuyer, Status: "lost"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.ListOrders(ctx, types.ListOrdersInput{UserID: buyerB, Role: "courier"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.ListOrders(ctx, types.ListOrdersInput{UserID: 0, Role: domain.RoleBuyer})
	require.ErrorIs(t, err, ErrValidation)
}
