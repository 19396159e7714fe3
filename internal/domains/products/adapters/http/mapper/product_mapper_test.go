package mapper

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	productdomain "github.com/Apurer/secondhand-market/internal/domains/products/domain"
)

func TestFromDomainProduct(t *testing.T) {
	out := FromDomainProduct(&productdomain.Product{
		ID:     3,
		Title:  "Lamp",
		Price:  decimal.RequireFromString("12.5"),
		Status: productdomain.StatusOnSale,
	})
	require.Equal(t, "12.50", out.Price)
	require.Equal(t, "on_sale", out.Status)
	require.NotNil(t, out.ImageURLs)
}

func TestToReviseInput_KeepsOmittedFieldsNil(t *testing.T) {
	title := "Desk lamp"
	in := ToReviseInput(3, 7, ReviseProductRequest{Title: &title})
	require.Equal(t, int64(3), in.ProductID)
	require.Equal(t, int64(7), in.SellerID)
	require.Equal(t, &title, in.Title)
	require.Nil(t, in.Price)
	require.Nil(t, in.ImageURLs)
}
