package marketserver

import (
	"github.com/gin-gonic/gin"

	productmapper "github.com/Apurer/secondhand-market/internal/domains/products/adapters/http/mapper"
	productstypes "github.com/Apurer/secondhand-market/internal/domains/products/application/types"
	productsports "github.com/Apurer/secondhand-market/internal/domains/products/ports"
	apierrors "github.com/Apurer/secondhand-market/internal/shared/errors"
)

// ProductAPI serves the listing endpoints orders are placed against.
type ProductAPI struct {
	service productsports.Service
}

func NewProductAPI(service productsports.Service) ProductAPI {
	return ProductAPI{service: service}
}

// Post /api/products
// List a new item for sale
func (api *ProductAPI) CreateProduct(c *gin.Context) {
	var payload productmapper.CreateProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	product, err := api.service.CreateProduct(c.Request.Context(), productmapper.ToCreateInput(CurrentUserID(c), payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	apierrors.OK(c, "product created", productmapper.FromDomainProduct(product))
}

// Get /api/products/:id
func (api *ProductAPI) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	apierrors.OK(c, "", productmapper.FromDomainProduct(product))
}

// Put /api/products/:id
// Revise the descriptive fields of a listing
func (api *ProductAPI) ReviseProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload productmapper.ReviseProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	product, err := api.service.ReviseProduct(c.Request.Context(), productmapper.ToReviseInput(id, CurrentUserID(c), payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	apierrors.OK(c, "product updated", productmapper.FromDomainProduct(product))
}

// Get /api/products/mine
func (api *ProductAPI) ListMyProducts(c *gin.Context) {
	page, ok := parsePageQuery(c)
	if !ok {
		return
	}
	result, err := api.service.ListSellerProducts(c.Request.Context(), productstypes.ListSellerProductsInput{
		SellerID:    CurrentUserID(c),
		PageRequest: page,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	apierrors.OK(c, "", productmapper.FromProductPage(result))
}
