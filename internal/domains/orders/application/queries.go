package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	types "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	"github.com/Apurer/secondhand-market/internal/domains/orders/ports"
	productdomain "github.com/Apurer/secondhand-market/internal/domains/products/domain"
	"github.com/Apurer/secondhand-market/internal/shared/projection"
)

const statusFilterAll = "all"

// GetOrder returns the order and its current listing to the buyer or the seller.
func (s *Service) GetOrder(ctx context.Context, input types.OrderLookup) (*types.OrderDetail, error) {
	if input.OrderID <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, errInvalidOrderID)
	}
	order, err := s.queries.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return s.detailFor(ctx, order, input.UserID)
}

// GetOrderByNumber is GetOrder keyed by the public order number.
func (s *Service) GetOrderByNumber(ctx context.Context, input types.OrderNumberLookup) (*types.OrderDetail, error) {
	number := strings.TrimSpace(input.Number)
	if number == "" {
		return nil, mapError(domain.ErrEmptyOrderNumber)
	}
	order, err := s.queries.FindByNumber(ctx, number)
	if err != nil {
		return nil, mapError(err)
	}
	return s.detailFor(ctx, order, input.UserID)
}

// ListOrders pages through the caller's purchases (RoleBuyer) or sales (RoleSeller), newest first.
func (s *Service) ListOrders(ctx context.Context, input types.ListOrdersInput) (*types.OrderPage, error) {
	if input.UserID <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, errInvalidUserID)
	}
	status, err := parseStatusFilter(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	req := input.PageRequest.Normalize()
	filter := ports.ListFilter{Status: status, Offset: req.Offset(), Limit: req.Limit()}

	var (
		orders []*domain.Order
		total  int64
	)
	switch input.Role {
	case domain.RoleBuyer:
		orders, total, err = s.queries.ListByBuyer(ctx, input.UserID, filter)
	case domain.RoleSeller:
		orders, total, err = s.queries.ListBySeller(ctx, input.UserID, filter)
	default:
		return nil, fmt.Errorf("%w: %w", ErrValidation, errUnknownRole)
	}
	if err != nil {
		return nil, mapError(err)
	}
	return projection.NewPage(orders, total, req), nil
}

func (s *Service) detailFor(ctx context.Context, order *domain.Order, userID int64) (*types.OrderDetail, error) {
	if !order.IsParticipant(userID) {
		return nil, mapError(domain.ErrNotParticipant)
	}
	listing, err := s.listingSummary(ctx, order.ProductID)
	if err != nil {
		return nil, mapError(err)
	}
	return &types.OrderDetail{Order: order, Listing: listing}, nil
}

// listingSummary tolerates a vanished product: the order snapshot stays authoritative.
func (s *Service) listingSummary(ctx context.Context, productID int64) (*types.ListingSummary, error) {
	product, err := s.queries.FindProduct(ctx, productID)
	if errors.Is(err, ports.ErrProductNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &types.ListingSummary{
		Title:     product.Title,
		Price:     product.Price,
		Status:    string(product.Status),
		Available: product.Status == productdomain.StatusOnSale,
	}, nil
}

func parseStatusFilter(raw string) (*domain.Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, statusFilterAll) {
		return nil, nil
	}
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
