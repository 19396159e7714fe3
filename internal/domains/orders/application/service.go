package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	types "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	"github.com/Apurer/secondhand-market/internal/domains/orders/ports"
	productdomain "github.com/Apurer/secondhand-market/internal/domains/products/domain"
)

// maxNumberAttempts bounds the silent retry on order-number collisions.
const maxNumberAttempts = 3

var (
	errInvalidOrderID = errors.New("order id must be greater than zero")
	errInvalidUserID  = errors.New("user id must be greater than zero")
	errUnknownRole    = errors.New("role must be buyer or seller")
	errListingGone    = fmt.Errorf("%w: listing is no longer available", productdomain.ErrNotOnSale)
	errOrderChanged   = fmt.Errorf("%w: order was changed concurrently", domain.ErrInvalidTransition)
)

// NumberSource hands out fresh order numbers.
type NumberSource interface {
	Next() string
}

// Service is the order lifecycle engine plus its query side. It is the only
// writer of order state and product availability.
type Service struct {
	tx          ports.Transactor
	queries     ports.OrderQueries
	numbers     NumberSource
	now         func() time.Time
	idempotency ports.IdempotencyStore
	events      ports.EventPublisher
	logger      *slog.Logger
}

// Option configures optional collaborators.
type Option func(*Service)

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNumberSource replaces the default order number generator.
func WithNumberSource(numbers NumberSource) Option {
	return func(s *Service) {
		if numbers != nil {
			s.numbers = numbers
		}
	}
}

// WithIdempotencyStore enables Idempotency-Key replay for CreateOrder.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithEventPublisher publishes lifecycle events after each committed transition.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.events = publisher
	}
}

// WithLogger injects the logger used for post-commit warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the order engine with a store serving both transactions and queries.
func NewService(store ports.Store, opts ...Option) *Service {
	s := &Service{
		tx:      store,
		queries: store,
		numbers: domain.NewNumberGenerator(),
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder opens a PENDING order for an on-sale product. The product stays
// ON_SALE until the order is paid.
func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error) {
	quantity := int32(1)
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	switch {
	case quantity < 1:
		return nil, mapError(domain.ErrInvalidQuantity)
	case input.BuyerID <= 0:
		return nil, mapError(domain.ErrInvalidBuyer)
	case input.ProductID <= 0:
		return nil, mapError(domain.ErrInvalidProduct)
	}

	key := idempotencyScope(input.BuyerID, input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		fp, err := FingerprintCreateOrder(input, quantity)
		if err != nil {
			return nil, err
		}
		fingerprint = fp
		replayed, err := s.replay(ctx, key, fingerprint)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	order, err := s.createWithRetry(ctx, input, quantity)
	if err != nil {
		if fingerprint != "" {
			// A concurrent request with the same key may have won the race.
			if replayed, replayErr := s.replay(ctx, key, fingerprint); replayErr != nil || replayed != nil {
				return replayed, replayErr
			}
		}
		return nil, mapError(err)
	}
	if fingerprint != "" {
		s.remember(ctx, key, fingerprint, order.ID)
	}
	s.publish(ctx, domain.EventOrderCreated, order)
	return order, nil
}

// PayOrder moves a PENDING order to PAID and marks its product SOLD in the same transaction.
func (s *Service) PayOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error) {
	return s.advance(ctx, domain.ActionPay, input)
}

// ShipOrder moves a PAID order to SHIPPED.
func (s *Service) ShipOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error) {
	return s.advance(ctx, domain.ActionShip, input)
}

// CompleteOrder moves a SHIPPED order to COMPLETED.
func (s *Service) CompleteOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error) {
	return s.advance(ctx, domain.ActionComplete, input)
}

// CancelOrder moves a PENDING order to CANCELLED. The product is untouched.
func (s *Service) CancelOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error) {
	return s.advance(ctx, domain.ActionCancel, input)
}

func (s *Service) createWithRetry(ctx context.Context, input types.CreateOrderInput, quantity int32) (*domain.Order, error) {
	for attempt := 1; ; attempt++ {
		order, err := s.createOnce(ctx, input, quantity)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ports.ErrDuplicateOrderNumber) || attempt >= maxNumberAttempts {
			return nil, err
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order number collision, retrying",
			slog.Int("attempt", attempt), slog.Int64("product.id", input.ProductID))
	}
}

func (s *Service) createOnce(ctx context.Context, input types.CreateOrderInput, quantity int32) (*domain.Order, error) {
	var created *domain.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		product, err := tx.Products().FindForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if err := product.EnsureOnSale(); err != nil {
			return err
		}
		if product.SellerID == input.BuyerID {
			return domain.ErrSelfPurchase
		}
		active, err := tx.Orders().ExistsActiveForProduct(ctx, product.ID)
		if err != nil {
			return err
		}
		if active {
			return errProductHasActiveOrder
		}
		order, err := domain.NewOrder(domain.Draft{
			Number:    s.numbers.Next(),
			ProductID: product.ID,
			BuyerID:   input.BuyerID,
			SellerID:  product.SellerID,
			Snapshot: domain.Snapshot{
				Title:    product.Title,
				ImageURL: product.CoverImage(),
				Price:    product.Price,
			},
			Quantity: quantity,
			Remark:   input.Remark,
			At:       s.now().UTC(),
		})
		if err != nil {
			return err
		}
		created, err = tx.Orders().Insert(ctx, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) advance(ctx context.Context, action domain.Action, input types.TransitionInput) (*domain.Order, error) {
	if input.OrderID <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, errInvalidOrderID)
	}
	var updated *domain.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		order, err := tx.Orders().FindByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		expected := order.Status
		if err := order.Apply(action, input.UserID, s.now().UTC()); err != nil {
			return err
		}
		if action == domain.ActionShip && strings.TrimSpace(input.Remark) != "" {
			if err := order.SetSellerRemark(input.Remark); err != nil {
				return err
			}
		}
		result, err := tx.Orders().UpdateStatus(ctx, order, expected)
		if err != nil {
			return err
		}
		switch result {
		case ports.WriteNotFound:
			return ports.ErrNotFound
		case ports.WritePreconditionFailed:
			return errOrderChanged
		}
		if action == domain.ActionPay {
			result, err := tx.Products().MarkSold(ctx, order.ProductID, order.SellerID)
			if err != nil {
				return err
			}
			if result != ports.WriteApplied {
				return errListingGone
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.EventForAction(action), updated)
	return updated, nil
}

// idempotencyScope namespaces a client key by buyer so that two buyers
// sending the same key never share a stored record.
func idempotencyScope(buyerID int64, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return fmt.Sprintf("buyer-%d:%s", buyerID, key)
}

func (s *Service) replay(ctx context.Context, key, fingerprint string) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != fingerprint {
		return nil, mapError(ports.ErrIdempotencyConflict)
	}
	order, err := s.queries.FindByID(ctx, record.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) remember(ctx context.Context, key, fingerprint string, orderID int64) {
	_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: fingerprint, OrderID: orderID})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to store idempotency key",
			slog.Int64("order.id", orderID), slog.String("error", err.Error()))
	}
}

// publish is best effort: the transition is already committed.
func (s *Service) publish(ctx context.Context, eventType domain.EventType, order *domain.Order) {
	if s.events == nil || order == nil || eventType == "" {
		return
	}
	event := domain.NewEvent(eventType, order, s.now())
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order event",
			slog.String("event.type", string(eventType)),
			slog.Int64("order.id", order.ID),
			slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
