package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/secondhand-market/internal/domains/orders/application"
	types "github.com/Apurer/secondhand-market/internal/domains/orders/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
	"github.com/Apurer/secondhand-market/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/secondhand-market/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder", trace.WithAttributes(
		attribute.Int64("buyer.id", input.BuyerID),
		attribute.Int64("product.id", input.ProductID),
		attribute.Bool("idempotency.key_present", input.IdempotencyKey != ""),
	))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.Int64("buyer.id", input.BuyerID), slog.Int64("product.id", input.ProductID))
	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order",
			slog.Int64("buyer.id", input.BuyerID), slog.Int64("product.id", input.ProductID))
	}
	s.metrics.recordCreated(ctx)
	span.SetAttributes(attribute.Int64("order.id", result.ID), attribute.String("order.number", result.Number))
	s.logInfo(ctx, "order created", slog.Int64("order.id", result.ID), slog.String("order.number", result.Number))
	return result, nil
}

func (s *Service) PayOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error) {
	return s.transition(ctx, domain.ActionPay, input, s.inner.PayOrder)
}

func (s *Service) ShipOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error) {
	return s.transition(ctx, domain.ActionShip, input, s.inner.ShipOrder)
}

func (s *Service) CompleteOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error) {
	return s.transition(ctx, domain.ActionComplete, input, s.inner.CompleteOrder)
}

func (s *Service) CancelOrder(ctx context.Context, input types.TransitionInput) (*domain.Order, error) {
	return s.transition(ctx, domain.ActionCancel, input, s.inner.CancelOrder)
}

func (s *Service) GetOrder(ctx context.Context, input types.OrderLookup) (*types.OrderDetail, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", input.OrderID)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", input.OrderID))
	}
	return result, nil
}

func (s *Service) GetOrderByNumber(ctx context.Context, input types.OrderNumberLookup) (*types.OrderDetail, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrderByNumber", trace.WithAttributes(attribute.String("order.number", input.Number)))
	defer span.End()

	result, err := s.inner.GetOrderByNumber(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.number", input.Number))
	}
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, input types.ListOrdersInput) (*types.OrderPage, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders", trace.WithAttributes(
		attribute.Int64("user.id", input.UserID),
		attribute.String("order.role", string(input.Role)),
	))
	defer span.End()

	result, err := s.inner.ListOrders(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders",
			slog.Int64("user.id", input.UserID), slog.String("order.role", string(input.Role)))
	}
	span.SetAttributes(attribute.Int64("orders.total", result.Total))
	return result, nil
}

func (s *Service) transition(
	ctx context.Context,
	action domain.Action,
	input types.TransitionInput,
	call func(context.Context, types.TransitionInput) (*domain.Order, error),
) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Transition", trace.WithAttributes(
		attribute.String("order.action", string(action)),
		attribute.Int64("order.id", input.OrderID),
		attribute.Int64("user.id", input.UserID),
	))
	defer span.End()

	s.logInfo(ctx, "transitioning order", slog.String("order.action", string(action)), slog.Int64("order.id", input.OrderID))
	result, err := call(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "order transition rejected",
			slog.String("order.action", string(action)), slog.Int64("order.id", input.OrderID))
	}
	s.metrics.recordTransition(ctx, action)
	span.SetAttributes(attribute.String("order.status", string(result.Status)))
	s.logInfo(ctx, "order transitioned",
		slog.String("order.action", string(action)),
		slog.Int64("order.id", result.ID),
		slog.String("order.status", string(result.Status)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// handleError logs business rejections as warnings and everything else as errors.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	kind := application.KindOf(err)
	level := slog.LevelWarn
	if kind == application.KindInternal {
		level = slog.LevelError
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", kindLabel(kind)))
	}
	s.metrics.recordRejected(ctx, kind)
	if s.logger != nil {
		attrs = append(attrs, slog.String("error.kind", kindLabel(kind)), slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, level, msg, attrs...)
	}
	return err
}

func kindLabel(kind application.Kind) string {
	if kind == application.KindInternal {
		return "Internal"
	}
	return string(kind)
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated     metric.Int64Counter
	ordersTransitions metric.Int64Counter
	ordersRejected    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	ordersTransitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of committed order transitions"))
	ordersRejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of order operations rejected, by error kind"))
	return serviceMetrics{ordersCreated: ordersCreated, ordersTransitions: ordersTransitions, ordersRejected: ordersRejected}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, action domain.Action) {
	if m.ordersTransitions != nil {
		m.ordersTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("action", string(action))))
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, kind application.Kind) {
	if m.ordersRejected != nil {
		m.ordersRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kindLabel(kind))))
	}
}

var _ ports.Service = (*Service)(nil)
