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

	types "github.com/Apurer/secondhand-market/internal/domains/products/application/types"
	"github.com/Apurer/secondhand-market/internal/domains/products/domain"
	"github.com/Apurer/secondhand-market/internal/domains/products/ports"
)

const tracerName = "github.com/Apurer/secondhand-market/internal/domains/products/adapters/observability/service"

// Service decorates the products service with tracing, logging, and metrics.
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

func (s *Service) CreateProduct(ctx context.Context, input types.CreateProductInput) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct", trace.WithAttributes(attribute.Int64("seller.id", input.SellerID)))
	defer span.End()

	s.logInfo(ctx, "creating product", slog.Int64("seller.id", input.SellerID))
	result, err := s.inner.CreateProduct(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create product", slog.Int64("seller.id", input.SellerID))
	}
	s.metrics.recordCreated(ctx)
	span.SetAttributes(attribute.Int64("product.id", result.ID))
	s.logInfo(ctx, "product created", slog.Int64("product.id", result.ID), slog.Int64("seller.id", result.SellerID))
	return result, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	result, err := s.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load product", slog.Int64("product.id", id))
	}
	return result, nil
}

func (s *Service) ReviseProduct(ctx context.Context, input types.ReviseProductInput) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ReviseProduct",
		trace.WithAttributes(attribute.Int64("product.id", input.ProductID), attribute.Int64("seller.id", input.SellerID)))
	defer span.End()

	s.logInfo(ctx, "revising product", slog.Int64("product.id", input.ProductID), slog.Int64("seller.id", input.SellerID))
	result, err := s.inner.ReviseProduct(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to revise product", slog.Int64("product.id", input.ProductID))
	}
	s.metrics.recordRevised(ctx)
	s.logInfo(ctx, "product revised", slog.Int64("product.id", result.ID))
	return result, nil
}

func (s *Service) ListSellerProducts(ctx context.Context, input types.ListSellerProductsInput) (*types.ProductPage, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListSellerProducts", trace.WithAttributes(attribute.Int64("seller.id", input.SellerID)))
	defer span.End()

	result, err := s.inner.ListSellerProducts(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list seller products", slog.Int64("seller.id", input.SellerID))
	}
	span.SetAttributes(attribute.Int64("products.total", result.Total))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	productsCreated metric.Int64Counter
	productsRevised metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	productsCreated, _ := m.Int64Counter("products.service.created", metric.WithDescription("Number of listings created"))
	productsRevised, _ := m.Int64Counter("products.service.revised", metric.WithDescription("Number of listing revisions"))
	return serviceMetrics{productsCreated: productsCreated, productsRevised: productsRevised}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.productsCreated != nil {
		m.productsCreated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordRevised(ctx context.Context) {
	if m.productsRevised != nil {
		m.productsRevised.Add(ctx, 1)
	}
}

var _ ports.Service = (*Service)(nil)
