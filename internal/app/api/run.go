package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	marketserver "github.com/Apurer/secondhand-market/go"

	ordersworkflows "github.com/Apurer/secondhand-market/internal/domains/orders/adapters/workflows"
	ordersports "github.com/Apurer/secondhand-market/internal/domains/orders/ports"
	platformmetrics "github.com/Apurer/secondhand-market/internal/platform/metrics"
	platformobservability "github.com/Apurer/secondhand-market/internal/platform/observability"
)

const serviceName = "market-api"

// Run boots the marketplace HTTP API and serves until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backend := BuildBackend(ctx, cfg, instruments)
	defer backend.Close()

	var orderWorkflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(backend.Orders)
	if temporalClient, err := DialTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, creating orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handler := NewHandler(cfg, backend, orderWorkflows, platformmetrics.NewServerMetrics("api", nil), logger)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("marketplace API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("marketplace API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down marketplace API")
	return server.Shutdown(shutdownCtx)
}

// NewHandler assembles the gin engine with tracing, metrics and authentication.
func NewHandler(cfg Config, backend *Backend, workflows ordersports.WorkflowOrchestrator, metrics *platformmetrics.ServerMetrics, logger *slog.Logger) http.Handler {
	var auth marketserver.Authenticator = marketserver.HeaderAuthenticator{}
	if cfg.JWTSecret != "" {
		auth = marketserver.NewJWTAuthenticator(cfg.JWTSecret)
	} else if logger != nil {
		logger.Warn("JWT_SECRET not set, trusting the X-User-ID header")
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	handlers := marketserver.ApiHandleFunctions{
		OrderAPI:      marketserver.NewOrderAPI(backend.Orders, workflows),
		ProductAPI:    marketserver.NewProductAPI(backend.Products),
		Authenticator: auth,
	}
	if metrics != nil {
		router.Use(metrics.Middleware())
		handlers.Metrics = metrics.Handler()
	}
	return marketserver.NewRouterWithGinEngine(router, handlers)
}
