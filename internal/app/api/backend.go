package api

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	orderscache "github.com/Apurer/secondhand-market/internal/domains/orders/adapters/cache/redis"
	orderskafka "github.com/Apurer/secondhand-market/internal/domains/orders/adapters/events/kafka"
	ordersmemory "github.com/Apurer/secondhand-market/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/secondhand-market/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/secondhand-market/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/secondhand-market/internal/domains/orders/application"
	ordersports "github.com/Apurer/secondhand-market/internal/domains/orders/ports"
	productsmemory "github.com/Apurer/secondhand-market/internal/domains/products/adapters/memory"
	productsobs "github.com/Apurer/secondhand-market/internal/domains/products/adapters/observability"
	productspostgres "github.com/Apurer/secondhand-market/internal/domains/products/adapters/persistence/postgres"
	productsapp "github.com/Apurer/secondhand-market/internal/domains/products/application"
	productsports "github.com/Apurer/secondhand-market/internal/domains/products/ports"
	platformobservability "github.com/Apurer/secondhand-market/internal/platform/observability"
	platformpostgres "github.com/Apurer/secondhand-market/internal/platform/postgres"
	platformredis "github.com/Apurer/secondhand-market/internal/platform/redis"
)

// Backend holds the decorated services shared by the API and worker processes.
type Backend struct {
	Orders   ordersports.Service
	Products productsports.Service
	closers  []func()
}

// Close releases every connection opened by BuildBackend, newest first.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// BuildBackend selects the storage, idempotency and event adapters from cfg.
// Backends that are not configured or unreachable fall back to in-memory
// implementations, logged at WARN.
func BuildBackend(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) *Backend {
	logger := effectiveLogger(instruments)
	b := &Backend{}

	db, closeDB := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	b.closers = append(b.closers, closeDB)

	var (
		orderStore  ordersports.Store
		productRepo productsports.Repository
		idempotency ordersports.IdempotencyStore
	)
	if db != nil {
		orderStore, productRepo, idempotency = postgresStores(db)
	} else {
		products := productsmemory.NewRepository()
		orderStore, productRepo, idempotency = ordersmemory.NewStore(products), products, ordersmemory.NewIdempotencyStore()
	}

	redisClient, closeRedis := platformredis.Connect(ctx, cfg.RedisAddr, logger)
	b.closers = append(b.closers, closeRedis)
	if redisClient != nil {
		idempotency = orderscache.NewIdempotencyStore(redisClient, orderscache.WithTTL(cfg.IdempotencyTTL))
	}

	opts := []ordersapp.Option{
		ordersapp.WithIdempotencyStore(idempotency),
		ordersapp.WithLogger(logger),
	}
	if publisher := b.eventPublisher(cfg, logger); publisher != nil {
		opts = append(opts, ordersapp.WithEventPublisher(publisher))
	}

	b.Orders = ordersobs.New(
		ordersapp.NewService(orderStore, opts...),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	b.Products = productsobs.New(
		productsapp.NewService(productRepo),
		productsobs.WithLogger(logger),
		productsobs.WithTracer(instruments.Tracer("internal.products.application")),
		productsobs.WithMeter(instruments.Meter("internal.products.application")),
	)
	return b
}

func postgresStores(db *gorm.DB) (ordersports.Store, productsports.Repository, ordersports.IdempotencyStore) {
	return orderspostgres.NewStore(db), productspostgres.NewRepository(db), orderspostgres.NewIdempotencyStore(db)
}

func (b *Backend) eventPublisher(cfg Config, logger *slog.Logger) ordersports.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, order events are not published")
		return nil
	}
	producer, err := orderskafka.NewSyncProducer(cfg.KafkaBrokers)
	if err != nil {
		logger.Warn("kafka unavailable, order events are not published", slog.String("error", err.Error()))
		return nil
	}
	publisher := orderskafka.NewPublisher(producer, cfg.KafkaOrderTopic, logger)
	b.closers = append(b.closers, func() { _ = publisher.Close() })
	logger.Info("order events published to kafka", slog.String("topic", cfg.KafkaOrderTopic))
	return publisher
}
