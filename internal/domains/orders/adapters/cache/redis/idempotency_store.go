package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/secondhand-market/internal/domains/orders/ports"
)

const (
	defaultKeyPrefix = "market:idempotency:order:"
	defaultTTL       = 24 * time.Hour
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps idempotency keys in Redis with an expiry, so replays
// are honoured for a bounded window.
type IdempotencyStore struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option customises the store.
type Option func(*IdempotencyStore)

// WithTTL overrides how long keys are remembered.
func WithTTL(ttl time.Duration) Option {
	return func(s *IdempotencyStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces the Redis keys.
func WithKeyPrefix(prefix string) Option {
	return func(s *IdempotencyStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewIdempotencyStore wires a Redis-backed idempotency store. Caller manages client lifecycle.
func NewIdempotencyStore(client goredis.UniversalClient, opts ...Option) *IdempotencyStore {
	s := &IdempotencyStore{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    defaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the stored record for the key, or nil when absent or expired.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record ports.IdempotencyRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Save stores the record only if the key is unused. A taken key returns the
// stored record, with ErrIdempotencyConflict when it belongs to another request.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	stored, err := s.client.SetNX(ctx, s.prefix+record.Key, payload, s.ttl).Result()
	if err != nil {
		return nil, err
	}
	if stored {
		return &record, nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// expired between SETNX and GET
		return s.Save(ctx, record)
	}
	if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

func (s *IdempotencyStore) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis idempotency store not configured")
	}
	return nil
}
