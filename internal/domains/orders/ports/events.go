package ports

import (
	"context"

	"github.com/Apurer/secondhand-market/internal/domains/orders/domain"
)

// EventPublisher ships committed lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
