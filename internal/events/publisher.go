// Package events publishes scrape lifecycle events to a Redis stream so
// downstream consumers (alerting, analytics) can follow what the engine
// learns and extracts. Events are advisory: publish failures are logged and
// never fail the scrape that produced them.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event types written to the stream.
const (
	EventStrategyDiscovered = "STRATEGY_DISCOVERED"
	EventProductsScraped    = "PRODUCTS_SCRAPED"
)

// RedisClient is the subset of the redis client used here, for testing.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = "stream:scrape_events"
	}
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

func (p *Publisher) StrategyDiscovered(ctx context.Context, domain, method string) {
	p.publish(ctx, EventStrategyDiscovered, map[string]interface{}{
		"domain": domain,
		"method": method,
	})
}

func (p *Publisher) ProductsScraped(ctx context.Context, domain string, count int) {
	p.publish(ctx, EventProductsScraped, map[string]interface{}{
		"domain": domain,
		"count":  count,
	})
}

func (p *Publisher) publish(ctx context.Context, eventType string, fields map[string]interface{}) {
	values := map[string]interface{}{
		"event_id":   uuid.New().String(),
		"event_type": eventType,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		values[k] = v
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Err(); err != nil {
		p.logger.Error("failed to publish event",
			"type", eventType, "stream", p.stream, "error", err)
	}
}
