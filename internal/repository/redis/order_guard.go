package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const guardKeyPrefix = "storefront:"

// OrderGuard реализует repository.OrderGuard через SET NX с TTL.
// Общий Redis делает гарантию at-most-once общей для всех реплик storefront.
type OrderGuard struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewOrderGuard создаёт новый Redis guard
func NewOrderGuard(client redis.UniversalClient, logger *zap.Logger) *OrderGuard {
	return &OrderGuard{
		client: client,
		logger: logger,
	}
}

func guardKey(key string) string {
	return guardKeyPrefix + key
}

// TryAcquire атомарно помечает key. false означает, что key уже помечен и TTL не истёк.
func (g *OrderGuard) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, guardKey(key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		g.logger.Error("failed to set order guard in redis",
			zap.Error(err),
			zap.String("key", key),
		)
		return false, fmt.Errorf("failed to acquire order guard: %w", err)
	}

	if !ok {
		g.logger.Debug("order guard already held",
			zap.String("key", key),
		)
	}
	return ok, nil
}
