//go:build integration

package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestOrderGuard_Integration(t *testing.T) {
	ctx := context.Background()

	// Поднимаем Redis контейнер через generic testcontainers API
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, container.Terminate(ctx))
	}()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	defer client.Close()
	require.NoError(t, client.Ping(ctx).Err())

	guard := NewOrderGuard(client, zap.NewNop())

	t.Run("first acquire wins", func(t *testing.T) {
		ok, err := guard.TryAcquire(ctx, "order-recording:txn-1", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = guard.TryAcquire(ctx, "order-recording:txn-1", time.Minute)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("ttl is set", func(t *testing.T) {
		ttl, err := client.TTL(ctx, guardKey("order-recording:txn-1")).Result()
		require.NoError(t, err)
		require.Greater(t, ttl, time.Duration(0))
		require.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("expired key can be acquired again", func(t *testing.T) {
		ok, err := guard.TryAcquire(ctx, "order-recording:txn-short", time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		require.Eventually(t, func() bool {
			ok, err := guard.TryAcquire(ctx, "order-recording:txn-short", time.Second)
			return err == nil && ok
		}, 5*time.Second, 200*time.Millisecond)
	})
}
