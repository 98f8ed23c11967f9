//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethicbank/portal-api/internal/platform/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	c, err := redis.New(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_JSONRoundTrip(t *testing.T) {
	c := startRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	type quote struct {
		OutAmount string `json:"outAmount"`
	}

	var got quote
	found, err := c.GetJSON(ctx, "quote:missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetJSON(ctx, "quote:sol-usdc", quote{OutAmount: "1500"}, time.Minute))
	found, err = c.GetJSON(ctx, "quote:sol-usdc", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1500", got.OutAmount)

	ttl, err := c.TTL(ctx, "quote:sol-usdc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
