package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/ethicbank/portal-api/internal/platform/redis"
	"github.com/ethicbank/portal-api/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

type fakeHealther struct{ err error }

func (f fakeHealther) Health(ctx context.Context) error { return f.err }

func TestDatabase(t *testing.T) {
	unconfigured := NewDatabase(nil)
	assert.False(t, unconfigured.IsConfigured())
	assert.NoError(t, unconfigured.Initialize(context.Background()))

	ok := NewDatabase(fakePinger{})
	assert.True(t, ok.IsConfigured())
	assert.NoError(t, ok.Initialize(context.Background()))
	assert.True(t, ok.HealthCheck(context.Background()).OK())

	down := NewDatabase(fakePinger{err: errors.New("connection refused")})
	assert.Error(t, down.Initialize(context.Background()))
	res := down.HealthCheck(context.Background())
	assert.Equal(t, registry.StatusError, res.Status)
	assert.Equal(t, "connection refused", res.Message)
}

func TestCache(t *testing.T) {
	var nilClient *redis.Client
	unconfigured := NewCache(nilClient)
	assert.False(t, unconfigured.IsConfigured(), "typed nil client is unconfigured")
	assert.False(t, unconfigured.HealthCheck(context.Background()).OK())

	client, err := redis.New("redis://localhost:6379/0")
	require.NoError(t, err)
	defer client.Close()
	assert.True(t, NewCache(client).IsConfigured())
	assert.NoError(t, NewCache(client).Initialize(context.Background()))

	down := &Cache{client: fakeHealther{err: errors.New("i/o timeout")}}
	assert.Equal(t, "i/o timeout", down.HealthCheck(context.Background()).Message)
	assert.True(t, (&Cache{client: fakeHealther{}}).HealthCheck(context.Background()).OK())
}
