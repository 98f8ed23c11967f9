// Package infra exposes the portal's own backing stores as registry services
// so database and cache health appear alongside the vendors.
package infra

import (
	"context"
	"errors"

	"github.com/ethicbank/portal-api/internal/platform/redis"
	"github.com/ethicbank/portal-api/internal/registry"
)

// Registry names.
const (
	DatabaseName = "database"
	CacheName    = "cache"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Database reports the health of the primary Postgres connection pool.
type Database struct {
	db Pinger
}

// NewDatabase wraps db. A nil db leaves the service unconfigured.
func NewDatabase(db Pinger) *Database {
	return &Database{db: db}
}

// IsConfigured reports whether a pool is present.
func (d *Database) IsConfigured() bool {
	return d.db != nil
}

// Initialize verifies the pool can reach the server.
func (d *Database) Initialize(ctx context.Context) error {
	if d.db == nil {
		return nil
	}
	return d.db.PingContext(ctx)
}

// HealthCheck pings the database.
func (d *Database) HealthCheck(ctx context.Context) registry.HealthResult {
	if d.db == nil {
		return registry.Unhealthy(errors.New("no database pool"))
	}
	return registry.ResultFromError(d.db.PingContext(ctx))
}

// healther is satisfied by *redis.Client.
type healther interface {
	Health(ctx context.Context) error
}

// Cache reports the health of the Redis quote cache.
type Cache struct {
	client healther
}

// NewCache wraps client. A nil client (redis.url unset) leaves the service
// unconfigured.
func NewCache(client *redis.Client) *Cache {
	if client == nil {
		return &Cache{}
	}
	return &Cache{client: client}
}

// IsConfigured reports whether a Redis URL was provided.
func (c *Cache) IsConfigured() bool {
	return c.client != nil
}

// Initialize is a no-op; go-redis dials lazily and a cache outage must not
// block startup.
func (c *Cache) Initialize(ctx context.Context) error {
	return nil
}

// HealthCheck sends PING.
func (c *Cache) HealthCheck(ctx context.Context) registry.HealthResult {
	if c.client == nil {
		return registry.Unhealthy(errors.New("no redis client"))
	}
	return registry.ResultFromError(c.client.Health(ctx))
}
