// Package redis provides the Redis client used for short-lived caches such as
// DEX quotes.
package redis
