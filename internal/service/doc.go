// Package service holds the portal's use cases. Services coordinate the
// stores in internal/store, emit domain events and look up vendor
// integrations in the service registry; they never depend on a concrete
// database or HTTP implementation.
package service
