// Package api holds the portal's HTTP handlers. Handlers decode and validate
// requests, call the services or the vendor integrations resolved from the
// service registry, and map their errors to status codes and client-safe
// messages through HandleAPIError.
package api
