// Package registry tracks the third-party integrations of the portal
// (wallet auth, DEX quotes, payments, ramp, KYC, chat) behind a single
// Service contract.
//
// Integrations are constructed elsewhere and registered by name during
// startup. The registry initializes them once, in registration order, and
// aggregates their configuration and health into status records. Failures
// below the registry boundary are converted to data: a failing integration
// shows up as an error row and never prevents the others from starting or
// reporting.
package registry
