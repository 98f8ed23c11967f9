package registry

//go:generate mockgen -source=service.go -destination=mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
)

// Status is the outcome of a health evaluation.
type Status string

// Possible status values
const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// MessageNotConfigured is reported for services whose credentials are missing.
const MessageNotConfigured = "not configured"

// Service is the capability contract every third-party integration satisfies
// before it can be registered.
type Service interface {
	// Initialize performs one-time setup such as parsing keys or verifying
	// that a dependency is reachable. The registry calls it at most once.
	Initialize(ctx context.Context) error

	// IsConfigured reports whether all required credentials and endpoints are
	// present. It must be cheap and must not perform network I/O.
	IsConfigured() bool

	// HealthCheck probes the backing dependency. Failures are reported in the
	// returned HealthResult rather than by panicking.
	HealthCheck(ctx context.Context) HealthResult
}

// HealthResult is the outcome of a single liveness probe.
type HealthResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the probe succeeded.
func (h HealthResult) OK() bool {
	return h.Status == StatusOK
}

// Healthy returns a successful HealthResult.
func Healthy() HealthResult {
	return HealthResult{Status: StatusOK}
}

// Unhealthy converts err into a failed HealthResult.
func Unhealthy(err error) HealthResult {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return HealthResult{Status: StatusError, Message: err.Error()}
}

// Unhealthyf returns a failed HealthResult with a formatted message.
func Unhealthyf(format string, args ...any) HealthResult {
	return HealthResult{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// ResultFromError is a convenience for probes that naturally return an error:
// nil maps to Healthy, anything else to Unhealthy.
func ResultFromError(err error) HealthResult {
	if err != nil {
		return Unhealthy(err)
	}
	return Healthy()
}
