package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ServiceStatus is one row of the aggregated status report.
type ServiceStatus struct {
	Name         string    `json:"name"`
	Status       Status    `json:"status"`
	Message      string    `json:"message,omitempty"`
	IsConfigured bool      `json:"isConfigured"`
	LastChecked  time.Time `json:"lastChecked"`
	InitState    InitState `json:"initState"`
	InitError    string    `json:"initError,omitempty"`
}

type snapshot struct {
	name    string
	svc     Service
	state   InitState
	initErr string
}

// ServicesStatus evaluates every registered service and returns one record per
// service in registration order. Unconfigured services are reported without
// calling HealthCheck. Evaluations run concurrently; a panic or a timeout in
// one service is recorded in its own row and never affects the others.
func (r *Registry) ServicesStatus(ctx context.Context) []ServiceStatus {
	r.mu.RLock()
	snaps := make([]snapshot, len(r.entries))
	for i, e := range r.entries {
		snaps[i] = snapshot{name: e.name, svc: e.svc, state: e.state, initErr: e.initErr}
	}
	r.mu.RUnlock()

	results := make([]ServiceStatus, len(snaps))

	var g errgroup.Group
	g.SetLimit(r.maxConcurrent)
	for i := range snaps {
		g.Go(func() error {
			results[i] = r.evaluate(ctx, snaps[i])
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// evaluate produces the status row for a single service.
func (r *Registry) evaluate(ctx context.Context, s snapshot) (st ServiceStatus) {
	ctx, span := r.tracer.Start(ctx, "registry.health_check",
		trace.WithAttributes(attribute.String("service.name", s.name)))
	defer span.End()

	start := time.Now()
	st = ServiceStatus{
		Name:      s.name,
		InitState: s.state,
		InitError: s.initErr,
	}

	defer func() {
		if p := recover(); p != nil {
			st.Status = StatusError
			st.Message = fmt.Sprintf("%v", p)
			st.IsConfigured = false
			r.logger.Error("service status evaluation panicked",
				"service", s.name,
				"panic", st.Message)
		}
		st.LastChecked = r.now()

		span.SetAttributes(
			attribute.Bool("service.configured", st.IsConfigured),
			attribute.String("service.status", string(st.Status)),
		)
		if st.Status != StatusOK {
			span.SetStatus(codes.Error, st.Message)
		}
		r.metrics.observeStatus(st, time.Since(start))
	}()

	if !s.svc.IsConfigured() {
		st.Status = StatusError
		st.Message = MessageNotConfigured
		return st
	}
	st.IsConfigured = true

	res := r.checkHealth(ctx, s)
	st.Status = res.Status
	st.Message = res.Message
	if st.Status != StatusOK {
		if st.Status != StatusError {
			r.logger.Warn("health check returned unknown status", "service", s.name, "status", st.Status)
			st.Status = StatusError
		}
		r.logger.Warn("service health check failed",
			"service", s.name,
			"message", st.Message)
	}
	return st
}

// errHealthTimeout is the cancel cause recorded when the registry's own
// health timeout fires, as opposed to a deadline set by the caller.
var errHealthTimeout = errors.New("registry health timeout")

// checkHealth runs HealthCheck under the configured timeout. A probe that
// ignores its context is abandoned once the timeout or the caller's context
// expires.
func (r *Registry) checkHealth(ctx context.Context, s snapshot) HealthResult {
	ctx, cancel := context.WithTimeoutCause(ctx, r.healthTimeout, errHealthTimeout)
	defer cancel()

	done := make(chan HealthResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("health check panicked", "service", s.name, "panic", p)
				done <- Unhealthyf("%v", p)
			}
		}()
		done <- s.svc.HealthCheck(ctx)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		// A result that raced the deadline still wins.
		select {
		case res := <-done:
			return res
		default:
		}
		if errors.Is(context.Cause(ctx), errHealthTimeout) {
			return Unhealthyf("health check timed out after %s", r.healthTimeout)
		}
		return Unhealthy(ctx.Err())
	}
}
