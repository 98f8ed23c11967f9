package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ethicbank/portal-api/internal/registry"

// Default tuning used when no option overrides it.
const (
	DefaultHealthTimeout       = 5 * time.Second
	DefaultMaxConcurrentChecks = 8
)

// ErrDuplicateService is returned by RegisterStrict when the name is taken.
var ErrDuplicateService = errors.New("service already registered")

// InitState tracks a service through its startup lifecycle.
type InitState string

// Lifecycle states. InitFailed does not affect later health checks.
const (
	StateRegistered   InitState = "registered"
	StateInitializing InitState = "initializing"
	StateReady        InitState = "ready"
	StateInitFailed   InitState = "init_failed"
)

type entry struct {
	name    string
	svc     Service
	state   InitState
	initErr string
	// gen changes whenever the service under this name is replaced.
	gen uint64
}

// Registry maps service names to integrations and coordinates their batch
// initialization and health reporting. Entries keep their registration order.
// A Registry is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	entries     []*entry
	index       map[string]*entry
	initialized bool

	logger        *slog.Logger
	metrics       *Metrics
	tracer        trace.Tracer
	healthTimeout time.Duration
	maxConcurrent int
	now           func() time.Time
}

// Option customizes a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for lifecycle and failure messages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records every evaluation into m.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithHealthTimeout bounds each HealthCheck call. Non-positive values are ignored.
func WithHealthTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.healthTimeout = d
		}
	}
}

// WithMaxConcurrentChecks bounds how many services are evaluated at once.
// Non-positive values are ignored.
func WithMaxConcurrentChecks(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxConcurrent = n
		}
	}
}

// WithClock replaces time.Now for lastChecked stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTracerProvider sets the provider used for spans. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Registry) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		index:         make(map[string]*entry),
		logger:        slog.Default(),
		tracer:        otel.Tracer(tracerName),
		healthTimeout: DefaultHealthTimeout,
		maxConcurrent: DefaultMaxConcurrentChecks,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "service_registry")
	return r
}

// Register inserts svc under name. Registering an existing name replaces the
// previous service in place (keeping its position) and logs a warning.
// Services registered after Initialize are never auto-initialized.
func (r *Registry) Register(name string, svc Service) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.index[name]; ok {
		r.logger.Warn("service already registered, overwriting", "service", name)
		existing.svc = svc
		existing.state = StateRegistered
		existing.initErr = ""
		existing.gen++
	} else {
		e := &entry{name: name, svc: svc, state: StateRegistered}
		r.entries = append(r.entries, e)
		r.index[name] = e
	}

	if r.initialized {
		r.logger.Warn("service registered after initialization; it will not be initialized automatically",
			"service", name)
	}
}

// RegisterStrict is Register without overwrite: it returns ErrDuplicateService
// when name is already taken.
func (r *Registry) RegisterStrict(name string, svc Service) error {
	r.mu.RLock()
	_, exists := r.index[name]
	r.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateService, name)
	}
	r.Register(name, svc)
	return nil
}

// Get returns the service registered under name. The boolean is false when no
// such service exists.
func (r *Registry) Get(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return e.svc, true
}

// Lookup returns the service registered under name as type T. It reports
// false when the name is unknown or the service does not implement T.
func Lookup[T any](r *Registry, name string) (T, bool) {
	var zero T
	svc, ok := r.Get(name)
	if !ok {
		return zero, false
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// ServiceNames returns every registered name in registration order.
func (r *Registry) ServiceNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// InitState returns the lifecycle state of name and its initialization error
// text, if any. The boolean is false for unknown names.
func (r *Registry) InitState(name string) (InitState, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.index[name]
	if !ok {
		return "", "", false
	}
	return e.state, e.initErr, true
}

// Initialize calls Initialize on every registered service, sequentially and in
// registration order. Failures are logged and recorded per service; they never
// stop the remaining services from starting. Only the first call has any effect.
func (r *Registry) Initialize(ctx context.Context) {
	r.mu.Lock()
	if r.initialized {
		r.mu.Unlock()
		r.logger.Info("service registry already initialized")
		return
	}
	r.initialized = true
	pending := make([]*entry, len(r.entries))
	copy(pending, r.entries)
	r.mu.Unlock()

	r.logger.Info("initializing services", "count", len(pending))

	var failed int
	for _, e := range pending {
		r.mu.Lock()
		svc, gen := e.svc, e.gen
		e.state = StateInitializing
		r.mu.Unlock()

		start := time.Now()
		err := r.initializeOne(ctx, e.name, svc)

		r.mu.Lock()
		replaced := e.gen != gen
		switch {
		case replaced:
			// The replacement was never initialized; leave it registered.
		case err != nil:
			e.state = StateInitFailed
			e.initErr = err.Error()
		default:
			e.state = StateReady
			e.initErr = ""
		}
		r.mu.Unlock()

		if replaced {
			r.logger.Warn("service replaced during initialization; replacement was not initialized",
				"service", e.name)
		}

		if err != nil {
			failed++
			r.metrics.observeInitFailure(e.name)
			r.logger.Error("service initialization failed",
				"service", e.name,
				"error", err,
				"duration_ms", time.Since(start).Milliseconds())
			continue
		}
		r.logger.Info("service initialized",
			"service", e.name,
			"duration_ms", time.Since(start).Milliseconds())
	}

	r.logger.Info("service initialization complete",
		"count", len(pending),
		"failed", failed)
}

// initializeOne runs a single Initialize call, converting a panic into an error.
func (r *Registry) initializeOne(ctx context.Context, name string, svc Service) (err error) {
	ctx, span := r.tracer.Start(ctx, "registry.initialize",
		trace.WithAttributes(attribute.String("service.name", name)))
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("initialize panicked: %v", p)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	return svc.Initialize(ctx)
}
