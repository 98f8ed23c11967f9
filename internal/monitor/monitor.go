// Package monitor polls the service registry in the background so status
// metrics stay current even when nobody calls the status endpoint.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ethicbank/portal-api/internal/registry"
)

// StatusSource produces the aggregated status report.
type StatusSource interface {
	ServicesStatus(ctx context.Context) []registry.ServiceStatus
}

// Poller calls StatusSource.ServicesStatus on a fixed interval and logs
// health transitions.
type Poller struct {
	source   StatusSource
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	healthy map[string]bool
}

// NewPoller creates a poller. An interval of zero or less disables it.
func NewPoller(source StatusSource, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:   source,
		interval: interval,
		logger:   logger.With("component", "status_monitor"),
		healthy:  make(map[string]bool),
	}
}

// Start launches the polling goroutine and runs a first poll immediately.
// Calling Start on a running or disabled poller does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interval <= 0 {
		p.logger.Info("status monitor disabled")
		return
	}
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("status monitor started", "interval", p.interval)
}

// Stop halts polling and waits for an in-flight poll to finish. It is safe
// to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	p.logger.Info("status monitor stopped")
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll runs one evaluation, bounded by the interval so a slow round never
// overlaps the next.
func (p *Poller) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	for _, st := range p.source.ServicesStatus(ctx) {
		if !st.IsConfigured {
			continue
		}
		ok := st.Status == registry.StatusOK
		prev, seen := p.healthy[st.Name]
		p.healthy[st.Name] = ok

		switch {
		case !ok && (!seen || prev):
			p.logger.Warn("service unhealthy", "service", st.Name, "message", st.Message)
		case ok && seen && !prev:
			p.logger.Info("service recovered", "service", st.Name)
		}
	}
}
