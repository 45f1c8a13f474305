package inference

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/chat"
	"sovereign-chat/internal/infrastructure/metrics"
	"sovereign-chat/internal/utils/platformerrors"
)

// HealthMonitor probes both backends through their /models endpoint and keeps
// the latest report for readers.
type HealthMonitor struct {
	provider *InferenceProvider
	timeout  time.Duration

	mu   sync.RWMutex
	last chat.HealthReport
}

var _ chat.HealthChecker = (*HealthMonitor)(nil)

// NewHealthMonitor creates a monitor for provider's backends.
func NewHealthMonitor(provider *InferenceProvider, cfg *config.Config) *HealthMonitor {
	timeout := cfg.InferenceHealthTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HealthMonitor{provider: provider, timeout: timeout}
}

// Check implements chat.HealthChecker. Both probes run concurrently.
func (m *HealthMonitor) Check(ctx context.Context) chat.HealthReport {
	report := chat.HealthReport{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Primary = m.probe(gctx, m.provider.primary)
		return nil
	})
	g.Go(func() error {
		report.Fallback = m.probe(gctx, m.provider.secondary)
		return nil
	})
	_ = g.Wait()
	report.CheckedAt = time.Now().UTC()

	if report.Primary.Configured {
		metrics.SetBackendHealth(chat.SourcePrimary, report.Primary.Healthy)
	}
	if report.Fallback.Configured {
		metrics.SetBackendHealth(chat.SourceFallback, report.Fallback.Healthy)
	}

	m.mu.Lock()
	m.last = report
	m.mu.Unlock()
	return report
}

// Last returns the most recent report, zero before the first check.
func (m *HealthMonitor) Last() chat.HealthReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func (m *HealthMonitor) probe(ctx context.Context, backend *Backend) chat.BackendHealth {
	if backend == nil {
		return chat.BackendHealth{}
	}
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	started := time.Now()
	_, err := backend.client.ListModels(probeCtx)
	health := chat.BackendHealth{Configured: true, Healthy: err == nil, Latency: time.Since(started)}
	if err != nil {
		health.Error = err.Error()
		if platformErr := platformerrors.GetPlatformError(err); platformErr != nil {
			health.Error = platformErr.Message
		}
	}
	return health
}
