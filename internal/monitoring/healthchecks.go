package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_INTERVAL = 15 * time.Second

// CheckFunc probes a dependency and reports whether it answered.
type CheckFunc func(ctx context.Context) bool

// MonitorDependency runs check immediately and then on every tick, storing
// the outcome in healthy. It returns when ctx is done.
func MonitorDependency(ctx context.Context, name string, interval time.Duration, check CheckFunc, healthy *atomic.Bool) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe := func() {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		isHealthy := check(checkCtx)
		if healthy.Swap(isHealthy) != isHealthy && !isHealthy {
			slog.Warn("[HealthCheck] Dependency is unhealthy", slog.String("dependency", name))
		}
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}
