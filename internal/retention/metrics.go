package retention

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// sweepMetricsOnce ensures metrics are only registered once.
var sweepMetricsOnce sync.Once

// sweepMetricsInstance is the singleton instance of sweep metrics.
var sweepMetricsInstance *SweepMetrics

// SweepMetrics holds the Prometheus metrics for retention sweeps. They
// are registered with the default registry so daemon mode can expose
// them on its /metrics endpoint without extra wiring.
type SweepMetrics struct {
	Sweeps        prometheus.Counter // mediakeep_retention_sweeps_total
	DeletedFiles  prometheus.Counter // mediakeep_retention_deleted_files_total
	SkippedLocked prometheus.Counter // mediakeep_retention_skipped_locked_total
	FailedDeletes prometheus.Counter // mediakeep_retention_failed_deletes_total
}

// InitSweepMetrics initializes the sweep metrics. Metrics are only
// registered once; subsequent calls return the same instance. Pass nil
// to use the default Prometheus registry.
func InitSweepMetrics(registry prometheus.Registerer) *SweepMetrics {
	sweepMetricsOnce.Do(func() {
		if registry == nil {
			registry = prometheus.DefaultRegisterer
		}
		sweepMetricsInstance = &SweepMetrics{
			Sweeps: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "mediakeep_retention_sweeps_total",
				Help: "Number of retention sweeps started",
			}),
			DeletedFiles: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "mediakeep_retention_deleted_files_total",
				Help: "Number of files deleted by retention sweeps",
			}),
			SkippedLocked: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "mediakeep_retention_skipped_locked_total",
				Help: "Number of candidates skipped because another actor held the file lock",
			}),
			FailedDeletes: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "mediakeep_retention_failed_deletes_total",
				Help: "Number of candidate deletions that failed",
			}),
		}
	})
	return sweepMetricsInstance
}
