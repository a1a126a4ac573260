package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics mirrors the per-thread and aggregate barrier statistics as
// Prometheus series. The CLI fills them from the workers' final outputs
// once the run has completed; they stay at zero while the run is in
// progress.
type Metrics struct {
	IterationsTotal prometheus.Counter
	HardWaitsTotal  prometheus.Counter
	SoftWaitsTotal  prometheus.Counter

	WakeupTicks *prometheus.HistogramVec

	RoundsCompleted prometheus.Counter
	UptimeSeconds   prometheus.Gauge

	startTime time.Time
}

// NewMetrics creates and registers the join-barrier metrics with registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		IterationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "joinbench_spin_iterations_total",
			Help: "Total spin/monitor-wait iterations consumed across all waiters.",
		}),
		HardWaitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "joinbench_hard_waits_total",
			Help: "Total waits that escalated to the kernel event.",
		}),
		SoftWaitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "joinbench_soft_waits_total",
			Help: "Total waits resolved without escalating to the kernel event.",
		}),
		WakeupTicks: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "joinbench_wakeup_ticks",
				Help:    "Wakeup latency in TSC ticks, by wait kind.",
				Buckets: prometheus.ExponentialBuckets(64, 4, 12),
			},
			[]string{"kind"},
		),
		RoundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "joinbench_rounds_completed_total",
			Help: "Total barrier rounds released.",
		}),
		UptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "joinbench_uptime_seconds",
			Help: "Seconds since this metrics collector was created.",
		}),
	}

	registry.MustRegister(
		m.IterationsTotal,
		m.HardWaitsTotal,
		m.SoftWaitsTotal,
		m.WakeupTicks,
		m.RoundsCompleted,
		m.UptimeSeconds,
	)
	return m
}

// Observe folds one worker's final output into the registered series.
func (m *Metrics) Observe(iterations uint64, hardWaits, softWaits int, hardTicks, softTicks uint64) {
	m.IterationsTotal.Add(float64(iterations))
	m.HardWaitsTotal.Add(float64(hardWaits))
	m.SoftWaitsTotal.Add(float64(softWaits))
	if hardWaits > 0 {
		m.WakeupTicks.WithLabelValues("hard").Observe(float64(hardTicks) / float64(hardWaits))
	}
	if softWaits > 0 {
		m.WakeupTicks.WithLabelValues("soft").Observe(float64(softTicks) / float64(softWaits))
	}
}

// ObserveRounds records n barrier rounds as completed. One round is one
// full release cycle: every arriver calls Join and exactly one of them
// (the releaser) calls Restart.
func (m *Metrics) ObserveRounds(n int) {
	m.RoundsCompleted.Add(float64(n))
}

// Uptime returns how long this Metrics instance has been collecting.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// RefreshUptime publishes the current Uptime as the uptime gauge, the
// way the teacher's telemetry collector periodically sets its own
// agent-uptime gauge from a stored start time.
func (m *Metrics) RefreshUptime() {
	m.UptimeSeconds.Set(m.Uptime().Seconds())
}
