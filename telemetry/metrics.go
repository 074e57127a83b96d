// Package telemetry exports scheduler frame statistics to Prometheus and
// OpenTelemetry.
package telemetry

import (
	"github.com/delaneyj/framesignal/reactive"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus frame collector.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "framesignal").
	Namespace string

	Subsystem   string
	ConstLabels prometheus.Labels

	// Buckets are the frame duration histogram buckets in seconds.
	// Default: one to sixteen refreshes at 60 Hz, plus stalls.
	Buckets []float64

	// Registry defaults to prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

type MetricsOption func(*MetricsConfig)

func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "framesignal",
		Buckets:   []float64{.001, .002, .004, .008, .0167, .0333, .0667, .1, .25, .5},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a reactive.Telemetry that records one observation per frame
// at the end checkpoint and tracks queue depth at every checkpoint.
type Metrics struct {
	frames           prometheus.Counter
	frameDuration    prometheus.Histogram
	budgetedDuration prometheus.Histogram
	highBursts       prometheus.Counter
	forcedLow        prometheus.Counter
	budget           *prometheus.GaugeVec
	ewma             prometheus.Gauge
	queueDepth       *prometheus.GaugeVec
	framesSinceLow   prometheus.Gauge
}

func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		frames: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_total",
			Help:        "Frames run by the scheduler.",
			ConstLabels: config.ConstLabels,
		}),
		frameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frame_duration_seconds",
			Help:        "Wall time of a whole frame, leading high drain included.",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		budgetedDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "budgeted_duration_seconds",
			Help:        "Frame time counted against the normal and low budgets.",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		highBursts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "high_bursts_total",
			Help:        "Frames that topped up high priority work after commit.",
			ConstLabels: config.ConstLabels,
		}),
		forcedLow: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "forced_low_total",
			Help:        "Frames where the starvation guard forced the low queue to drain.",
			ConstLabels: config.ConstLabels,
		}),
		budget: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "budget_seconds",
			Help:        "Current adaptive budget per priority.",
			ConstLabels: config.ConstLabels,
		}, []string{"priority"}),
		ewma: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frame_ewma_seconds",
			Help:        "Smoothed frame duration driving budget adaptation.",
			ConstLabels: config.ConstLabels,
		}),
		queueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "queue_depth",
			Help:        "Effects waiting per priority.",
			ConstLabels: config.ConstLabels,
		}, []string{"priority"}),
		framesSinceLow: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_since_low",
			Help:        "Consecutive frames that skipped the low queue.",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) Record(s reactive.Stats) {
	m.queueDepth.WithLabelValues(reactive.PriorityHigh.String()).Set(float64(s.Queues.High))
	m.queueDepth.WithLabelValues(reactive.PriorityNormal.String()).Set(float64(s.Queues.Normal))
	m.queueDepth.WithLabelValues(reactive.PriorityLow.String()).Set(float64(s.Queues.Low))
	if s.Checkpoint != reactive.CheckpointEnd {
		return
	}

	m.frames.Inc()
	m.frameDuration.Observe(s.TotalMs / 1000)
	m.budgetedDuration.Observe(s.BudgetedMs / 1000)
	if s.HighBursts > 0 {
		m.highBursts.Add(float64(s.HighBursts))
	}
	if s.ForcedLow {
		m.forcedLow.Inc()
	}
	m.budget.WithLabelValues(reactive.PriorityNormal.String()).Set(s.NormalBudgetMs / 1000)
	m.budget.WithLabelValues(reactive.PriorityLow.String()).Set(s.LowBudgetMs / 1000)
	m.ewma.Set(s.EWMAFrameMs / 1000)
	m.framesSinceLow.Set(float64(s.FramesSinceLow))
}
