// Package metrics exports scheduler and renderer activity as Prometheus
// metrics. A Collector plugs into both as their hooks.
package metrics

import (
	"time"

	"github.com/delaneyj/proxyparty/renderer"
	"github.com/delaneyj/proxyparty/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Config struct {
	// Namespace is the metrics namespace (default: "proxyparty").
	Namespace string

	Subsystem string

	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush and render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "proxyparty",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector implements scheduler.Hooks and renderer.Hooks.
type Collector struct {
	jobsRun        prometheus.Counter
	jobErrors      prometheus.Counter
	flushes        prometheus.Counter
	flushDuration  prometheus.Histogram
	renders        prometheus.Counter
	renderDuration prometheus.Histogram
	reconcileEdits prometheus.Counter
}

var (
	_ scheduler.Hooks = (*Collector)(nil)
	_ renderer.Hooks  = (*Collector)(nil)
)

// New registers the collectors. Registering twice against the same registry
// panics, as with any promauto metric.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	histogram := func(name, help string) prometheus.Histogram {
		return factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		})
	}

	return &Collector{
		jobsRun:        counter("jobs_run_total", "Total number of scheduled jobs run"),
		jobErrors:      counter("job_errors_total", "Total number of scheduled jobs that returned an error"),
		flushes:        counter("flushes_total", "Total number of job queue flushes"),
		flushDuration:  histogram("flush_duration_seconds", "Job queue flush duration in seconds"),
		renders:        counter("renders_total", "Total number of renders"),
		renderDuration: histogram("render_duration_seconds", "Render duration in seconds"),
		reconcileEdits: counter("reconcile_edits_total", "Total number of structural host edits made by renders"),
	}
}

func (c *Collector) OnJob(job scheduler.Job, err error) {
	c.jobsRun.Inc()
	if err != nil {
		c.jobErrors.Inc()
	}
}

func (c *Collector) OnFlush(jobs int, duration time.Duration) {
	c.flushes.Inc()
	c.flushDuration.Observe(duration.Seconds())
}

func (c *Collector) OnPatch(edits int, duration time.Duration) {
	c.renders.Inc()
	c.renderDuration.Observe(duration.Seconds())
	c.reconcileEdits.Add(float64(edits))
}
