// Package metrics records fetch activity in a per-run Prometheus registry.
//
// Metrics:
//   - spotx_requests_total (Counter): GET requests issued, retries included
//   - spotx_retries_total (Counter): failed attempts that were retried
//   - spotx_pages_total (Counter): pages received
//   - spotx_items_total (Counter): collection items received
//   - spotx_backup_runs_total{status} (Counter): finished backup runs
//   - spotx_backup_duration_seconds (Gauge): duration of the last backup run
//
// The registry is written in the node_exporter textfile format with [Observer.WriteFile].
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spotx"

// Observer counts fetch events. It satisfies services.Observer.
type Observer struct {
	registry *prometheus.Registry

	requests prometheus.Counter
	retries  prometheus.Counter
	pages    prometheus.Counter
	items    prometheus.Counter
	runs     *prometheus.CounterVec
	duration prometheus.Gauge

	requestCount atomic.Int64
}

// NewObserver creates an [Observer] backed by a fresh registry.
func NewObserver() *Observer {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Observer{
		registry: reg,
		requests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "GET requests issued, retries included.",
		}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Failed attempts that were retried.",
		}),
		pages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Collection pages received.",
		}),
		items: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Collection items received.",
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backup_runs_total",
			Help:      "Finished backup runs by status.",
		}, []string{"status"}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backup_duration_seconds",
			Help:      "Duration of the last backup run.",
		}),
	}
}

// Registry exposes the underlying registry.
func (o *Observer) Registry() *prometheus.Registry { return o.registry }

func (o *Observer) OnRequest(string, int) {
	o.requests.Inc()
	o.requestCount.Add(1)
}

// Requests returns the number of requests observed so far.
func (o *Observer) Requests() int { return int(o.requestCount.Load()) }

func (o *Observer) OnRetry(string, int, error) { o.retries.Inc() }

func (o *Observer) OnPage(_ string, items, _, _ int) {
	o.pages.Inc()
	o.items.Add(float64(items))
}

// RecordRun records a finished backup run.
func (o *Observer) RecordRun(status string, d time.Duration) {
	o.runs.WithLabelValues(status).Inc()
	o.duration.Set(d.Seconds())
}

// WriteFile writes the registry to path in the text exposition format.
func (o *Observer) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, o.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
