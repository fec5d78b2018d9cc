package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PromMetrics struct {
	queries         prometheus.Counter
	rejected        prometheus.Counter
	queryLatency    prometheus.Histogram
	filteredRatio   prometheus.Histogram
	eventsApplied   *prometheus.CounterVec
	eventsDropped   prometheus.Counter
	indexSize       prometheus.Gauge
	scheduledLoaded prometheus.Counter
}

func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {

	m := &PromMetrics{
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskview_queries_total",
			Help: "Number of served datatable queries",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskview_queries_rejected_total",
			Help: "Number of datatable queries rejected as bad requests",
		}),
		queryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskview_query_latency_seconds",
			Help:    "Latency of datatable queries",
			Buckets: prometheus.DefBuckets,
		}),
		filteredRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskview_query_filtered_ratio",
			Help:    "Share of the index matching a query's filters",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		eventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskview_events_applied_total",
			Help: "Number of task events applied to the index",
		}, []string{"type"}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskview_events_dropped_total",
			Help: "Number of task events that could not be decoded",
		}),
		indexSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskview_index_tasks",
			Help: "Number of tasks held by the index",
		}),
		scheduledLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskview_scheduled_tasks_loaded_total",
			Help: "Number of scheduled tasks loaded from the scheduler database",
		}),
	}
	reg.MustRegister(m.queries, m.rejected, m.queryLatency, m.filteredRatio,
		m.eventsApplied, m.eventsDropped, m.indexSize, m.scheduledLoaded)
	return m
}

func (m *PromMetrics) QueryServed(total, filtered int, d time.Duration) {
	m.queries.Inc()
	m.queryLatency.Observe(d.Seconds())
	if total > 0 {
		m.filteredRatio.Observe(float64(filtered) / float64(total))
	}
}
func (m *PromMetrics) QueryRejected() {
	m.rejected.Inc()
}
func (m *PromMetrics) EventApplied(eventType string) {
	m.eventsApplied.WithLabelValues(eventType).Inc()
}
func (m *PromMetrics) EventDropped() {
	m.eventsDropped.Inc()
}
func (m *PromMetrics) IndexSize(n int) {
	m.indexSize.Set(float64(n))
}
func (m *PromMetrics) ScheduledLoaded(n int) {
	m.scheduledLoaded.Add(float64(n))
}
