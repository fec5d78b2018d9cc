package main

import (
	"net/http"

	"github.com/ecociel/taskview/lib/datatable"
	"github.com/ecociel/taskview/lib/index"
	"github.com/ecociel/taskview/metrics"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// newHandler serves the task routes, /healthz and /metrics.
func newHandler(idx *index.Index, m metrics.QueryMetrics, reg *prometheus.Registry) http.Handler {
	container := restful.NewContainer()
	container.Add(datatable.New(idx, m).WebService())
	container.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	container.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return otelhttp.NewHandler(container, "taskview")
}
