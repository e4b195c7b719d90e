// Package metrics exposes Prometheus instrumentation for the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry groups every collector so tests can build isolated instances.
type Registry struct {
	reg *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	mutations       *prometheus.CounterVec
	projections     prometheus.Counter
	receipts        *prometheus.CounterVec
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubdash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clubdash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubdash",
			Name:      "store_mutations_total",
			Help:      "Successful record store writes by relation and operation.",
		}, []string{"relation", "op"}),
		projections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clubdash",
			Name:      "projections_total",
			Help:      "Cash-flow projections computed.",
		}),
		receipts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clubdash",
			Name:      "receipts_total",
			Help:      "Receipt ingestion outcomes.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests, r.requestDuration, r.mutations, r.projections, r.receipts,
	)
	return r
}

// Mutation matches the store change hook signature.
func (r *Registry) Mutation(relation, op string) {
	r.mutations.WithLabelValues(relation, op).Inc()
}

func (r *Registry) Projection() { r.projections.Inc() }

// Receipt counts an ingestion outcome: "created", "failed", "duplicate".
func (r *Registry) Receipt(outcome string) {
	r.receipts.WithLabelValues(outcome).Inc()
}

// ReceiptCounter returns the counter behind Receipt for outcome.
func (r *Registry) ReceiptCounter(outcome string) prometheus.Counter {
	return r.receipts.WithLabelValues(outcome)
}

// Middleware records request counts and latency using the matched route.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		r.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer is exposed for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
