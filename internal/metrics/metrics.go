package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the receipt processor's collectors
type Registry struct {
	reg               *prometheus.Registry
	ReceiptsProcessed prometheus.Counter
	ReceiptsRejected  *prometheus.CounterVec
	PointsQueries     *prometheus.CounterVec
	PointsAwarded     prometheus.Histogram
	RequestLatencySec *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	processed := prometheus.NewCounter(prometheus.CounterOpts{Name: "receipts_processed_total"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "receipts_rejected_total"}, []string{"reason"})
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "receipts_points_queries_total"}, []string{"result"})
	awarded := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "receipts_points_awarded",
		Buckets: []float64{0, 10, 25, 50, 75, 100, 150, 250, 500},
	})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "receipts_http_request_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	r.MustRegister(processed, rejected, queries, awarded, latency)
	return &Registry{
		reg:               r,
		ReceiptsProcessed: processed,
		ReceiptsRejected:  rejected,
		PointsQueries:     queries,
		PointsAwarded:     awarded,
		RequestLatencySec: latency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
