package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CollectionOpLatency records flat-file collection operation latency.
	CollectionOpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matrixart_collection_op_latency_seconds",
		Help:    "Flat-file collection operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "collection"})

	// UploadsTotal counts stored media uploads by category.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matrixart_uploads_total",
		Help: "Total number of stored media uploads by category",
	}, []string{"category"})

	// SessionsIssuedTotal counts successful logins.
	SessionsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matrixart_sessions_issued_total",
		Help: "Total number of sessions issued at login",
	})

	// PostViewsTotal counts single-post fetches (each one bumps the stored view counter).
	PostViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matrixart_post_views_total",
		Help: "Total number of single-post fetches",
	})

	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matrixart_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})
)

// CollectionMetrics records latency for flat-file collection access.
type CollectionMetrics struct {
	collection string
}

// NewCollectionMetrics returns a CollectionMetrics bound to a collection name.
func NewCollectionMetrics(collection string) *CollectionMetrics {
	return &CollectionMetrics{collection: collection}
}

// TrackOp returns a function that records operation latency when called (e.g. defer).
func (m *CollectionMetrics) TrackOp(operation string) func() {
	start := time.Now()
	return func() {
		CollectionOpLatency.WithLabelValues(operation, m.collection).Observe(time.Since(start).Seconds())
	}
}
