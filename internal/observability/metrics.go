package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StorageOperations counts blob storage calls by operation and outcome.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dojo_storage_operations_total",
		Help: "Blob storage operations by operation and result",
	}, []string{"operation", "result"})

	// StorageUploadBytes counts bytes written to blob storage.
	StorageUploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dojo_storage_upload_bytes_total",
		Help: "Bytes uploaded to blob storage",
	})

	// DatabaseQueryLatency records latency of multi-statement database operations.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dojo_database_query_latency_seconds",
		Help:    "Database operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dojo_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// WebSocketConnections is the number of open websocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dojo_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// RealtimeEvents counts realtime events published by type.
	RealtimeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dojo_realtime_events_total",
		Help: "Realtime events published by type",
	}, []string{"event_type"})

	// WebSocketDrops counts messages dropped because a client buffer was full.
	WebSocketDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dojo_websocket_dropped_messages_total",
		Help: "WebSocket messages dropped due to backpressure",
	})
)

// TrackQuery returns a func that records the elapsed time of a database operation.
//
//	defer observability.TrackQuery("delete_cascade", "posts")()
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordStorage counts a storage operation outcome.
func RecordStorage(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StorageOperations.WithLabelValues(operation, result).Inc()
}
