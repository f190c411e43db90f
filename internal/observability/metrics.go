package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	MessagesDecodedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgparchive_messages_decoded_total",
			Help: "BGP messages successfully decoded, by message type.",
		},
		[]string{"source", "type"},
	)

	DecodeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgparchive_decode_errors_total",
			Help: "Decode failures, by error kind.",
		},
		[]string{"source", "kind"},
	)

	DecodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bgparchive_decode_duration_seconds",
			Help:    "Per-message decode latency.",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		},
		[]string{"type"},
	)

	StoreWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bgparchive_store_write_duration_seconds",
			Help:    "Event-store batch write latency.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"op"},
	)

	StoreRowsWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgparchive_store_rows_written_total",
			Help: "Rows written to the event store.",
		},
		[]string{"op"},
	)

	StoreDedupConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgparchive_store_dedup_conflicts_total",
			Help: "Event-store dedup hits (ON CONFLICT DO NOTHING skips).",
		},
		[]string{"source"},
	)

	PublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgparchive_published_total",
			Help: "Decoded events re-published, by topic.",
		},
		[]string{"topic"},
	)

	BatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bgparchive_batch_size",
			Help:    "Batch sizes flushed downstream.",
			Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 2000, 5000},
		},
		[]string{"sink"},
	)
)

// Register adds every metric to the default Prometheus registry. Safe to
// call once per process; callers that need an isolated registry (tests)
// should construct their own collectors instead of calling this.
func Register() {
	prometheus.MustRegister(
		MessagesDecodedTotal,
		DecodeErrorsTotal,
		DecodeDuration,
		StoreWriteDuration,
		StoreRowsWrittenTotal,
		StoreDedupConflictsTotal,
		PublishedTotal,
		BatchSize,
	)
}
