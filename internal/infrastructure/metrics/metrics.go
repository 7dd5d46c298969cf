package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Intent lifecycle metrics
	IntentsCreated   prometheus.Counter
	IntentsSubmitted prometheus.Counter
	IntentsSettled   prometheus.Counter
	IntentsConfirmed prometheus.Counter
	IntentsDisputed  prometheus.Counter

	// Reconciliation engine metrics
	EventProcessingDuration prometheus.Histogram
	DuplicateReplays        prometheus.Counter
	EventErrors             *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	OutboxPublished      prometheus.Counter
	OutboxPublishErrors  prometheus.Counter
	OutboxBacklogPending prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		IntentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gosettle_intents_created_total",
			Help: "Total number of settlement intents created",
		}),
		IntentsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gosettle_intents_submitted_total",
			Help: "Total number of intents dispatched to the settlement authority",
		}),
		IntentsSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gosettle_intents_settled_total",
			Help: "Total number of on-chain settlement events applied",
		}),
		IntentsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gosettle_intents_confirmed_total",
			Help: "Total number of intents confirmed reconciled",
		}),
		IntentsDisputed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gosettle_intents_disputed_total",
			Help: "Total number of intents moved to dispute",
		}),

		EventProcessingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gosettle_event_processing_duration_seconds",
			Help:    "Duration of settlement event application",
			Buckets: prometheus.DefBuckets,
		}),
		DuplicateReplays: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gosettle_event_duplicate_replays_total",
			Help: "Total number of redelivered events ignored as no-op replays",
		}),
		EventErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosettle_event_errors_total",
				Help: "Total number of settlement event errors by class",
			},
			[]string{"class"},
		),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosettle_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gosettle_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gosettle_outbox_published_total",
			Help: "Total number of outbox events published",
		}),
		OutboxPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gosettle_outbox_publish_errors_total",
			Help: "Total number of outbox publish failures",
		}),
		OutboxBacklogPending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gosettle_outbox_backlog_pending",
			Help: "Unpublished outbox events at last poll",
		}),
	}
}
