package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Draft persistence
	draftWritesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listing_draft_writes_total",
			Help: "Total number of draft records written to storage",
		},
	)

	draftWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_draft_write_failures_total",
			Help: "Total number of draft writes skipped because of an error",
		},
		[]string{"reason"},
	)

	draftPurgesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_draft_purges_total",
			Help: "Total number of full draft purges",
		},
		[]string{"cause"},
	)

	// Wizard transitions
	wizardTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_wizard_transitions_total",
			Help: "Total number of wizard transitions by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Uploads
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_uploads_total",
			Help: "Total number of image uploads by outcome",
		},
		[]string{"outcome"},
	)

	uploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "listing_upload_duration_seconds",
			Help:    "Object storage upload duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// Payment frame messages
	paymentMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_payment_messages_total",
			Help: "Total number of accepted payment frame messages by status",
		},
		[]string{"status"},
	)

	paymentMessagesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_payment_messages_dropped_total",
			Help: "Total number of payment frame messages dropped",
		},
		[]string{"reason"},
	)

	paymentSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "listing_payment_subscribers",
			Help: "Number of open payment status subscriptions",
		},
	)

	// Remote API
	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_gateway_request_duration_seconds",
			Help:    "Remote API request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint", "outcome"},
	)

	eventsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_events_cache_total",
			Help: "Events list cache lookups by result",
		},
		[]string{"result"},
	)
)

func RecordDraftWrite() {
	draftWritesTotal.Inc()
}

func RecordDraftWriteFailed(reason string) {
	draftWriteFailuresTotal.WithLabelValues(reason).Inc()
}

func RecordDraftPurge(cause string) {
	draftPurgesTotal.WithLabelValues(cause).Inc()
}

func RecordTransition(operation, outcome string) {
	wizardTransitionsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordUpload(outcome string, duration time.Duration) {
	uploadsTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		uploadDuration.Observe(duration.Seconds())
	}
}

func RecordPaymentMessage(status string) {
	paymentMessagesTotal.WithLabelValues(status).Inc()
}

func RecordPaymentMessageDropped(reason string) {
	paymentMessagesDroppedTotal.WithLabelValues(reason).Inc()
}

func IncPaymentSubscribers() { paymentSubscribers.Inc() }
func DecPaymentSubscribers() { paymentSubscribers.Dec() }

func RecordGatewayRequest(method, endpoint, outcome string, duration time.Duration) {
	gatewayRequestDuration.WithLabelValues(method, endpoint, outcome).Observe(duration.Seconds())
}

func RecordEventsCache(result string) {
	eventsCacheTotal.WithLabelValues(result).Inc()
}

// MetricsHandler returns the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
