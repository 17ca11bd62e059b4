package monitoring

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advance_settlements_total",
			Help: "Settlement attempts by reconciliation path and outcome",
		},
		[]string{"path", "result"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of outbound payment gateway calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"gateway", "operation"},
	)

	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking status transitions",
		},
		[]string{"from", "to"},
	)

	webhookRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_signature_rejections_total",
			Help: "Webhook deliveries rejected for a bad signature",
		},
	)

	goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_goroutines_total",
			Help: "Current number of active goroutines",
		},
	)
)

// RecordSettlement counts one settlement attempt. path is "callback" or
// "webhook"; result is "applied", "replayed", "failed" or "error".
func RecordSettlement(path, result string) {
	settlementsTotal.WithLabelValues(path, result).Inc()
}

// ObserveGatewayRequest records the latency of one outbound gateway call.
func ObserveGatewayRequest(gateway, operation string, start time.Time) {
	gatewayRequestDuration.WithLabelValues(gateway, operation).Observe(time.Since(start).Seconds())
}

// RecordTransition counts one booking status change.
func RecordTransition(from, to string) {
	bookingTransitions.WithLabelValues(from, to).Inc()
}

// RecordWebhookRejection counts a webhook dropped at the signature check.
func RecordWebhookRejection() {
	webhookRejections.Inc()
}

// StartRuntimeCollector samples process metrics in the background.
func StartRuntimeCollector() {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			goroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}()
}
