package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reserveease",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reserveease",
			Name:      "bookings_created_total",
			Help:      "Bookings submitted by customers.",
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reserveease",
			Name:      "status_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"status"},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reserveease",
			Name:      "notifications_sent_total",
			Help:      "Notifications handed to the transport, by channel.",
		},
		[]string{"channel"},
	)

	notificationsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reserveease",
			Name:      "notifications_failed_total",
			Help:      "Notification transport failures, by channel.",
		},
		[]string{"channel"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			statusTransitions,
			notificationsSent,
			notificationsFailed,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncStatusTransition(status string) {
	statusTransitions.WithLabelValues(status).Inc()
}

func IncNotificationSent(channel string) {
	notificationsSent.WithLabelValues(channel).Inc()
}

func IncNotificationFailed(channel string) {
	notificationsFailed.WithLabelValues(channel).Inc()
}
