package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "karigar",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "karigar",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created.",
		},
	)

	slotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "karigar",
			Name:      "slot_conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken.",
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "karigar",
			Name:      "status_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"to"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, slotConflicts, statusTransitions)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncSlotConflict() {
	slotConflicts.Inc()
}

func IncStatusTransition(to string) {
	statusTransitions.WithLabelValues(to).Inc()
}
