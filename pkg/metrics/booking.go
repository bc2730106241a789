package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics records booking lifecycle activity.
type BookingMetrics struct {
	created    *prometheus.CounterVec
	transition *prometheus.CounterVec
	chassis    *prometheus.CounterVec
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Bookings created, by channel.",
	}, []string{"channel"})
	transition := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transitions_total",
		Help: "Booking status transitions, by target status.",
	}, []string{"status"})
	chassis := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chassis_allocations_total",
		Help: "Chassis allocations, split into initial and reallocation.",
	}, []string{"kind"})
	reg.MustRegister(created, transition, chassis)
	return &BookingMetrics{
		created:    created,
		transition: transition,
		chassis:    chassis,
	}
}

// IncCreated increments the creation counter for the given channel.
func (b *BookingMetrics) IncCreated(channel string) {
	if b == nil || b.created == nil {
		return
	}
	b.created.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncTransition increments the transition counter for the target status.
func (b *BookingMetrics) IncTransition(status string) {
	if b == nil || b.transition == nil {
		return
	}
	b.transition.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncChassisAllocated increments the allocation counter.
func (b *BookingMetrics) IncChassisAllocated(reallocated bool) {
	if b == nil || b.chassis == nil {
		return
	}
	kind := "initial"
	if reallocated {
		kind = "reallocation"
	}
	b.chassis.WithLabelValues(kind).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
