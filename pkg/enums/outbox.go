package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateBooking  OutboxAggregateType = "booking"
	AggregateDocument OutboxAggregateType = "document"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateBooking,
	AggregateDocument,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventBookingCreated          OutboxEventType = "booking_created"
	EventBookingUpdated          OutboxEventType = "booking_updated"
	EventBookingApproved         OutboxEventType = "booking_approved"
	EventBookingRejected         OutboxEventType = "booking_rejected"
	EventBookingCompleted        OutboxEventType = "booking_completed"
	EventBookingCancelled        OutboxEventType = "booking_cancelled"
	EventChassisAllocated        OutboxEventType = "chassis_allocated"
	EventChassisReallocated      OutboxEventType = "chassis_reallocated"
	EventDocumentRenderRequested OutboxEventType = "document_render_requested"
)

var validEventTypes = []OutboxEventType{
	EventBookingCreated,
	EventBookingUpdated,
	EventBookingApproved,
	EventBookingRejected,
	EventBookingCompleted,
	EventBookingCancelled,
	EventChassisAllocated,
	EventChassisReallocated,
	EventDocumentRenderRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
