package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
)

// BookingLifecycleEvent is the payload shared by every booking lifecycle
// event, from creation through chassis allocation.
type BookingLifecycleEvent struct {
	BookingID     uuid.UUID           `json:"booking_id"`
	BookingNumber string              `json:"booking_number"`
	BookingType   enums.BookingType   `json:"booking_type"`
	Status        enums.BookingStatus `json:"status"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Reason        string              `json:"reason,omitempty"`
	ChassisNumber string              `json:"chassis_number,omitempty"`
}

// RenderRequestedEvent asks the rendering collaborator to produce a document
// for a booking snapshot.
type RenderRequestedEvent struct {
	BookingID     uuid.UUID           `json:"booking_id"`
	BookingNumber string              `json:"booking_number"`
	Kind          string              `json:"kind"`
	Status        enums.BookingStatus `json:"status"`
}
