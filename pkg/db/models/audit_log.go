package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of a booking operation and its outcome.
// Writes are best-effort: a failed audit insert never rolls back the booking.
type AuditLog struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID *uuid.UUID      `gorm:"column:booking_id;type:uuid;index"`
	Action    string          `gorm:"column:action;not null"`
	Outcome   string          `gorm:"column:outcome;not null"`
	ActorID   uuid.UUID       `gorm:"column:actor_id;type:uuid;not null"`
	Detail    json.RawMessage `gorm:"column:detail;type:jsonb"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
