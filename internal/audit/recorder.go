package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	"github.com/sahyadri-motors/dealerdesk/pkg/logger"
)

// Entry is one booking operation outcome to be recorded.
type Entry struct {
	BookingID *uuid.UUID
	Action    string
	Outcome   string
	ActorID   uuid.UUID
	Detail    any
}

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder persists audit entries. Implementations are best-effort: a failed
// write is logged and swallowed, never failing the primary operation.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type recorder struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewRecorder builds a DB-backed audit recorder.
func NewRecorder(db *gorm.DB, logg *logger.Logger) Recorder {
	return &recorder{db: db, logg: logg}
}

func (r *recorder) Record(ctx context.Context, entry Entry) {
	var detail json.RawMessage
	if entry.Detail != nil {
		raw, err := json.Marshal(entry.Detail)
		if err != nil {
			r.warn(ctx, entry, err)
			return
		}
		detail = raw
	}

	row := models.AuditLog{
		BookingID: entry.BookingID,
		Action:    entry.Action,
		Outcome:   entry.Outcome,
		ActorID:   entry.ActorID,
		Detail:    detail,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.warn(ctx, entry, err)
	}
}

func (r *recorder) warn(ctx context.Context, entry Entry, err error) {
	if r.logg == nil {
		return
	}
	ctx = r.logg.WithFields(ctx, map[string]any{
		"audit_action":  entry.Action,
		"audit_outcome": entry.Outcome,
	})
	r.logg.Warn(ctx, "audit entry dropped: "+err.Error())
}
