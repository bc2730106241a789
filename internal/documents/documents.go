package documents

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	"github.com/sahyadri-motors/dealerdesk/pkg/logger"
	"github.com/sahyadri-motors/dealerdesk/pkg/outbox"
	"github.com/sahyadri-motors/dealerdesk/pkg/outbox/payloads"
)

// Renderer asks the external rendering collaborator for a document built
// from a booking snapshot. Failures are the caller's to log and swallow.
type Renderer interface {
	RequestRender(ctx context.Context, tx *gorm.DB, booking *models.Booking, kind string, actor uuid.UUID) error
}

// StatusLookup reports collaborator-owned document state for a booking.
type StatusLookup interface {
	Statuses(ctx context.Context, bookingID uuid.UUID) (Statuses, error)
}

// CodeGenerator produces the opaque code embedded in booking QR artifacts.
type CodeGenerator interface {
	Code(bookingID uuid.UUID) string
}

// Statuses aggregates the per-document collaborator state.
type Statuses struct {
	KYC           enums.DocumentStatus `json:"kyc_status"`
	FinanceLetter enums.DocumentStatus `json:"finance_letter_status"`
	Insurance     enums.DocumentStatus `json:"insurance_status"`
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type outboxRenderer struct {
	emitter outboxEmitter
	logg    *logger.Logger
}

// NewOutboxRenderer publishes render requests through the outbox so the
// rendering collaborator consumes them off Pub/Sub. An unpublished render
// request for the same booking is not duplicated.
func NewOutboxRenderer(emitter outboxEmitter, logg *logger.Logger) Renderer {
	return &outboxRenderer{emitter: emitter, logg: logg}
}

func (r *outboxRenderer) RequestRender(ctx context.Context, tx *gorm.DB, booking *models.Booking, kind string, actor uuid.UUID) error {
	return r.emitter.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventDocumentRenderRequested,
		AggregateType: enums.AggregateDocument,
		AggregateID:   booking.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: actor},
		Data: payloads.RenderRequestedEvent{
			BookingID:     booking.ID,
			BookingNumber: booking.BookingNumber,
			Kind:          kind,
			Status:        booking.Status,
		},
	})
}

type storedStatusLookup struct {
	db *gorm.DB
}

// NewStoredStatusLookup reads the statuses mirrored onto the booking row by
// collaborator callbacks.
func NewStoredStatusLookup(db *gorm.DB) StatusLookup {
	return &storedStatusLookup{db: db}
}

func (l *storedStatusLookup) Statuses(ctx context.Context, bookingID uuid.UUID) (Statuses, error) {
	var booking models.Booking
	err := l.db.WithContext(ctx).
		Select("kyc_status", "finance_letter_status", "insurance_status").
		Where("id = ?", bookingID).
		First(&booking).Error
	if err != nil {
		return Statuses{}, err
	}
	return Statuses{
		KYC:           booking.KYCStatus,
		FinanceLetter: booking.FinanceLetterStatus,
		Insurance:     booking.InsuranceStatus,
	}, nil
}

type hmacCodeGenerator struct {
	secret []byte
}

// NewCodeGenerator derives stable opaque codes from booking ids.
func NewCodeGenerator(secret string) CodeGenerator {
	return &hmacCodeGenerator{secret: []byte(secret)}
}

func (g *hmacCodeGenerator) Code(bookingID uuid.UUID) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(bookingID[:])
	sum := mac.Sum(nil)
	return strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:10]))
}
