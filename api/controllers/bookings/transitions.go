package bookings

import (
	"context"
	"net/http"
	"strings"

	"github.com/sahyadri-motors/dealerdesk/api/responses"
	"github.com/sahyadri-motors/dealerdesk/api/validators"
	internalbookings "github.com/sahyadri-motors/dealerdesk/internal/bookings"
	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/logger"
)

type transitionRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=512"`
}

// Approve moves a pending booking to APPROVED.
func Approve(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, false, svcApprove)
}

// Reject moves a pending booking to REJECTED. A reason is required.
func Reject(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, true, svcReject)
}

// Complete closes out an allocated booking as delivered.
func Complete(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, false, svcComplete)
}

// Cancel abandons a booking from any pre-completion state.
func Cancel(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, false, svcCancel)
}

type transitionFunc func(internalbookings.Service, context.Context, internalbookings.TransitionInput) (*models.Booking, error)

func svcApprove(svc internalbookings.Service, ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error) {
	return svc.Approve(ctx, input)
}

func svcReject(svc internalbookings.Service, ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error) {
	return svc.Reject(ctx, input)
}

func svcComplete(svc internalbookings.Service, ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error) {
	return svc.Complete(ctx, input)
}

func svcCancel(svc internalbookings.Service, ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error) {
	return svc.Cancel(ctx, input)
}

func transitionHandler(svc internalbookings.Service, logg *logger.Logger, reasonRequired bool, call transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		actorID, role, err := parseActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookingID, err := parseBookingID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		reason := strings.TrimSpace(payload.Reason)
		if reasonRequired && reason == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "reason is required"))
			return
		}

		booking, err := call(svc, r.Context(), internalbookings.TransitionInput{
			BookingID: bookingID,
			ActorID:   actorID,
			ActorRole: role,
			Reason:    reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, booking)
	}
}
