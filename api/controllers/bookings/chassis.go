package bookings

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sahyadri-motors/dealerdesk/api/responses"
	"github.com/sahyadri-motors/dealerdesk/api/validators"
	internalbookings "github.com/sahyadri-motors/dealerdesk/internal/bookings"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/logger"
)

type allocateChassisRequest struct {
	ChassisNumber string        `json:"chassis_number" validate:"required,len=17,alphanum"`
	Reason        string        `json:"reason,omitempty" validate:"omitempty,max=512"`
	Claim         *claimRequest `json:"claim,omitempty"`
}

type claimRequest struct {
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description" validate:"required,max=512"`
	Documents   []string        `json:"documents" validate:"omitempty,max=6,dive,required"`
}

// AllocateChassis assigns a chassis number to an approved booking. A second
// call is a re-allocation and needs a reason, in the body or ?reason=.
func AllocateChassis(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload allocateChassisRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reason := strings.TrimSpace(payload.Reason)
		if reason == "" {
			reason = strings.TrimSpace(r.URL.Query().Get("reason"))
		}

		input := internalbookings.AllocateChassisInput{
			BookingID:     bookingID,
			ChassisNumber: strings.ToUpper(strings.TrimSpace(payload.ChassisNumber)),
			Reason:        reason,
			ActorID:       actorID,
			ActorRole:     role,
		}

		if payload.Claim != nil {
			if payload.Claim.Price.IsNegative() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "claim price cannot be negative"))
				return
			}
			input.HasClaim = true
			input.Claim = &internalbookings.ClaimInput{
				Price:       payload.Claim.Price,
				Description: strings.TrimSpace(payload.Claim.Description),
				Documents:   payload.Claim.Documents,
			}
		}

		booking, err := svc.AllocateChassis(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, booking)
	}
}
