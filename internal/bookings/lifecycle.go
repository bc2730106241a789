package bookings

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/types"
)

// allowedTransitions is the booking status machine. Terminal statuses have
// no outgoing edges.
var allowedTransitions = map[enums.BookingStatus][]enums.BookingStatus{
	enums.BookingStatusPendingApproval: {
		enums.BookingStatusApproved,
		enums.BookingStatusRejected,
		enums.BookingStatusCancelled,
	},
	enums.BookingStatusApproved: {
		enums.BookingStatusCompleted,
		enums.BookingStatusCancelled,
	},
}

// transitionAuthority maps each role to the target statuses it may drive.
// Authorization is one table lookup, decoupled from the machine itself.
var transitionAuthority = map[enums.UserRole]map[enums.BookingStatus]struct{}{
	enums.RoleAdmin: {
		enums.BookingStatusApproved:  {},
		enums.BookingStatusRejected:  {},
		enums.BookingStatusCompleted: {},
		enums.BookingStatusCancelled: {},
	},
	enums.RoleBranchManager: {
		enums.BookingStatusApproved:  {},
		enums.BookingStatusRejected:  {},
		enums.BookingStatusCompleted: {},
		enums.BookingStatusCancelled: {},
	},
	enums.RoleSalesExecutive: {
		enums.BookingStatusCancelled: {},
	},
	enums.RoleSubdealerUser: {
		enums.BookingStatusCancelled: {},
	},
}

// CanTransition reports whether the machine allows from → to.
func CanTransition(from, to enums.BookingStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// AuthorizeTransition checks the role's authority over the target status.
func AuthorizeTransition(role enums.UserRole, to enums.BookingStatus) error {
	if _, ok := transitionAuthority[role][to]; !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not perform this transition")
	}
	return nil
}

// EnsureTransition validates the edge and returns a state conflict otherwise.
func EnsureTransition(from, to enums.BookingStatus) error {
	if !CanTransition(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "booking cannot move from "+from.String()+" to "+to.String())
	}
	return nil
}

// EnsureMutable rejects pricing/discount/accessory mutation once the booking
// has left PENDING_APPROVAL.
func EnsureMutable(status enums.BookingStatus) error {
	if status != enums.BookingStatusPendingApproval {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is locked in status "+status.String())
	}
	return nil
}

var chassisNumberPattern = regexp.MustCompile(`^[A-Z0-9]{17}$`)

// NormalizeChassisNumber upper-cases and validates the 17-character VIN form.
func NormalizeChassisNumber(raw string) (string, error) {
	number := strings.ToUpper(strings.TrimSpace(raw))
	if !chassisNumberPattern.MatchString(number) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "chassis number must be exactly 17 alphanumeric characters")
	}
	return number, nil
}

// ApplyChassisAllocation mutates the booking's chassis sub-state. Initial
// allocation opens a single re-allocation window; re-allocation demands a
// reason, appends the displaced number to history and closes the window.
func ApplyChassisAllocation(booking *models.Booking, number, reason string, actor uuid.UUID, now time.Time) error {
	if booking.ChassisNumber == nil {
		booking.ChassisNumber = &number
		booking.ChassisNumberChangeAllowed = true
		return nil
	}

	if !booking.ChassisNumberChangeAllowed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "chassis number was already changed once")
	}
	if strings.TrimSpace(reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reason is required to change an allocated chassis number")
	}

	booking.ChassisNumberHistory = append(booking.ChassisNumberHistory, types.ChassisChange{
		Number:         *booking.ChassisNumber,
		ChangedAt:      now,
		ChangedBy:      actor,
		Reason:         reason,
		StatusAtChange: booking.Status,
	})
	booking.ChassisNumber = &number
	booking.ChassisNumberChangeAllowed = false
	return nil
}

// ValidateClaim checks a claim attachment raised during allocation.
func ValidateClaim(claim *types.Claim) error {
	if claim == nil {
		return nil
	}
	if !claim.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "claim price is required")
	}
	if strings.TrimSpace(claim.Description) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "claim description is required")
	}
	if len(claim.Documents) > types.MaxClaimDocuments {
		return pkgerrors.New(pkgerrors.CodeValidation, "a claim carries at most 6 supporting documents")
	}
	return nil
}
