package bookings

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	"github.com/sahyadri-motors/dealerdesk/pkg/types"
)

// DiscountInput is one manual discount instruction.
type DiscountInput struct {
	Type  enums.DiscountType
	Value decimal.Decimal
}

// PaymentInput captures the payment block of a create/update request.
// Finance fields are honored only when Type is FINANCE; Hypothecation marks
// a lien and toggles the hypothecation charge header.
type PaymentInput struct {
	Type          enums.PaymentType
	FinancerID    *uuid.UUID
	Scheme        string
	EMIPlan       string
	Hypothecation bool
}

// ExchangeInput attaches an old-vehicle exchange. The broker OTP must have
// been verified before booking creation.
type ExchangeInput struct {
	BrokerID      uuid.UUID
	Price         decimal.Decimal
	VehicleNumber string
	ChassisNumber string
}

// CreateInput is everything booking creation needs, fully parsed.
type CreateInput struct {
	ModelID            uuid.UUID
	ColorID            uuid.UUID
	CustomerType       enums.CustomerType
	GSTIN              *string
	RTOType            enums.RTOType
	Customer           types.Customer
	Payment            PaymentInput
	BranchID           *uuid.UUID
	SubdealerID        *uuid.UUID
	SalesExecutiveID   *uuid.UUID
	OptionalComponents []uuid.UUID
	Accessories        []uuid.UUID
	Exchange           *ExchangeInput
	Discount           *DiscountInput
	ActorID            uuid.UUID
}

// UpdateInput patches a PENDING_APPROVAL booking. Any pricing-relevant field
// triggers a monolithic recompute of the full component set and totals;
// partial updates never mix pre- and post-update values.
type UpdateInput struct {
	BookingID          uuid.UUID
	ColorID            *uuid.UUID
	CustomerType       *enums.CustomerType
	GSTIN              *string
	RTOType            *enums.RTOType
	Customer           *types.Customer
	Payment            *PaymentInput
	OptionalComponents *[]uuid.UUID
	Accessories        *[]uuid.UUID
	Discount           *DiscountInput
	ActorID            uuid.UUID
	ActorRole          enums.UserRole
}

// TransitionInput drives approve/reject/complete/cancel.
type TransitionInput struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.UserRole
	Reason    string
}

// ClaimInput raises a claim during chassis allocation.
type ClaimInput struct {
	Price       decimal.Decimal
	Description string
	Documents   []string
}

// AllocateChassisInput drives initial allocation and re-allocation.
type AllocateChassisInput struct {
	BookingID     uuid.UUID
	ChassisNumber string
	Reason        string
	HasClaim      bool
	Claim         *ClaimInput
	ActorID       uuid.UUID
	ActorRole     enums.UserRole
}

// ListFilters narrows booking listings.
type ListFilters struct {
	Status      *enums.BookingStatus
	BranchID    *uuid.UUID
	SubdealerID *uuid.UUID
}
