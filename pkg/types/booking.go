package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
)

// PriceComponent is one priced line resolved from the model's price matrix.
// Component arrays are replaced wholesale on recomputation, never patched.
type PriceComponent struct {
	HeaderID        uuid.UUID         `json:"header_id"`
	Header          string            `json:"header"`
	TaxRate         decimal.Decimal   `json:"tax_rate"`
	OriginalValue   decimal.Decimal   `json:"original_value"`
	DiscountedValue decimal.Decimal   `json:"discounted_value"`
	IsDiscountable  bool              `json:"is_discountable"`
	IsMandatory     bool              `json:"is_mandatory"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// DiscountApplied returns the absolute discount taken on the component.
func (p PriceComponent) DiscountApplied() decimal.Decimal {
	return p.OriginalValue.Sub(p.DiscountedValue)
}

// PriceComponents is stored inline on the booking as a JSONB array.
type PriceComponents []PriceComponent

// AccessoryLine is one accessory charge on a booking. A nil AccessoryID with
// a non-zero price is the synthetic line balancing the catalog floor against
// the itemized sum.
type AccessoryLine struct {
	AccessoryID *uuid.UUID      `json:"accessory_id,omitempty"`
	Name        *string         `json:"name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
}

// AccessoryLines is stored inline on the booking as a JSONB array.
type AccessoryLines []AccessoryLine

// Discount is one discount instruction carried by a booking. Instructions
// apply in sequence, each against the already-discounted component state.
type Discount struct {
	Amount          decimal.Decimal              `json:"amount"`
	Type            enums.DiscountType           `json:"type"`
	ApprovalStatus  enums.DiscountApprovalStatus `json:"approval_status"`
	IsModelDiscount bool                         `json:"is_model_discount"`
	AppliedOn       time.Time                    `json:"applied_on"`
}

// Discounts is stored inline on the booking as a JSONB array.
type Discounts []Discount

// ChassisChange records a prior chassis number displaced by re-allocation.
type ChassisChange struct {
	Number         string              `json:"number"`
	ChangedAt      time.Time           `json:"changed_at"`
	ChangedBy      uuid.UUID           `json:"changed_by"`
	Reason         string              `json:"reason"`
	StatusAtChange enums.BookingStatus `json:"status_at_change"`
}

// ChassisChanges is stored inline on the booking as a JSONB array.
type ChassisChanges []ChassisChange

// Customer snapshots the buyer's details at booking time.
type Customer struct {
	Salutation string  `json:"salutation"`
	Name       string  `json:"name"`
	Mobile1    string  `json:"mobile1"`
	Mobile2    *string `json:"mobile2,omitempty"`
	Email      *string `json:"email,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	Pincode    *string `json:"pincode,omitempty"`
}

// FinanceDetails carries the financed-payment branch of the payment union.
type FinanceDetails struct {
	FinancerID   uuid.UUID        `json:"financer_id"`
	FinancerName string           `json:"financer_name"`
	Scheme       string           `json:"scheme"`
	EMIPlan      string           `json:"emi_plan"`
	GCApplicable bool             `json:"gc_applicable"`
	GCAmount     *decimal.Decimal `json:"gc_amount,omitempty"`
}

// Payment is a tagged union: Finance is set iff Type is FINANCE.
type Payment struct {
	Type    enums.PaymentType `json:"type"`
	Finance *FinanceDetails   `json:"finance,omitempty"`
}

// IsFinanced reports whether the booking is financed under lien.
func (p Payment) IsFinanced() bool {
	return p.Type == enums.PaymentTypeFinance
}

// Exchange captures an old-vehicle exchange attached to a branch booking.
type Exchange struct {
	BrokerID      uuid.UUID            `json:"broker_id"`
	BrokerName    string               `json:"broker_name"`
	Price         decimal.Decimal      `json:"price"`
	VehicleNumber string               `json:"vehicle_number"`
	ChassisNumber string               `json:"chassis_number"`
	OTPVerified   bool                 `json:"otp_verified"`
	Status        enums.ExchangeStatus `json:"status"`
}

// MaxClaimDocuments caps the supporting documents attachable to one claim.
const MaxClaimDocuments = 6

// Claim records a damage or price adjustment raised during chassis allocation.
type Claim struct {
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Documents   []string        `json:"documents,omitempty"`
	RaisedAt    time.Time       `json:"raised_at"`
	RaisedBy    uuid.UUID       `json:"raised_by"`
}
