package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	"github.com/sahyadri-motors/dealerdesk/pkg/types"
)

// Booking is the central sales aggregate. Pricing arrays and the chassis
// history live inline as JSONB; cancellation is a terminal status, rows are
// never deleted.
type Booking struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BookingNumber string    `gorm:"column:booking_number;not null;uniqueIndex"`

	BookingType     enums.BookingType `gorm:"column:booking_type;type:text;not null"`
	BranchID        *uuid.UUID        `gorm:"column:branch_id;type:uuid;index"`
	SubdealerID     *uuid.UUID        `gorm:"column:subdealer_id;type:uuid;index"`
	SalesExecutive  *uuid.UUID        `gorm:"column:sales_executive_id;type:uuid"`
	SubdealerUserID *uuid.UUID        `gorm:"column:subdealer_user_id;type:uuid"`

	ModelID      uuid.UUID          `gorm:"column:model_id;type:uuid;not null"`
	ModelColorID uuid.UUID          `gorm:"column:model_color_id;type:uuid;not null"`
	CustomerType enums.CustomerType `gorm:"column:customer_type;type:text;not null"`
	GSTIN        *string            `gorm:"column:gstin"`
	RTOType      enums.RTOType      `gorm:"column:rto_type;type:text;not null"`
	Customer     types.Customer     `gorm:"column:customer;type:jsonb;serializer:json"`

	PriceComponents      types.PriceComponents `gorm:"column:price_components;type:jsonb;serializer:json"`
	Accessories          types.AccessoryLines  `gorm:"column:accessories;type:jsonb;serializer:json"`
	AccessoriesTotal     decimal.Decimal       `gorm:"column:accessories_total;type:numeric(14,2);not null;default:0"`
	RTOAmount            decimal.Decimal       `gorm:"column:rto_amount;type:numeric(14,2);not null;default:0"`
	HypothecationCharges decimal.Decimal       `gorm:"column:hypothecation_charges;type:numeric(14,2);not null;default:0"`
	Discounts            types.Discounts       `gorm:"column:discounts;type:jsonb;serializer:json"`
	TotalAmount          decimal.Decimal       `gorm:"column:total_amount;type:numeric(14,2);not null;default:0"`
	DiscountedAmount     decimal.Decimal       `gorm:"column:discounted_amount;type:numeric(14,2);not null;default:0"`

	Payment  types.Payment   `gorm:"column:payment;type:jsonb;serializer:json"`
	Exchange *types.Exchange `gorm:"column:exchange;type:jsonb;serializer:json"`

	Status     enums.BookingStatus `gorm:"column:status;type:text;not null;default:'PENDING_APPROVAL';index"`
	ApprovedBy *uuid.UUID          `gorm:"column:approved_by;type:uuid"`
	ApprovedAt *time.Time          `gorm:"column:approved_at"`

	ChassisNumber              *string              `gorm:"column:chassis_number;uniqueIndex"`
	ChassisNumberChangeAllowed bool                 `gorm:"column:chassis_number_change_allowed;not null;default:false"`
	ChassisNumberHistory       types.ChassisChanges `gorm:"column:chassis_number_history;type:jsonb;serializer:json"`
	Claim                      *types.Claim         `gorm:"column:claim;type:jsonb;serializer:json"`

	KYCStatus           enums.DocumentStatus `gorm:"column:kyc_status;type:text;not null;default:'PENDING'"`
	FinanceLetterStatus enums.DocumentStatus `gorm:"column:finance_letter_status;type:text;not null;default:'PENDING'"`
	InsuranceStatus     enums.DocumentStatus `gorm:"column:insurance_status;type:text;not null;default:'PENDING'"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
