package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
)

// VehicleModel is a sellable vehicle variant with its color options.
// ModelDiscount, when positive, is a fixed campaign discount applied to
// every booking of the model before any manual discount.
type VehicleModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string          `gorm:"column:name;not null;uniqueIndex"`
	Segment       string          `gorm:"column:segment;not null"`
	ModelDiscount decimal.Decimal `gorm:"column:model_discount;type:numeric(12,2);not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	Colors        []ModelColor    `gorm:"foreignKey:ModelID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ModelColor is one orderable color of a vehicle model.
type ModelColor struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ModelID   uuid.UUID `gorm:"column:model_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// PriceHeader is a named charge category with resolution flags. Priority
// orders headers during component resolution; TaxRate orders components
// during discount allocation.
type PriceHeader struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string           `gorm:"column:name;not null;uniqueIndex"`
	Kind           enums.HeaderKind `gorm:"column:kind;type:text;not null;default:'CHARGE'"`
	Priority       int              `gorm:"column:priority;not null;default:0"`
	IsMandatory    bool             `gorm:"column:is_mandatory;not null;default:false"`
	IsDiscountable bool             `gorm:"column:is_discountable;not null;default:false"`
	TaxRate        decimal.Decimal  `gorm:"column:tax_rate;type:numeric(6,3);not null;default:0"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ModelPrice is one price matrix cell: (model, header, sales entity) → value.
// A missing cell means the header is skipped for that combination.
type ModelPrice struct {
	ID         uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ModelID    uuid.UUID         `gorm:"column:model_id;type:uuid;not null;uniqueIndex:ux_model_prices_cell"`
	HeaderID   uuid.UUID         `gorm:"column:header_id;type:uuid;not null;uniqueIndex:ux_model_prices_cell"`
	EntityType enums.BookingType `gorm:"column:entity_type;type:text;not null;uniqueIndex:ux_model_prices_cell"`
	EntityID   uuid.UUID         `gorm:"column:entity_id;type:uuid;not null;uniqueIndex:ux_model_prices_cell"`
	Value      decimal.Decimal   `gorm:"column:value;type:numeric(14,2);not null"`
	Header     *PriceHeader      `gorm:"foreignKey:HeaderID"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
