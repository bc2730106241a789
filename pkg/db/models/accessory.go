package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/sahyadri-motors/dealerdesk/pkg/db/types"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
)

// Accessory is a catalog accessory orderable against compatible models.
type Accessory struct {
	ID                 uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string                `gorm:"column:name;not null"`
	Price              decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Status             enums.AccessoryStatus `gorm:"column:status;type:text;not null;default:'active'"`
	ApplicableModelIDs dbtypes.UUIDArray     `gorm:"column:applicable_model_ids;type:uuid[]"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// AppliesTo reports whether the accessory is compatible with the model.
func (a Accessory) AppliesTo(modelID uuid.UUID) bool {
	for _, id := range a.ApplicableModelIDs {
		if id == modelID {
			return true
		}
	}
	return false
}
