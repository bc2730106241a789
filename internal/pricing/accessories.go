package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/types"
)

// Bundle reconciles the selected accessories against the entity's
// accessory-total floor. Every selected id must resolve to an active catalog
// entry compatible with the model. When the floor exceeds the itemized sum a
// synthetic nil-accessory line balances the difference, so the returned lines
// always sum exactly to the returned total.
type Bundle struct {
	Lines types.AccessoryLines
	Total decimal.Decimal
}

// BundleAccessories builds the accessory bundle for a booking.
func BundleAccessories(selected []uuid.UUID, catalog []models.Accessory, modelID uuid.UUID, floor decimal.Decimal) (Bundle, error) {
	byID := make(map[uuid.UUID]models.Accessory, len(catalog))
	for _, entry := range catalog {
		byID[entry.ID] = entry
	}

	var offending []string
	lines := make(types.AccessoryLines, 0, len(selected))
	sum := decimal.Zero
	for _, id := range selected {
		entry, ok := byID[id]
		if !ok || entry.Status != enums.AccessoryStatusActive || !entry.AppliesTo(modelID) {
			offending = append(offending, id.String())
			continue
		}
		name := entry.Name
		accessoryID := entry.ID
		lines = append(lines, types.AccessoryLine{
			AccessoryID: &accessoryID,
			Name:        &name,
			Price:       entry.Price,
			Discount:    decimal.Zero,
		})
		sum = sum.Add(entry.Price)
	}
	if len(offending) > 0 {
		return Bundle{}, pkgerrors.New(pkgerrors.CodeValidation, "accessories unavailable or incompatible with model").
			WithDetails(map[string]any{"accessory_ids": offending})
	}

	total := decimal.Max(sum, floor)
	if floor.GreaterThan(sum) {
		lines = append(lines, types.AccessoryLine{
			Price:    floor.Sub(sum),
			Discount: decimal.Zero,
		})
	}

	return Bundle{Lines: lines, Total: total}, nil
}
