package pricing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/types"
)

// metadataKindKey marks each component with the header kind it came from so
// downstream passes can recognize discount-exempt lines without a join.
const metadataKindKey = "kind"

// HeaderValue is one resolved price matrix cell: the header definition plus
// the value priced for the requesting sales entity. Headers without a cell
// for the entity are never assembled into the input.
type HeaderValue struct {
	Header models.PriceHeader
	Value  decimal.Decimal
}

// ResolveInput carries everything component resolution needs, fully resolved
// by the caller; the resolver performs no lookups of its own.
type ResolveInput struct {
	Headers          []HeaderValue
	SelectedOptional []uuid.UUID
	Hypothecation    bool
}

// Resolution is the priced breakdown for one model/entity combination.
type Resolution struct {
	Components           types.PriceComponents
	RTOAmount            decimal.Decimal
	AccessoryFloor       decimal.Decimal
	HypothecationCharges decimal.Decimal
}

// Resolve walks the entity's price matrix cells in header-priority order and
// emits the booking's price components. Mandatory charge headers always emit;
// optional ones emit only when selected; the hypothecation header emits its
// value only when the finance lien flag is set and is never discountable.
// Accessory-total and RTO headers do not become components: they feed the
// accessory floor and the registration amount respectively.
func Resolve(input ResolveInput) (Resolution, error) {
	headers := make([]HeaderValue, len(input.Headers))
	copy(headers, input.Headers)
	sort.SliceStable(headers, func(i, j int) bool {
		return headers[i].Header.Priority < headers[j].Header.Priority
	})

	selected := make(map[uuid.UUID]struct{}, len(input.SelectedOptional))
	for _, id := range input.SelectedOptional {
		selected[id] = struct{}{}
	}

	var res Resolution
	for _, hv := range headers {
		header := hv.Header
		switch header.Kind {
		case enums.HeaderKindAccessoryTotal:
			res.AccessoryFloor = hv.Value
		case enums.HeaderKindRTO:
			res.RTOAmount = hv.Value
		case enums.HeaderKindHypothecation:
			applied := decimal.Zero
			if input.Hypothecation {
				applied = hv.Value
			}
			res.HypothecationCharges = applied
			res.Components = append(res.Components, types.PriceComponent{
				HeaderID:        header.ID,
				Header:          header.Name,
				TaxRate:         header.TaxRate,
				OriginalValue:   applied,
				DiscountedValue: applied,
				IsDiscountable:  false,
				IsMandatory:     header.IsMandatory,
				Metadata: map[string]string{
					metadataKindKey:    string(enums.HeaderKindHypothecation),
					"configured_value": hv.Value.String(),
				},
			})
		default:
			if !header.IsMandatory {
				if _, ok := selected[header.ID]; !ok {
					continue
				}
			}
			res.Components = append(res.Components, types.PriceComponent{
				HeaderID:        header.ID,
				Header:          header.Name,
				TaxRate:         header.TaxRate,
				OriginalValue:   hv.Value,
				DiscountedValue: hv.Value,
				IsDiscountable:  header.IsDiscountable,
				IsMandatory:     header.IsMandatory,
				Metadata:        map[string]string{metadataKindKey: string(enums.HeaderKindCharge)},
			})
		}
	}

	if len(res.Components) == 0 {
		return Resolution{}, pkgerrors.New(pkgerrors.CodeValidation, "no price data for model and sales entity")
	}
	return res, nil
}

func isHypothecation(c types.PriceComponent) bool {
	return c.Metadata[metadataKindKey] == string(enums.HeaderKindHypothecation)
}
