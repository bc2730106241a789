package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/types"
)

func component(header string, value int64, taxRate float64, discountable bool) types.PriceComponent {
	v := decimal.NewFromInt(value)
	return types.PriceComponent{
		HeaderID:        uuid.New(),
		Header:          header,
		TaxRate:         decimal.NewFromFloat(taxRate),
		OriginalValue:   v,
		DiscountedValue: v,
		IsDiscountable:  discountable,
		IsMandatory:     true,
		Metadata:        map[string]string{metadataKindKey: string(enums.HeaderKindCharge)},
	}
}

func hypothecationComponent(value int64) types.PriceComponent {
	v := decimal.NewFromInt(value)
	return types.PriceComponent{
		HeaderID:        uuid.New(),
		Header:          "HPA",
		OriginalValue:   v,
		DiscountedValue: v,
		IsDiscountable:  false,
		Metadata:        map[string]string{metadataKindKey: string(enums.HeaderKindHypothecation)},
	}
}

func TestAllocateFixedPrefersHigherTaxRate(t *testing.T) {
	t.Parallel()
	components := types.PriceComponents{
		component("TAX", 1000, 18, true),
		component("REG", 500, 0, true),
		hypothecationComponent(0),
	}

	out, err := Allocate(components, decimal.NewFromInt(400), enums.DiscountTypeFixed)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := ValidateLimits(out); err != nil {
		t.Fatalf("validate limits: %v", err)
	}

	if got := out[0].DiscountedValue; !got.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected TAX discounted to 600, got %s", got)
	}
	if got := out[1].DiscountedValue; !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected REG unchanged at 500, got %s", got)
	}

	total, _ := ComputeTotals(out, decimal.Zero, decimal.Zero)
	if !total.Equal(decimal.NewFromInt(1100)) {
		t.Fatalf("expected total 1100, got %s", total)
	}
}

func TestAllocatePercentagePoolExhaustsOnFirstComponent(t *testing.T) {
	t.Parallel()
	components := types.PriceComponents{
		component("TAX18", 1000, 18, true),
		component("TAX5", 1000, 5, true),
	}

	out, err := Allocate(components, decimal.NewFromInt(50), enums.DiscountTypePercentage)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	// Pool is 1000; the 18% line absorbs its 950 cap first, the 5% line
	// takes the remaining 50.
	if got := out[0].DiscountedValue; !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected first component at 50, got %s", got)
	}
	if got := out[1].DiscountedValue; !got.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("expected second component to absorb the remaining 50, got %s", got)
	}
}

func TestAllocateZeroAmountIsIdentity(t *testing.T) {
	t.Parallel()
	components := types.PriceComponents{
		component("TAX", 1000, 18, true),
	}
	components[0].DiscountedValue = decimal.NewFromInt(700)

	out, err := Allocate(components, decimal.Zero, enums.DiscountTypeFixed)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if !out[0].DiscountedValue.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("zero allocation must not move values, got %s", out[0].DiscountedValue)
	}
}

func TestAllocateDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	components := types.PriceComponents{
		component("TAX", 1000, 18, true),
	}

	if _, err := Allocate(components, decimal.NewFromInt(100), enums.DiscountTypeFixed); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if !components[0].DiscountedValue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("input mutated: %s", components[0].DiscountedValue)
	}
}

func TestAllocateNoEligibleComponents(t *testing.T) {
	t.Parallel()
	components := types.PriceComponents{
		component("FIXED_FEE", 1000, 0, false),
		hypothecationComponent(300),
	}

	_, err := Allocate(components, decimal.NewFromInt(100), enums.DiscountTypeFixed)
	if err == nil {
		t.Fatal("expected error when nothing is discountable")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAllocateNegativeAmountRejected(t *testing.T) {
	t.Parallel()
	components := types.PriceComponents{component("TAX", 1000, 18, true)}
	if _, err := Allocate(components, decimal.NewFromInt(-10), enums.DiscountTypeFixed); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestValidateLimitsNamesOffendingHeaders(t *testing.T) {
	t.Parallel()
	bad := component("TAX", 1000, 18, true)
	bad.DiscountedValue = decimal.NewFromInt(20) // below the 50 floor
	components := types.PriceComponents{bad, component("REG", 500, 0, true)}

	err := ValidateLimits(components)
	if err == nil {
		t.Fatal("expected cap violation")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	headers, ok := details["headers"].([]string)
	if !ok || len(headers) != 1 || headers[0] != "TAX" {
		t.Fatalf("expected offending header TAX, got %v", details["headers"])
	}
}

func TestApplyDiscountsSequentialPasses(t *testing.T) {
	t.Parallel()
	components := types.PriceComponents{
		component("TAX", 1000, 18, true),
		component("REG", 500, 5, true),
	}
	discounts := types.Discounts{
		{Amount: decimal.NewFromInt(900), Type: enums.DiscountTypeFixed, IsModelDiscount: true},
		{Amount: decimal.NewFromInt(50), Type: enums.DiscountTypeFixed},
	}

	out, err := ApplyDiscounts(components, discounts)
	if err != nil {
		t.Fatalf("apply discounts: %v", err)
	}
	// First pass takes 900 from TAX (the highest tax rate). The second pass
	// lands on TAX again and takes 50, leaving it exactly at its 5% floor.
	if got := out[0].DiscountedValue; !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected TAX at its 50 floor, got %s", got)
	}
	if got := out[1].DiscountedValue; !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected REG untouched at 500, got %s", got)
	}

	// A later pass never spills to lower-priority headers to rescue one it
	// pushed below the floor; the whole application fails instead.
	discounts[1].Amount = decimal.NewFromInt(100)
	if _, err := ApplyDiscounts(components, discounts); err == nil {
		t.Fatal("expected cap violation when the second pass breaches the floor")
	}
}

func TestApplyDiscountsSecondPassBreachesCap(t *testing.T) {
	t.Parallel()
	components := types.PriceComponents{component("TAX", 1000, 18, true)}
	discounts := types.Discounts{
		{Amount: decimal.NewFromInt(900), Type: enums.DiscountTypeFixed},
		{Amount: decimal.NewFromInt(900), Type: enums.DiscountTypeFixed},
	}

	if _, err := ApplyDiscounts(components, discounts); err == nil {
		t.Fatal("expected cap violation on second pass")
	}
}

func TestComputeTotalsMatchesInvariant(t *testing.T) {
	t.Parallel()
	tax := component("TAX", 1000, 18, true)
	tax.DiscountedValue = decimal.NewFromInt(600)
	components := types.PriceComponents{tax, component("REG", 500, 0, true)}

	total, discounted := ComputeTotals(components, decimal.NewFromInt(1200), decimal.NewFromInt(800))
	if !total.Equal(decimal.NewFromInt(3100)) {
		t.Fatalf("expected total 3100, got %s", total)
	}
	if !discounted.Equal(decimal.NewFromInt(2700)) {
		t.Fatalf("expected discounted amount 2700, got %s", discounted)
	}
}
