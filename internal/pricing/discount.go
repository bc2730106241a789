package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/types"
)

var (
	// maxDiscountShare caps the discount any single component can absorb.
	maxDiscountShare = decimal.NewFromFloat(0.95)
	// minRetainedShare is the floor every discountable component must keep.
	minRetainedShare = decimal.NewFromFloat(0.05)

	hundred = decimal.NewFromInt(100)
)

// Allocate distributes one discount instruction across the eligible
// components and returns a new slice; the input is never mutated. Eligible
// components are walked in descending tax-rate order (stable on ties) so
// higher-taxed lines absorb discount first; each absorbs at most 95% of its
// original value and the walk stops once the pool is exhausted.
func Allocate(components types.PriceComponents, amount decimal.Decimal, discountType enums.DiscountType) (types.PriceComponents, error) {
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount amount must not be negative")
	}

	out := cloneComponents(components)
	if amount.IsZero() {
		return out, nil
	}

	eligible := make([]int, 0, len(out))
	for i, c := range out {
		if c.IsDiscountable && !isHypothecation(c) {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no discountable components to absorb discount")
	}

	sort.SliceStable(eligible, func(a, b int) bool {
		return out[eligible[a]].TaxRate.GreaterThan(out[eligible[b]].TaxRate)
	})

	pool := amount
	if discountType == enums.DiscountTypePercentage {
		base := decimal.Zero
		for _, i := range eligible {
			base = base.Add(out[i].OriginalValue)
		}
		pool = base.Mul(amount).Div(hundred)
	}

	for _, i := range eligible {
		if !pool.IsPositive() {
			break
		}
		take := decimal.Min(pool, out[i].OriginalValue.Mul(maxDiscountShare))
		out[i].DiscountedValue = out[i].DiscountedValue.Sub(take)
		pool = pool.Sub(take)
	}

	return out, nil
}

// ValidateLimits re-scans the discountable, non-exempt components and fails
// when any has been pushed below 5% of its original value. Sequential
// multi-discount application can re-violate the cap on a component a later
// pass also touches, so this runs after every Allocate call.
func ValidateLimits(components types.PriceComponents) error {
	var offending []string
	for _, c := range components {
		if !c.IsDiscountable || isHypothecation(c) {
			continue
		}
		if c.DiscountedValue.LessThan(c.OriginalValue.Mul(minRetainedShare)) {
			offending = append(offending, c.Header)
		}
	}
	if len(offending) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds the 95% cap").
			WithDetails(map[string]any{"headers": offending})
	}
	return nil
}

// ApplyDiscounts runs the instructions in order, each against the output of
// the previous pass, validating the cap after every pass.
func ApplyDiscounts(components types.PriceComponents, discounts types.Discounts) (types.PriceComponents, error) {
	out := cloneComponents(components)
	for _, d := range discounts {
		next, err := Allocate(out, d.Amount, d.Type)
		if err != nil {
			return nil, err
		}
		if err := ValidateLimits(next); err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// ComputeTotals derives the booking totals from the final component set.
// TotalAmount sums the post-discount components plus accessories and RTO;
// DiscountedAmount subtracts the absorbed discount from that total.
func ComputeTotals(components types.PriceComponents, accessoriesTotal, rtoAmount decimal.Decimal) (totalAmount, discountedAmount decimal.Decimal) {
	totalAmount = accessoriesTotal.Add(rtoAmount)
	discountSum := decimal.Zero
	for _, c := range components {
		totalAmount = totalAmount.Add(c.DiscountedValue)
		discountSum = discountSum.Add(c.DiscountApplied())
	}
	discountedAmount = totalAmount.Sub(discountSum)
	return totalAmount, discountedAmount
}

func cloneComponents(components types.PriceComponents) types.PriceComponents {
	out := make(types.PriceComponents, len(components))
	copy(out, components)
	for i := range out {
		if out[i].Metadata == nil {
			continue
		}
		meta := make(map[string]string, len(out[i].Metadata))
		for k, v := range out[i].Metadata {
			meta[k] = v
		}
		out[i].Metadata = meta
	}
	return out
}
