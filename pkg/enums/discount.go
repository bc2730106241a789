package enums

import "fmt"

// DiscountType selects how a discount instruction is interpreted.
type DiscountType string

const (
	DiscountTypeFixed      DiscountType = "FIXED"
	DiscountTypePercentage DiscountType = "PERCENTAGE"
)

var validDiscountTypes = []DiscountType{
	DiscountTypeFixed,
	DiscountTypePercentage,
}

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	for _, candidate := range validDiscountTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountType converts raw input into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	for _, candidate := range validDiscountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}

// DiscountApprovalStatus tracks per-discount approval alongside the booking.
type DiscountApprovalStatus string

const (
	DiscountApprovalPending  DiscountApprovalStatus = "PENDING"
	DiscountApprovalApproved DiscountApprovalStatus = "APPROVED"
	DiscountApprovalRejected DiscountApprovalStatus = "REJECTED"
)

var validDiscountApprovalStatuses = []DiscountApprovalStatus{
	DiscountApprovalPending,
	DiscountApprovalApproved,
	DiscountApprovalRejected,
}

// String implements fmt.Stringer.
func (d DiscountApprovalStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountApprovalStatus.
func (d DiscountApprovalStatus) IsValid() bool {
	for _, candidate := range validDiscountApprovalStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}
