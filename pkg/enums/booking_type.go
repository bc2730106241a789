package enums

import "fmt"

// BookingType distinguishes the sales channel a booking is attributed to.
type BookingType string

const (
	BookingTypeBranch    BookingType = "BRANCH"
	BookingTypeSubdealer BookingType = "SUBDEALER"
)

var validBookingTypes = []BookingType{
	BookingTypeBranch,
	BookingTypeSubdealer,
}

// String implements fmt.Stringer.
func (b BookingType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingType.
func (b BookingType) IsValid() bool {
	for _, candidate := range validBookingTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBookingType converts raw input into a BookingType.
func ParseBookingType(value string) (BookingType, error) {
	for _, candidate := range validBookingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking type %q", value)
}
