package enums

import "fmt"

// HeaderKind classifies a price header for resolution.
//
// Charge headers become price components; the accessory-total header sets the
// accessory floor; the hypothecation header is toggled by the finance lien
// flag; the RTO header feeds the booking's registration amount.
type HeaderKind string

const (
	HeaderKindCharge         HeaderKind = "CHARGE"
	HeaderKindAccessoryTotal HeaderKind = "ACCESSORY_TOTAL"
	HeaderKindHypothecation  HeaderKind = "HYPOTHECATION"
	HeaderKindRTO            HeaderKind = "RTO"
)

var validHeaderKinds = []HeaderKind{
	HeaderKindCharge,
	HeaderKindAccessoryTotal,
	HeaderKindHypothecation,
	HeaderKindRTO,
}

// String implements fmt.Stringer.
func (h HeaderKind) String() string {
	return string(h)
}

// IsValid reports whether the value is a known HeaderKind.
func (h HeaderKind) IsValid() bool {
	for _, candidate := range validHeaderKinds {
		if candidate == h {
			return true
		}
	}
	return false
}

// ParseHeaderKind converts raw input into a HeaderKind.
func ParseHeaderKind(value string) (HeaderKind, error) {
	for _, candidate := range validHeaderKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid header kind %q", value)
}
