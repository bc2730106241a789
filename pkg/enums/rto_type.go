package enums

import "fmt"

// RTOType selects the registration series a booking is filed under.
type RTOType string

const (
	RTOTypeMH   RTOType = "MH"
	RTOTypeBH   RTOType = "BH"
	RTOTypeCRTM RTOType = "CRTM"
)

var validRTOTypes = []RTOType{
	RTOTypeMH,
	RTOTypeBH,
	RTOTypeCRTM,
}

// String implements fmt.Stringer.
func (r RTOType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RTOType.
func (r RTOType) IsValid() bool {
	for _, candidate := range validRTOTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRTOType converts raw input into an RTOType.
func ParseRTOType(value string) (RTOType, error) {
	for _, candidate := range validRTOTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rto type %q", value)
}
