package enums

import "fmt"

// AccessoryStatus gates catalog accessories for selection.
type AccessoryStatus string

const (
	AccessoryStatusActive   AccessoryStatus = "active"
	AccessoryStatusInactive AccessoryStatus = "inactive"
)

var validAccessoryStatuses = []AccessoryStatus{
	AccessoryStatusActive,
	AccessoryStatusInactive,
}

// String implements fmt.Stringer.
func (a AccessoryStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccessoryStatus.
func (a AccessoryStatus) IsValid() bool {
	for _, candidate := range validAccessoryStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccessoryStatus converts raw input into an AccessoryStatus.
func ParseAccessoryStatus(value string) (AccessoryStatus, error) {
	for _, candidate := range validAccessoryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid accessory status %q", value)
}
