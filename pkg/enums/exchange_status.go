package enums

// ExchangeStatus tracks the old-vehicle exchange attached to a booking.
type ExchangeStatus string

const (
	ExchangeStatusPending   ExchangeStatus = "PENDING"
	ExchangeStatusVerified  ExchangeStatus = "VERIFIED"
	ExchangeStatusCompleted ExchangeStatus = "COMPLETED"
	ExchangeStatusCancelled ExchangeStatus = "CANCELLED"
)

var validExchangeStatuses = []ExchangeStatus{
	ExchangeStatusPending,
	ExchangeStatusVerified,
	ExchangeStatusCompleted,
	ExchangeStatusCancelled,
}

// String implements fmt.Stringer.
func (e ExchangeStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExchangeStatus.
func (e ExchangeStatus) IsValid() bool {
	for _, candidate := range validExchangeStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}
