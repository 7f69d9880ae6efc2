package enums

import "fmt"

// DiningMode is the fulfillment channel selected for an order.
type DiningMode string

const (
	DiningModeDineIn    DiningMode = "dine-in"
	DiningModePickup    DiningMode = "pickup"
	DiningModeDelivery  DiningMode = "delivery"
	DiningModeScanOrder DiningMode = "scan-order"
)

var validDiningModes = []DiningMode{
	DiningModeDineIn,
	DiningModePickup,
	DiningModeDelivery,
	DiningModeScanOrder,
}

// String implements fmt.Stringer.
func (d DiningMode) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiningMode.
func (d DiningMode) IsValid() bool {
	for _, candidate := range validDiningModes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiningMode converts raw input into a DiningMode.
func ParseDiningMode(value string) (DiningMode, error) {
	for _, candidate := range validDiningModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dining mode %q", value)
}
