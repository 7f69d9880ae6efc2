package enums

// PayStatus is the discriminator of a checkout payment state.
type PayStatus string

const (
	PayStatusIdle     PayStatus = "idle"
	PayStatusCreating PayStatus = "creating"
	PayStatusPaying   PayStatus = "paying"
	PayStatusSuccess  PayStatus = "success"
	PayStatusFailed   PayStatus = "failed"
)

// String implements fmt.Stringer.
func (p PayStatus) String() string {
	return string(p)
}

// InFlight reports whether a collaborator call is outstanding in this status.
func (p PayStatus) InFlight() bool {
	return p == PayStatusCreating || p == PayStatusPaying
}

// IsTerminal reports whether the status ends the checkout session.
func (p PayStatus) IsTerminal() bool {
	return p == PayStatusSuccess
}
