package checkout

import (
	"fmt"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

// PayState is the payment progress of a checkout session. The concrete
// variants are Idle, Creating, Paying, Succeeded and Failed.
type PayState interface {
	Status() enums.PayStatus
	payState()
}

// Idle is the state before any payment attempt or after a reset.
type Idle struct{}

// Creating means the order is being created upstream.
type Creating struct{}

// Paying means the order exists and payment is in progress.
type Paying struct {
	OrderID string
}

// Succeeded is terminal.
type Succeeded struct {
	OrderID string
}

// Failed carries the reason a payment attempt ended.
type Failed struct {
	Reason  enums.PayFailReason
	Message string
}

func (Idle) Status() enums.PayStatus      { return enums.PayStatusIdle }
func (Creating) Status() enums.PayStatus  { return enums.PayStatusCreating }
func (Paying) Status() enums.PayStatus    { return enums.PayStatusPaying }
func (Succeeded) Status() enums.PayStatus { return enums.PayStatusSuccess }
func (Failed) Status() enums.PayStatus    { return enums.PayStatusFailed }

func (Idle) payState()      {}
func (Creating) payState()  {}
func (Paying) payState()    {}
func (Succeeded) payState() {}
func (Failed) payState()    {}

var payTransitions = map[enums.PayStatus][]enums.PayStatus{
	enums.PayStatusIdle:     {enums.PayStatusCreating},
	enums.PayStatusCreating: {enums.PayStatusPaying, enums.PayStatusFailed},
	enums.PayStatusPaying:   {enums.PayStatusSuccess, enums.PayStatusFailed},
	enums.PayStatusFailed:   {enums.PayStatusIdle, enums.PayStatusCreating},
}

// CanTransitionTo reports whether a session may move from one status to another.
func CanTransitionTo(from, to enums.PayStatus) bool {
	for _, allowed := range payTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to PayState) error {
	if CanTransitionTo(from.Status(), to.Status()) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move payment from %s to %s", from.Status(), to.Status())).
		WithDetails(map[string]any{"from": from.Status(), "to": to.Status()})
}
