package checkout

import (
	"context"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
)

// Notification is a user-facing message emitted when a payment attempt ends.
type Notification struct {
	SessionID string
	OrderID   string
	Status    enums.PayStatus
	Reason    enums.PayFailReason
	Message   string
}

// Notifier delivers checkout notifications to the member.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// LogNotifier writes notifications through the structured logger.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) Notify(ctx context.Context, note Notification) {
	ctx = n.logg.WithFields(ctx, map[string]any{
		"event":      "checkout.notification",
		"session_id": note.SessionID,
		"order_id":   note.OrderID,
		"status":     note.Status.String(),
		"reason":     note.Reason.String(),
	})
	if note.Status == enums.PayStatusFailed {
		n.logg.Warn(ctx, note.Message)
		return
	}
	n.logg.Info(ctx, note.Message)
}
