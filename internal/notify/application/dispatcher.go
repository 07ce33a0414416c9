package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/restroline/order-gateway/internal/notify/domain"
	orderdomain "github.com/restroline/order-gateway/internal/order/domain"
)

// statusNotice is one row of the fixed transition policy table.
type statusNotice struct {
	severity   domain.Severity
	title      string
	message    func(o orderdomain.Order) string
	persistent bool
	// operatorOnly suppresses the notification unless a human operator
	// triggered the transition. Ready and completed always notify: they
	// are time-sensitive for the customer even when automated. This
	// asymmetry is deliberate.
	operatorOnly bool
}

var statusNotices = map[orderdomain.OrderStatus]statusNotice{
	orderdomain.StatusConfirmed: {
		severity:     domain.SeveritySuccess,
		title:        "Order Confirmed",
		message:      func(o orderdomain.Order) string { return fmt.Sprintf("Your order %s has been confirmed and will be prepared soon.", o.ID) },
		operatorOnly: true,
	},
	orderdomain.StatusPreparing: {
		severity:     domain.SeverityInfo,
		title:        "Order In Progress",
		message:      func(o orderdomain.Order) string { return fmt.Sprintf("Your order %s is now being prepared.", o.ID) },
		operatorOnly: true,
	},
	orderdomain.StatusReady: {
		severity: domain.SeveritySuccess,
		title:    "Order Ready",
		message: func(o orderdomain.Order) string {
			if o.PickupLocation != "" {
				return fmt.Sprintf("Your order %s is ready for pickup at %s.", o.ID, o.PickupLocation)
			}
			return fmt.Sprintf("Your order %s is ready for pickup.", o.ID)
		},
		persistent: true,
	},
	orderdomain.StatusCompleted: {
		severity: domain.SeveritySuccess,
		title:    "Order Completed",
		message:  func(o orderdomain.Order) string { return fmt.Sprintf("Thanks! Your order %s is complete.", o.ID) },
	},
	orderdomain.StatusCancelled: {
		severity:     domain.SeverityWarning,
		title:        "Order Cancelled",
		message:      func(o orderdomain.Order) string { return fmt.Sprintf("Your order %s has been cancelled.", o.ID) },
		operatorOnly: true,
	},
}

// Dispatcher turns order lifecycle transitions into user-facing
// notifications: live delivery through the registry plus an append to the
// owner's durable log, so a user who reconnects still sees what they
// missed.
type Dispatcher struct {
	log      *slog.Logger
	registry *Registry
	journal  Log
}

func NewDispatcher(log *slog.Logger, registry *Registry, journal Log) *Dispatcher {
	return &Dispatcher{log: log, registry: registry, journal: journal}
}

// OrderReceived always notifies the owner, regardless of trigger source.
func (d *Dispatcher) OrderReceived(ctx context.Context, o orderdomain.Order) {
	n := domain.New(
		domain.SeverityInfo,
		"Order Received",
		fmt.Sprintf("Your order %s has been received and is awaiting confirmation.", o.ID),
		o.ID,
	)
	d.dispatch(ctx, o.UserID, n)
}

// StatusChanged consults the policy table for the order's new status and
// conditionally notifies the owner.
func (d *Dispatcher) StatusChanged(ctx context.Context, o orderdomain.Order, operatorTriggered bool) {
	notice, ok := statusNotices[o.Status]
	if !ok {
		return
	}
	if notice.operatorOnly && !operatorTriggered {
		return
	}

	var n domain.Notification
	if notice.persistent {
		n = domain.NewPersistent(notice.severity, notice.title, notice.message(o), o.ID)
	} else {
		n = domain.New(notice.severity, notice.title, notice.message(o), o.ID)
	}
	d.dispatch(ctx, o.UserID, n)
}

func (d *Dispatcher) dispatch(ctx context.Context, key string, n domain.Notification) {
	// The durable append happens even when no live listener is registered.
	if err := d.journal.Append(ctx, key, n); err != nil {
		d.log.Error("notification log append failed", "subscriber", key, "notification_id", n.ID, "err", err)
	}
	d.registry.deliver(key, n)
}
