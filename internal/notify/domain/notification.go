package domain

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DefaultDurationMillis is how long an auto-dismissing notification stays
// on screen.
const DefaultDurationMillis = 5000

// Notification is a transient message describing a state change. Either it
// auto-dismisses after DurationMillis or, when Persistent, it stays until
// explicitly dismissed.
type Notification struct {
	ID             string    `json:"id"`
	Severity       Severity  `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	OrderID        string    `json:"order_id,omitempty"`
	DurationMillis int       `json:"duration_ms,omitempty"`
	Persistent     bool      `json:"persistent,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func New(severity Severity, title, message, orderID string) Notification {
	return Notification{
		ID:             uuid.NewString(),
		Severity:       severity,
		Title:          title,
		Message:        message,
		OrderID:        orderID,
		DurationMillis: DefaultDurationMillis,
		CreatedAt:      time.Now().UTC(),
	}
}

// NewPersistent builds a notification that must be dismissed manually.
func NewPersistent(severity Severity, title, message, orderID string) Notification {
	n := New(severity, title, message, orderID)
	n.DurationMillis = 0
	n.Persistent = true
	return n
}
