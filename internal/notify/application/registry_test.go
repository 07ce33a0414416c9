package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/restroline/order-gateway/internal/notify/domain"
)

func TestRegisterReplacesPreviousCallback(t *testing.T) {
	r := NewRegistry()

	var first, second int
	r.Register("u1", func(domain.Notification) { first++ })
	r.Register("u1", func(domain.Notification) { second++ })

	r.deliver("u1", domain.New(domain.SeverityInfo, "t", "m", ""))

	// Only the most recent callback receives notifications.
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	r := NewRegistry()

	var calls int
	r.Register("u1", func(domain.Notification) { calls++ })
	r.Unregister("u1")

	r.deliver("u1", domain.New(domain.SeverityInfo, "t", "m", ""))
	assert.Equal(t, 0, calls)
}

func TestUnregisterAbsentKeyIsNoOp(t *testing.T) {
	r := NewRegistry()
	assert.NotPanics(t, func() { r.Unregister("nobody") })
}

func TestWildcardReceivesEveryNotification(t *testing.T) {
	r := NewRegistry()

	var owner, wildcard int
	r.Register("u1", func(domain.Notification) { owner++ })
	r.Register(KeyAllUsers, func(domain.Notification) { wildcard++ })

	r.deliver("u1", domain.New(domain.SeverityInfo, "t", "m", ""))
	r.deliver("u2", domain.New(domain.SeverityInfo, "t", "m", ""))

	assert.Equal(t, 1, owner)
	assert.Equal(t, 2, wildcard)
}

func TestWildcardNotDeliveredTwice(t *testing.T) {
	r := NewRegistry()

	var calls int
	r.Register(KeyAllUsers, func(domain.Notification) { calls++ })

	r.deliver(KeyAllUsers, domain.New(domain.SeverityInfo, "t", "m", ""))
	assert.Equal(t, 1, calls)
}
