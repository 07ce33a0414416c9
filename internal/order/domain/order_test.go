package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusGraph(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPreparing, false},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusPreparing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusReady, false},
		{StatusPreparing, StatusReady, true},
		{StatusPreparing, StatusCancelled, false},
		{StatusReady, StatusCompleted, true},
		{StatusReady, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusReady.Terminal())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPreparing.Valid())
	assert.False(t, OrderStatus("shipped").Valid())
}

func TestNewOrderTotals(t *testing.T) {
	items := []CartItem{
		{
			MenuItemID:     "margherita",
			Name:           "Margherita",
			Quantity:       2,
			UnitPriceCents: 1200,
			Customizations: []Customization{
				{Name: "extra cheese", PriceDeltaCents: 150},
				{Name: "no basil", PriceDeltaCents: -50},
			},
		},
		{MenuItemID: "cola", Name: "Cola", Quantity: 1, UnitPriceCents: 300},
	}

	o := NewOrder("u1", items, 250, 100, 400, Contact{Name: "Dana", Phone: "555-0101", Email: "dana@example.com"})

	// 2 x (1200 + 150 - 50) + 300
	assert.Equal(t, int64(2600), o.Items[0].TotalCents)
	assert.Equal(t, int64(300), o.Items[1].TotalCents)
	assert.Equal(t, int64(2900), o.SubtotalCents)
	assert.Equal(t, int64(2900+250+100+400), o.TotalCents)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, TypePickup, o.Type)
	assert.NotEmpty(t, o.ID)
	assert.False(t, o.UpdatedAt.Before(o.CreatedAt))
}
