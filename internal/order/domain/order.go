package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// transitions encodes the forward-only status graph. Cancellation is only
// reachable before the kitchen starts preparing.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderType string

const (
	TypePickup OrderType = "pickup"
)

type Customization struct {
	Name            string `json:"name"`
	PriceDeltaCents int64  `json:"price_delta_cents"`
}

type CartItem struct {
	MenuItemID     string          `json:"menu_item_id"`
	Name           string          `json:"name"`
	Quantity       int             `json:"quantity"`
	UnitPriceCents int64           `json:"unit_price_cents"`
	Customizations []Customization `json:"customizations,omitempty"`
	TotalCents     int64           `json:"total_cents"`
}

// LineTotal returns quantity x (base price + customization deltas).
func (i CartItem) LineTotal() int64 {
	per := i.UnitPriceCents
	for _, c := range i.Customizations {
		per += c.PriceDeltaCents
	}
	return int64(i.Quantity) * per
}

// Contact is the customer snapshot captured at order time, independent of
// any live user profile.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Order struct {
	ID                  string      `json:"id"`
	UserID              string      `json:"user_id"`
	Status              OrderStatus `json:"status"`
	SubtotalCents       int64       `json:"subtotal_cents"`
	TaxCents            int64       `json:"tax_cents"`
	FeesCents           int64       `json:"fees_cents"`
	TipCents            int64       `json:"tip_cents"`
	TotalCents          int64       `json:"total_cents"`
	Items               []CartItem  `json:"items"`
	Type                OrderType   `json:"type"`
	PickupLocation      string      `json:"pickup_location"`
	ScheduledAt         *time.Time  `json:"scheduled_at,omitempty"`
	SpecialInstructions string      `json:"special_instructions,omitempty"`
	EstimatedTime       string      `json:"estimated_time,omitempty"`
	Contact             Contact     `json:"contact"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// NewID embeds the creation timestamp so ids remain distinguishable when
// sorted or read off logs.
func NewID() string {
	return fmt.Sprintf("ord-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func NewOrder(userID string, items []CartItem, taxCents, feesCents, tipCents int64, contact Contact) Order {
	var subtotal int64
	for i := range items {
		items[i].TotalCents = items[i].LineTotal()
		subtotal += items[i].TotalCents
	}
	now := time.Now().UTC()
	return Order{
		ID:            NewID(),
		UserID:        userID,
		Status:        StatusPending,
		SubtotalCents: subtotal,
		TaxCents:      taxCents,
		FeesCents:     feesCents,
		TipCents:      tipCents,
		TotalCents:    subtotal + taxCents + feesCents + tipCents,
		Items:         items,
		Type:          TypePickup,
		Contact:       contact,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
