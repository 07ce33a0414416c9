package gateway

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifyapp "github.com/restroline/order-gateway/internal/notify/application"
	notifydomain "github.com/restroline/order-gateway/internal/notify/domain"
	notifymem "github.com/restroline/order-gateway/internal/notify/infrastructure/memory"
	orderapp "github.com/restroline/order-gateway/internal/order/application"
	orderdomain "github.com/restroline/order-gateway/internal/order/domain"
	ordermem "github.com/restroline/order-gateway/internal/order/infrastructure/memory"
)

type recordedEvent struct {
	eventType string
	key       string
}

type recordingFeed struct {
	events []recordedEvent
}

func (f *recordingFeed) Publish(ctx context.Context, eventType, key string, payload any) error {
	f.events = append(f.events, recordedEvent{eventType: eventType, key: key})
	return nil
}

func newTestGateway(t *testing.T) (*Gateway, *ordermem.Hub, *recordingFeed) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)

	hub := ordermem.NewHub()
	store := orderapp.NewStore(log, hub.Slot())
	require.NoError(t, store.Load(context.Background()))

	registry := notifyapp.NewRegistry()
	journal := notifymem.NewLog()
	dispatcher := notifyapp.NewDispatcher(log, registry, journal)
	feed := &recordingFeed{}

	return New(log, store, registry, dispatcher, journal, feed), hub, feed
}

func placedOrder(id, userID string) orderdomain.Order {
	now := time.Now().UTC()
	return orderdomain.Order{ID: id, UserID: userID, Status: orderdomain.StatusPending, CreatedAt: now, UpdatedAt: now}
}

func TestAddOrderNotifiesOwnerExactlyOnce(t *testing.T) {
	gw, _, feed := newTestGateway(t)
	ctx := context.Background()

	var got []notifydomain.Notification
	gw.RegisterListener("u1", func(n notifydomain.Notification) { got = append(got, n) })

	require.NoError(t, gw.AddOrder(ctx, placedOrder("o1", "u1")))

	require.Len(t, got, 1)
	assert.Equal(t, notifydomain.SeverityInfo, got[0].Severity)
	assert.Equal(t, "o1", got[0].OrderID)

	all := gw.GetAllOrders()
	require.Len(t, all, 1)
	assert.Equal(t, "o1", all[0].ID)

	require.Len(t, feed.events, 1)
	assert.Equal(t, "OrderPlaced", feed.events[0].eventType)
}

func TestAddOrderPersistsBeforeReturning(t *testing.T) {
	gw, hub, _ := newTestGateway(t)
	ctx := context.Background()

	require.NoError(t, gw.AddOrder(ctx, placedOrder("o1", "u1")))

	payload, err := hub.Slot().Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"o1"`)
}

func TestStatusUpdateSuppressionRules(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	ctx := context.Background()

	var got []notifydomain.Notification
	gw.RegisterListener("u1", func(n notifydomain.Notification) { got = append(got, n) })

	require.NoError(t, gw.AddOrder(ctx, placedOrder("o1", "u1")))
	got = nil

	// Automated confirmation stays silent; the operator-triggered retry
	// is impossible (already confirmed), so run the pair on two orders.
	require.NoError(t, gw.UpdateOrderStatus(ctx, "o1", orderdomain.StatusConfirmed, false))
	assert.Empty(t, got)

	require.NoError(t, gw.AddOrder(ctx, placedOrder("o2", "u1")))
	got = nil
	require.NoError(t, gw.UpdateOrderStatus(ctx, "o2", orderdomain.StatusConfirmed, true))
	require.Len(t, got, 1)
	assert.Equal(t, notifydomain.SeveritySuccess, got[0].Severity)
	assert.Equal(t, "o2", got[0].OrderID)
}

func TestReadyNotifiesEvenWhenAutomated(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	ctx := context.Background()

	require.NoError(t, gw.AddOrder(ctx, placedOrder("o1", "u1")))
	require.NoError(t, gw.UpdateOrderStatus(ctx, "o1", orderdomain.StatusConfirmed, false))
	require.NoError(t, gw.UpdateOrderStatus(ctx, "o1", orderdomain.StatusPreparing, false))

	var got []notifydomain.Notification
	gw.RegisterListener("u1", func(n notifydomain.Notification) { got = append(got, n) })

	require.NoError(t, gw.UpdateOrderStatus(ctx, "o1", orderdomain.StatusReady, false))

	require.Len(t, got, 1)
	assert.True(t, got[0].Persistent)
}

func TestUpdateUnknownOrderIsSafeNoOp(t *testing.T) {
	gw, _, feed := newTestGateway(t)
	ctx := context.Background()

	var got []notifydomain.Notification
	gw.RegisterListener(notifyapp.KeyAllUsers, func(n notifydomain.Notification) { got = append(got, n) })

	err := gw.UpdateOrderStatus(ctx, "nonexistent-id", orderdomain.StatusReady, true)
	assert.ErrorIs(t, err, orderapp.ErrNotFound)
	assert.Empty(t, got)
	assert.Empty(t, gw.GetAllOrders())
	assert.Empty(t, feed.events)
}

func TestListenerReplacementAndRemoval(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	ctx := context.Background()

	var old, current int
	gw.RegisterListener("u1", func(notifydomain.Notification) { old++ })
	gw.RegisterListener("u1", func(notifydomain.Notification) { current++ })

	require.NoError(t, gw.AddOrder(ctx, placedOrder("o1", "u1")))
	assert.Zero(t, old)
	assert.Equal(t, 1, current)

	gw.UnregisterListener("u1")
	require.NoError(t, gw.AddOrder(ctx, placedOrder("o2", "u1")))
	assert.Equal(t, 1, current)
}

func TestNotificationsSurviveWithoutListener(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	ctx := context.Background()

	require.NoError(t, gw.AddOrder(ctx, placedOrder("o1", "u1")))
	require.NoError(t, gw.UpdateOrderStatus(ctx, "o1", orderdomain.StatusConfirmed, true))

	missed, err := gw.Notifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, missed, 2)
	// Newest first.
	assert.Equal(t, "Order Confirmed", missed[0].Title)
	assert.Equal(t, "Order Received", missed[1].Title)
}

func TestClearAllOrders(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	ctx := context.Background()

	require.NoError(t, gw.AddOrder(ctx, placedOrder("o1", "u1")))
	require.NoError(t, gw.ClearAllOrders(ctx))
	assert.Empty(t, gw.GetAllOrders())

	require.NoError(t, gw.AddOrder(ctx, placedOrder("o2", "u2")))
	assert.Len(t, gw.GetAllOrders(), 1)
}

func TestGetUserOrders(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	ctx := context.Background()

	require.NoError(t, gw.AddOrder(ctx, placedOrder("o1", "u1")))
	require.NoError(t, gw.AddOrder(ctx, placedOrder("o2", "u2")))

	mine := gw.GetUserOrders("u1")
	require.Len(t, mine, 1)
	assert.Equal(t, "o1", mine[0].ID)

	o, ok := gw.GetOrder("o2")
	require.True(t, ok)
	assert.Equal(t, "u2", o.UserID)
}
