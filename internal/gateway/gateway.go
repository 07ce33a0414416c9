package gateway

import (
	"context"
	"log/slog"

	notifyapp "github.com/restroline/order-gateway/internal/notify/application"
	notifydomain "github.com/restroline/order-gateway/internal/notify/domain"
	orderapp "github.com/restroline/order-gateway/internal/order/application"
	orderdomain "github.com/restroline/order-gateway/internal/order/domain"
)

// Feed receives order lifecycle events after each successful mutation.
// Optional; a nil feed disables publishing without touching gateway
// semantics.
type Feed interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// Gateway is the single entry point collaborators use: the checkout flow,
// the admin panel, and per-user notification feeds all go through it. Every
// mutating call has persisted before it returns.
type Gateway struct {
	log        *slog.Logger
	store      *orderapp.Store
	registry   *notifyapp.Registry
	dispatcher *notifyapp.Dispatcher
	journal    notifyapp.Log
	feed       Feed
}

func New(log *slog.Logger, store *orderapp.Store, registry *notifyapp.Registry, dispatcher *notifyapp.Dispatcher, journal notifyapp.Log, feed Feed) *Gateway {
	return &Gateway{
		log:        log,
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		journal:    journal,
		feed:       feed,
	}
}

func (g *Gateway) AddOrder(ctx context.Context, o orderdomain.Order) error {
	if err := g.store.Add(ctx, o); err != nil {
		return err
	}
	g.dispatcher.OrderReceived(ctx, o)
	g.publish(ctx, "OrderPlaced", o.ID, orderdomain.OrderPlaced{
		OrderID:    o.ID,
		UserID:     o.UserID,
		TotalCents: o.TotalCents,
		ItemCount:  len(o.Items),
	})
	return nil
}

// UpdateOrderStatus applies a transition and notifies per the dispatch
// policy. ErrNotFound and ErrInvalidTransition are returned for callers
// that want to check them; ignoring them reproduces the historical no-op
// behavior.
func (g *Gateway) UpdateOrderStatus(ctx context.Context, orderID string, status orderdomain.OrderStatus, operatorTriggered bool) error {
	updated, prev, err := g.store.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return err
	}
	g.dispatcher.StatusChanged(ctx, updated, operatorTriggered)
	g.publish(ctx, "OrderStatusChanged", updated.ID, orderdomain.OrderStatusChanged{
		OrderID:           updated.ID,
		UserID:            updated.UserID,
		From:              prev,
		To:                updated.Status,
		OperatorTriggered: operatorTriggered,
	})
	return nil
}

func (g *Gateway) GetAllOrders() []orderdomain.Order {
	return g.store.All()
}

func (g *Gateway) GetUserOrders(userID string) []orderdomain.Order {
	return g.store.ForUser(userID)
}

func (g *Gateway) GetOrder(orderID string) (orderdomain.Order, bool) {
	return g.store.Get(orderID)
}

func (g *Gateway) ClearAllOrders(ctx context.Context) error {
	return g.store.Clear(ctx)
}

func (g *Gateway) RegisterListener(key string, fn notifyapp.Listener) {
	g.registry.Register(key, fn)
}

func (g *Gateway) UnregisterListener(key string) {
	g.registry.Unregister(key)
}

// Notifications returns the subscriber's durable log, newest first.
func (g *Gateway) Notifications(ctx context.Context, key string) ([]notifydomain.Notification, error) {
	return g.journal.Recent(ctx, key)
}

func (g *Gateway) publish(ctx context.Context, eventType, key string, payload any) {
	if g.feed == nil {
		return
	}
	if err := g.feed.Publish(ctx, eventType, key, payload); err != nil {
		g.log.Error("feed publish failed", "event_type", eventType, "key", key, "err", err)
	}
}
