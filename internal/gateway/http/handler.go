package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/restroline/order-gateway/internal/gateway"
	notifydomain "github.com/restroline/order-gateway/internal/notify/domain"
	orderapp "github.com/restroline/order-gateway/internal/order/application"
	orderdomain "github.com/restroline/order-gateway/internal/order/domain"
	"github.com/restroline/order-gateway/pkg/idempotency"
)

type Handler struct {
	log    *slog.Logger
	gw     *gateway.Gateway
	idem   *idempotency.Store
	tracer trace.Tracer
}

// NewHandler builds the gateway's HTTP boundary. idem may be nil when no
// redis is configured; Idempotency-Key headers are then ignored.
func NewHandler(log *slog.Logger, gw *gateway.Gateway, idem *idempotency.Store) *Handler {
	return &Handler{
		log:    log,
		gw:     gw,
		idem:   idem,
		tracer: otel.Tracer("gateway-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Delete("/orders", h.clearOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Get("/users/{userID}/orders", h.userOrders)
	r.Get("/users/{userID}/notifications", h.userNotifications)
	r.Get("/notifications/stream", h.stream)

	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	// Checkout validates the order before calling; the gateway only fills
	// in store-assigned fields.
	var o orderdomain.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if o.ID == "" {
		o.ID = orderdomain.NewID()
	}
	if o.Status == "" {
		o.Status = orderdomain.StatusPending
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.Before(o.CreatedAt) {
		o.UpdatedAt = o.CreatedAt
	}

	if key := r.Header.Get("Idempotency-Key"); key != "" && h.idem != nil {
		seen, err := h.idem.Seen(ctx, h.idem.Key("orders", key))
		if err != nil {
			h.log.Error("idempotency check failed", "err", err)
		} else if seen {
			h.log.Info("duplicate order submission skipped", "idempotency_key", key)
			writeJSON(w, http.StatusAccepted, map[string]any{"order_id": o.ID, "duplicate": true})
			return
		}
	}

	if err := h.gw.AddOrder(ctx, o); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"order_id": o.ID, "status": o.Status})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gw.GetAllOrders())
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.gw.GetOrder(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type updateStatusReq struct {
	Status            orderdomain.OrderStatus `json:"status"`
	OperatorTriggered bool                    `json:"operator_triggered"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	err := h.gw.UpdateOrderStatus(ctx, chi.URLParam(r, "id"), req.Status, req.OperatorTriggered)
	switch {
	case errors.Is(err, orderapp.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, orderapp.ErrUnknownStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, orderapp.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"order_id": chi.URLParam(r, "id"), "status": req.Status})
	}
}

// clearOrders is destructive and irreversible, so it insists on an
// explicit confirm flag from the admin UI.
func (h *Handler) clearOrders(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		http.Error(w, "confirm=true required", http.StatusPreconditionRequired)
		return
	}
	if err := h.gw.ClearAllOrders(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) userOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gw.GetUserOrders(chi.URLParam(r, "userID")))
}

func (h *Handler) userNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.gw.Notifications(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []notifydomain.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// stream pushes live notifications over SSE. The connection owns its
// listener registration: registering the same key from a second
// connection replaces the first, and disconnecting unregisters.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key required", http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Dispatch is synchronous; buffer a little and drop on overflow so a
	// slow consumer never stalls the gateway.
	ch := make(chan notifydomain.Notification, 16)
	h.gw.RegisterListener(key, func(n notifydomain.Notification) {
		select {
		case ch <- n:
		default:
			h.log.Warn("notification dropped on slow stream", "subscriber", key, "notification_id", n.ID)
		}
	})
	defer h.gw.UnregisterListener(key)

	for {
		select {
		case <-r.Context().Done():
			return
		case n := <-ch:
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
