package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/chocodelight/storefront/internal/cart"
	kafkax "github.com/chocodelight/storefront/internal/kafka"
	"github.com/chocodelight/storefront/internal/orders"
	"github.com/chocodelight/storefront/internal/redisx"
)

type CreateOrderReq struct {
	Items           []orders.ItemInput   `json:"items"`
	ShippingAddress orders.Address       `json:"shippingAddress"`
	PaymentMethod   orders.PaymentMethod `json:"paymentMethod"`
}

type UpdateStatusReq struct {
	Status orders.Status `json:"status"`
}

type OrdersHandler struct {
	Svc           *orders.Service
	Cart          *cart.Service
	Created       *kafkax.Producer
	Cancelled     *kafkax.Producer
	StatusChanged *kafkax.Producer
	Redis         *redis.Client
	Service       string
	Log           *logrus.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.create)
	r.Get("/orders/my-orders", h.myOrders)
	r.Get("/orders/{id}", h.get)
	r.Get("/orders/{id}/status", h.getStatus)
	r.Patch("/orders/{id}/cancel", h.cancel)
	r.Get("/orders/admin/all", h.adminAll)
	r.Patch("/orders/admin/{id}/status", h.adminStatus)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.Place(ctx, uid, req.Items, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		writeError(w, err)
		return
	}

	// checkout consumed the cart
	if _, err := h.Cart.Clear(ctx, uid); err != nil {
		h.Log.WithError(err).WithField("user_id", uid).Warn("cart clear after checkout failed")
	}

	h.cacheStatus(ctx, o)
	h.publish(h.Created, orders.EventOrderCreated, o.ID, r.Header.Get("X-Request-Id"),
		orders.OrderCreatedPayload{
			OrderID:       o.ID,
			UserID:        o.UserID,
			Items:         o.Items,
			Total:         o.Total,
			PaymentMethod: o.PaymentMethod,
		})

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) myOrders(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Svc.ListByUser(ctx, uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Svc.GetForUser(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getStatus serves the lightweight status poll from the Redis cache when it
// can, falling back to the store.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}

	o, err := h.Svc.Get(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, statusBody(o))
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.Cancel(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(ctx, o)
	h.publish(h.Cancelled, orders.EventOrderCancelled, o.ID, r.Header.Get("X-Request-Id"),
		orders.OrderCancelledPayload{
			OrderID:     o.ID,
			UserID:      o.UserID,
			Items:       o.Items,
			CancelledAt: *o.CancelledAt,
		})

	writeJSON(w, http.StatusOK, map[string]any{"message": "Order cancelled successfully", "order": o})
}

func (h *OrdersHandler) adminAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Svc.ListAll(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) adminStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, old, err := h.Svc.SetStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(ctx, o)
	h.publish(h.StatusChanged, orders.EventOrderStatusChanged, o.ID, r.Header.Get("X-Request-Id"),
		orders.OrderStatusChangedPayload{
			OrderID:   o.ID,
			UserID:    o.UserID,
			OldStatus: old,
			NewStatus: o.Status,
		})

	writeJSON(w, http.StatusOK, o)
}

func statusBody(o *orders.Order) map[string]any {
	return map[string]any{"status": o.Status, "canCancel": o.CanCancel}
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, o *orders.Order) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	b, _ := json.Marshal(statusBody(o))
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publish(p *kafkax.Producer, eventType, orderID, traceID string, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
