package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	kafkax "github.com/chocodelight/storefront/internal/kafka"
	"github.com/chocodelight/storefront/internal/orders"
	"github.com/chocodelight/storefront/internal/redisx"
)

// Dedup remembers which event ids were already handled, so a replayed
// partition does not re-mail the customer. Redis backs it in production;
// tests use an in-memory fake.
type Dedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type RedisDedup struct {
	RDB     *redis.Client
	Service string
}

func (d *RedisDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	return redisx.Exists(ctx, d.RDB, fmt.Sprintf(redisx.KeyDedup, d.Service, eventID))
}

func (d *RedisDedup) Mark(ctx context.Context, eventID string) error {
	return d.RDB.Set(ctx, fmt.Sprintf(redisx.KeyDedup, d.Service, eventID), "1", redisx.TTLDedup).Err()
}

// Service turns order events into customer notifications. Delivery is
// simulated: rendered mail is logged, never sent.
type Service struct {
	Dedup Dedup
	Log   *logrus.Logger
}

// HandleOrderEvent is the consumer handler for all order topics.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	var (
		userID, subject, body string
		err                   error
	)
	switch env.EventType {
	case orders.EventOrderCreated:
		var p orders.OrderCreatedPayload
		if p, err = kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload); err != nil {
			return err
		}
		userID = p.UserID
		subject, body = RenderConfirmation(p)
	case orders.EventOrderCancelled:
		var p orders.OrderCancelledPayload
		if p, err = kafkax.UnwrapPayload[orders.OrderCancelledPayload](env.Payload); err != nil {
			return err
		}
		userID = p.UserID
		subject, body = RenderCancellation(p)
	case orders.EventOrderStatusChanged:
		var p orders.OrderStatusChangedPayload
		if p, err = kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload); err != nil {
			return err
		}
		userID = p.UserID
		subject, body = RenderStatusChange(p)
	default:
		return nil // not ours
	}

	if seen, _ := s.Dedup.Seen(ctx, env.EventID); seen {
		return nil
	}
	_ = s.Dedup.Mark(ctx, env.EventID)

	s.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"order_id": env.CorrelationID,
		"event":    env.EventType,
		"subject":  subject,
	}).Info("email dispatched (simulated)")
	s.Log.Debug(body)
	return nil
}

func RenderConfirmation(p orders.OrderCreatedPayload) (subject, body string) {
	subject = fmt.Sprintf("Order Confirmation - ChocoDelight (#%s)", shortID(p.OrderID))

	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order!\n\n")
	for _, it := range p.Items {
		fmt.Fprintf(&b, "  %d x %s — $%.2f\n", it.Quantity, it.Name, it.Price*float64(it.Quantity))
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f\n", p.Total)
	fmt.Fprintf(&b, "Payment method: %s\n", p.PaymentMethod)
	fmt.Fprintf(&b, "\nYou can cancel this order within a few minutes of placing it.\n")
	fmt.Fprintf(&b, "Best regards,\nChocoDelight Team\n")
	return subject, b.String()
}

func RenderCancellation(p orders.OrderCancelledPayload) (subject, body string) {
	subject = fmt.Sprintf("Order Cancelled - ChocoDelight (#%s)", shortID(p.OrderID))

	var b strings.Builder
	fmt.Fprintf(&b, "Your order has been cancelled and any reserved items were returned to stock.\n")
	fmt.Fprintf(&b, "If a payment was recorded it will be refunded.\n")
	fmt.Fprintf(&b, "\nBest regards,\nChocoDelight Team\n")
	return subject, b.String()
}

func RenderStatusChange(p orders.OrderStatusChangedPayload) (subject, body string) {
	subject = fmt.Sprintf("Order Update - ChocoDelight (#%s)", shortID(p.OrderID))

	var b strings.Builder
	fmt.Fprintf(&b, "Your order is now %s.\n", p.NewStatus)
	if p.NewStatus == orders.StatusShipped {
		fmt.Fprintf(&b, "It is on its way to you!\n")
	}
	fmt.Fprintf(&b, "\nBest regards,\nChocoDelight Team\n")
	return subject, b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
