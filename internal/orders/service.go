package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chocodelight/storefront/internal/catalog"
	"github.com/chocodelight/storefront/internal/inventory"
)

type ItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Catalog interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

// Store is the persistence boundary; the pgx Repo implements it, tests swap in
// an in-memory fake.
type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, orderID string) (*Order, error)
	GetForUser(ctx context.Context, userID, orderID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Cancel(ctx context.Context, userID, orderID string, now time.Time, window time.Duration) (*Order, error)
	SetStatus(ctx context.Context, orderID string, status Status, now time.Time) (*Order, Status, error)
}

// Service orchestrates the order lifecycle: validation and price freezing on
// placement, predicate-gated cancellation, unconstrained admin status updates.
type Service struct {
	Catalog Catalog
	Store   Store
	Window  time.Duration
	Log     *logrus.Logger
	Now     func() time.Time // defaults to time.Now
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) window() time.Duration {
	if s.Window > 0 {
		return s.Window
	}
	return DefaultCancelWindow
}

// Place validates every line before any stock moves, freezes current catalog
// prices into the order, and hands the result to the store, which reserves
// stock and persists the order atomically.
func (s *Service) Place(ctx context.Context, userID string, items []ItemInput, addr Address, method PaymentMethod) (*Order, error) {
	if userID == "" {
		return nil, &ValidationError{Reason: "missing user"}
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}
	if !addr.Complete() {
		return nil, &ValidationError{Reason: "shipping address incomplete"}
	}
	if !ValidPaymentMethod(method) {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown payment method %q", method)}
	}

	// merge duplicate lines so the stock check sees the real requested total
	qty := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for _, in := range items {
		if in.Quantity <= 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("invalid quantity for product %s", in.ProductID)}
		}
		if _, seen := qty[in.ProductID]; !seen {
			ids = append(ids, in.ProductID)
		}
		qty[in.ProductID] += in.Quantity
	}

	products, err := s.Catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var (
		orderItems []Item
		short      []inventory.Shortfall
		total      float64
	)
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
		}
		n := qty[id]
		if p.StockQuantity < n {
			short = append(short, inventory.Shortfall{ProductID: id, Requested: n, Available: p.StockQuantity})
			continue
		}
		orderItems = append(orderItems, Item{ProductID: id, Name: p.Name, Quantity: n, Price: p.Price})
		total += p.Price * float64(n)
	}
	if len(short) > 0 {
		return nil, &inventory.StockError{Shortfalls: short}
	}

	o := &Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           orderItems,
		Total:           total,
		Status:          StatusPending,
		CanCancel:       true,
		ShippingAddress: addr,
		PaymentMethod:   method,
		PaymentStatus:   PaymentPending,
		CreatedAt:       s.now(),
	}

	if err := s.Store.Create(ctx, o); err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"user_id":  userID,
		"items":    len(o.Items),
		"total":    o.Total,
	}).Info("order placed")
	return o, nil
}

// Cancel runs the customer-initiated cancellation. Eligibility is decided by
// the store against the locked row; on success stock is already released.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.Store.Cancel(ctx, userID, orderID, s.now(), s.window())
	if err != nil {
		return nil, err
	}
	s.Log.WithFields(logrus.Fields{"order_id": orderID, "user_id": userID}).Info("order cancelled")
	return o, nil
}

// SetStatus applies an admin override. The target only has to be a known
// status; sequence is not enforced.
func (s *Service) SetStatus(ctx context.Context, orderID string, status Status) (*Order, Status, error) {
	if !ValidStatus(status) {
		return nil, "", &ValidationError{Reason: fmt.Sprintf("unknown status %q", status)}
	}
	o, old, err := s.Store.SetStatus(ctx, orderID, status, s.now())
	if err != nil {
		return nil, "", err
	}
	o.RefreshCancellable(s.now(), s.window())
	s.Log.WithFields(logrus.Fields{"order_id": orderID, "from": old, "to": status}).Info("order status updated")
	return o, old, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.RefreshCancellable(s.now(), s.window())
	return o, nil
}

func (s *Service) GetForUser(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.Store.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	o.RefreshCancellable(s.now(), s.window())
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	out, err := s.Store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range out {
		out[i].RefreshCancellable(now, s.window())
	}
	return out, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	out, err := s.Store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range out {
		out[i].RefreshCancellable(now, s.window())
	}
	return out, nil
}
