package cart_test

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/chocodelight/storefront/internal/cart"
	"github.com/chocodelight/storefront/internal/catalog"
)

type memStore struct {
	mu    sync.Mutex
	carts map[string]map[string]int
}

func newMemStore() *memStore { return &memStore{carts: map[string]map[string]int{}} }

func (s *memStore) hash(userID string) map[string]int {
	if s.carts[userID] == nil {
		s.carts[userID] = map[string]int{}
	}
	return s.carts[userID]
}

func (s *memStore) Items(_ context.Context, userID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for k, v := range s.carts[userID] {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Incr(_ context.Context, userID, productID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hash(userID)[productID] += delta
	return nil
}

func (s *memStore) Set(_ context.Context, userID, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hash(userID)[productID] = qty
	return nil
}

func (s *memStore) Remove(_ context.Context, userID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hash(userID), productID)
	return nil
}

func (s *memStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]catalog.Product
}

func (f *fakeCatalog) GetByIDs(_ context.Context, ids []string) (map[string]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]catalog.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func newService() (*cart.Service, *fakeCatalog) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	fc := &fakeCatalog{products: map[string]catalog.Product{
		"p-bonbon": {ID: "p-bonbon", Name: "Hazelnut Bonbon", Price: 2.50, StockQuantity: 50},
		"p-giftset": {ID: "p-giftset", Name: "Classic Gift Set", Price: 39.90, StockQuantity: 8},
	}}
	return &cart.Service{Store: newMemStore(), Catalog: fc, Log: log}, fc
}

func TestAdd_MergesLines(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p-bonbon", 2)
	require.NoError(t, err)
	snap, err := svc.Add(ctx, "u1", "p-bonbon", 3)
	require.NoError(t, err)

	require.Len(t, snap.Items, 1, "one line per (user, product)")
	require.Equal(t, 5, snap.Items[0].Quantity)
	require.InDelta(t, 5*2.50, snap.Total, 1e-9)
}

func TestAdd_DefaultsQuantityToOne(t *testing.T) {
	svc, _ := newService()

	snap, err := svc.Add(context.Background(), "u1", "p-giftset", 0)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Items[0].Quantity)
}

func TestAdd_UnknownProduct(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Add(context.Background(), "u1", "ghost", 1)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p-bonbon", 4)
	require.NoError(t, err)

	snap, err := svc.SetQuantity(ctx, "u1", "p-bonbon", 0)
	require.NoError(t, err)
	require.Empty(t, snap.Items)
	require.Zero(t, snap.Total)
}

func TestSnapshot_RecomputesFromLivePrices(t *testing.T) {
	svc, fc := newService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p-bonbon", 4)
	require.NoError(t, err)

	fc.mu.Lock()
	p := fc.products["p-bonbon"]
	p.Price = 3.00
	fc.products["p-bonbon"] = p
	fc.mu.Unlock()

	snap, err := svc.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.InDelta(t, 4*3.00, snap.Total, 1e-9, "cart totals follow the catalog, not cart-time prices")
}

func TestSnapshot_DropsVanishedProducts(t *testing.T) {
	svc, fc := newService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p-bonbon", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", "p-giftset", 1)
	require.NoError(t, err)

	fc.mu.Lock()
	delete(fc.products, "p-giftset")
	fc.mu.Unlock()

	snap, err := svc.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	require.Equal(t, "p-bonbon", snap.Items[0].Product.ID)
	require.InDelta(t, 2.50, snap.Total, 1e-9)
}

func TestClear(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p-bonbon", 2)
	require.NoError(t, err)

	snap, err := svc.Clear(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, snap.Items)

	snap, err = svc.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, snap.Items)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p-bonbon", 2)
	require.NoError(t, err)
	snap, err := svc.Snapshot(ctx, "u2")
	require.NoError(t, err)
	require.Empty(t, snap.Items)
}
