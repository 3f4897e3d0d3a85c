package cart

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/chocodelight/storefront/internal/catalog"
)

type ProductSource interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Snapshot totals are always recomputed from live catalog prices; only orders
// freeze prices.
type Snapshot struct {
	Items []Line  `json:"items"`
	Total float64 `json:"total"`
}

type Service struct {
	Store   Store
	Catalog ProductSource
	Log     *logrus.Logger
}

// Add merges into an existing line (quantity adds up) after checking the
// product actually exists. qty <= 0 defaults to 1.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) (Snapshot, error) {
	if qty <= 0 {
		qty = 1
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return Snapshot{}, err
	}
	if err := s.Store.Incr(ctx, userID, productID, qty); err != nil {
		return Snapshot{}, err
	}
	s.Log.WithFields(logrus.Fields{"user_id": userID, "product_id": productID, "qty": qty}).Debug("cart line added")
	return s.Snapshot(ctx, userID)
}

// SetQuantity with qty <= 0 removes the line.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, qty int) (Snapshot, error) {
	if qty <= 0 {
		return s.Remove(ctx, userID, productID)
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return Snapshot{}, err
	}
	if err := s.Store.Set(ctx, userID, productID, qty); err != nil {
		return Snapshot{}, err
	}
	return s.Snapshot(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) (Snapshot, error) {
	if err := s.Store.Remove(ctx, userID, productID); err != nil {
		return Snapshot{}, err
	}
	return s.Snapshot(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) (Snapshot, error) {
	if err := s.Store.Clear(ctx, userID); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Items: []Line{}}, nil
}

// Snapshot joins the stored quantities with current catalog data. Lines whose
// product disappeared from the catalog are silently dropped.
func (s *Service) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	quantities, err := s.Store.Items(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	ids := make([]string, 0, len(quantities))
	for pid := range quantities {
		ids = append(ids, pid)
	}
	sort.Strings(ids)

	products, err := s.Catalog.GetByIDs(ctx, ids)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Items: []Line{}}
	for _, pid := range ids {
		p, ok := products[pid]
		if !ok {
			continue
		}
		n := quantities[pid]
		snap.Items = append(snap.Items, Line{Product: p, Quantity: n})
		snap.Total += p.Price * float64(n)
	}
	return snap, nil
}

func (s *Service) ensureProduct(ctx context.Context, productID string) error {
	ps, err := s.Catalog.GetByIDs(ctx, []string{productID})
	if err != nil {
		return err
	}
	if _, ok := ps[productID]; !ok {
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, productID)
	}
	return nil
}
