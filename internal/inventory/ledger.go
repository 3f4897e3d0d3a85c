package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chocodelight/storefront/internal/catalog"
)

// ErrInsufficientStock is the sentinel every *StockError unwraps to.
var ErrInsufficientStock = errors.New("insufficient stock")

type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Shortfall struct {
	ProductID string `json:"productId"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockError reports every line that could not be reserved, not just the first.
type StockError struct {
	Shortfalls []Shortfall
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", s.ProductID, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger mutates product stock. Reserve and Release are meant to run inside
// the caller's transaction so an order and its stock movement commit together.
type Ledger struct{ DB Querier }

// Reserve decrements stock for every line or none of them: any shortfall
// returns a *StockError and the caller's transaction must roll back. Row locks
// serialize concurrent reservations for the same product, and the conditional
// UPDATE guards stock_quantity >= quantity so stock can never go negative.
func (l *Ledger) Reserve(ctx context.Context, lines []Line) error {
	var short []Shortfall

	for _, ln := range lines {
		var stock int
		err := l.DB.QueryRow(ctx,
			`SELECT stock_quantity FROM products WHERE id=$1 FOR UPDATE`, ln.ProductID).Scan(&stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", catalog.ErrNotFound, ln.ProductID)
		}
		if err != nil {
			return err
		}
		if stock < ln.Quantity {
			short = append(short, Shortfall{ProductID: ln.ProductID, Requested: ln.Quantity, Available: stock})
			continue
		}

		ct, err := l.DB.Exec(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - $2,
			    in_stock = stock_quantity - $2 > 0,
			    updated_at = now()
			WHERE id=$1 AND stock_quantity >= $2`, ln.ProductID, ln.Quantity)
		if err != nil {
			return err
		}
		if ct.RowsAffected() != 1 {
			short = append(short, Shortfall{ProductID: ln.ProductID, Requested: ln.Quantity, Available: stock})
		}
	}

	if len(short) > 0 {
		return &StockError{Shortfalls: short}
	}
	return nil
}

// Release puts reserved stock back, e.g. when an order is cancelled.
func (l *Ledger) Release(ctx context.Context, lines []Line) error {
	for _, ln := range lines {
		_, err := l.DB.Exec(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity + $2,
			    in_stock = TRUE,
			    updated_at = now()
			WHERE id=$1`, ln.ProductID, ln.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}
