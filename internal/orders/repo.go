package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocodelight/storefront/internal/inventory"
)

const orderColumns = `id, user_id, status, can_cancel, total,
	street, city, state, zip_code, country,
	payment_method, payment_status,
	created_at, cancelled_at, packed_at, shipped_at, delivered_at`

type Repo struct{ DB *pgxpool.Pool }

// Create persists the order and reserves stock in one transaction: if any line
// cannot be covered the whole thing rolls back and no stock moves.
func (r *Repo) Create(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	led := &inventory.Ledger{DB: tx}
	if err := led.Reserve(ctx, lines(o.Items)); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, status, can_cancel, total,
			street, city, state, zip_code, country,
			payment_method, payment_status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		o.ID, o.UserID, o.Status, o.CanCancel, o.Total,
		o.ShippingAddress.Street, o.ShippingAddress.City, o.ShippingAddress.State,
		o.ShippingAddress.ZipCode, o.ShippingAddress.Country,
		o.PaymentMethod, o.PaymentStatus, o.CreatedAt)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, name, quantity, price)
			VALUES ($1,$2,$3,$4,$5)`,
			o.ID, it.ProductID, it.Name, it.Quantity, it.Price)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repo) Get(ctx context.Context, orderID string) (*Order, error) {
	return r.getOne(ctx, r.DB, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, orderID)
}

func (r *Repo) GetForUser(ctx context.Context, userID, orderID string) (*Order, error) {
	return r.getOne(ctx, r.DB, `SELECT `+orderColumns+` FROM orders WHERE id=$1 AND user_id=$2`, orderID, userID)
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`)
}

// Cancel re-evaluates the cancellation predicate against the locked row, so a
// racing admin "packed" update or an elapsed window loses no matter which
// request arrives first. Stock release and the status flip commit together.
func (r *Repo) Cancel(ctx context.Context, userID, orderID string, now time.Time, window time.Duration) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := r.getOne(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 AND user_id=$2 FOR UPDATE`, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !o.CancellableAt(now, window) {
		return nil, fmt.Errorf("%w: %s", ErrNotCancellable, orderID)
	}

	led := &inventory.Ledger{DB: tx}
	if err := led.Release(ctx, lines(o.Items)); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders SET status=$2, can_cancel=FALSE, cancelled_at=$3 WHERE id=$1`,
		orderID, StatusCancelled, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	o.Status = StatusCancelled
	o.CanCancel = false
	o.CancelledAt = &now
	return o, nil
}

// SetStatus is the admin override. It does not consult CanTransition: skipping
// ahead or moving backward is allowed on purpose. Packed stamps packed_at and
// kills cancellation; shipped/delivered stamp their timestamps.
func (r *Repo) SetStatus(ctx context.Context, orderID string, status Status, now time.Time) (*Order, Status, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := r.getOne(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, orderID)
	if err != nil {
		return nil, "", err
	}
	old := o.Status

	o.Status = status
	switch status {
	case StatusPacked:
		o.PackedAt = &now
		o.CanCancel = false
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders SET status=$2, can_cancel=$3, packed_at=$4, shipped_at=$5, delivered_at=$6
		WHERE id=$1`,
		orderID, o.Status, o.CanCancel, o.PackedAt, o.ShippedAt, o.DeliveredAt)
	if err != nil {
		return nil, "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, "", err
	}
	return o, old, nil
}

func (r *Repo) getOne(ctx context.Context, q inventory.Querier, sql string, args ...any) (*Order, error) {
	var (
		o    Order
		addr Address
	)
	err := q.QueryRow(ctx, sql, args...).Scan(
		&o.ID, &o.UserID, &o.Status, &o.CanCancel, &o.Total,
		&addr.Street, &addr.City, &addr.State, &addr.ZipCode, &addr.Country,
		&o.PaymentMethod, &o.PaymentStatus,
		&o.CreatedAt, &o.CancelledAt, &o.PackedAt, &o.ShippedAt, &o.DeliveredAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.ShippingAddress = addr

	o.Items, err = loadItems(ctx, q, o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var (
			o    Order
			addr Address
		)
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Status, &o.CanCancel, &o.Total,
			&addr.Street, &addr.City, &addr.State, &addr.ZipCode, &addr.Country,
			&o.PaymentMethod, &o.PaymentStatus,
			&o.CreatedAt, &o.CancelledAt, &o.PackedAt, &o.ShippedAt, &o.DeliveredAt,
		); err != nil {
			return nil, err
		}
		o.ShippingAddress = addr
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Items, err = loadItems(ctx, r.DB, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func loadItems(ctx context.Context, q inventory.Querier, orderID string) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT product_id, name, quantity, price FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func lines(items []Item) []inventory.Line {
	out := make([]inventory.Line, 0, len(items))
	for _, it := range items {
		out = append(out, inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
