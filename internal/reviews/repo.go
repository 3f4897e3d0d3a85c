package reviews

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocodelight/storefront/internal/catalog"
)

var (
	ErrDuplicate     = errors.New("product already reviewed")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repo struct{ DB *pgxpool.Pool }

// execQuerier is the slice of pgx.Tx that insertReview needs.
type execQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// insertReview relies on the (user_id, product_id) unique constraint for the
// one-review-per-product rule; concurrent inserts race on the index, not on a
// prior read.
func insertReview(ctx context.Context, q execQuerier, rev *Review) error {
	ct, err := q.Exec(ctx, `
		INSERT INTO reviews(id, user_id, product_id, rating, comment, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id, product_id) DO NOTHING`,
		rev.ID, rev.UserID, rev.ProductID, rev.Rating, rev.Comment, rev.CreatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

// Add inserts the review and recomputes the product's aggregate rating and
// review count in the same transaction, so catalog reads never see one
// without the other. One review per (user, product).
func (r *Repo) Add(ctx context.Context, userID, productID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, catalog.ErrNotFound
	}

	rev := &Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := insertReview(ctx, tx, rev); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE products p SET
			rating = agg.avg_rating,
			review_count = agg.n
		FROM (
			SELECT AVG(rating)::float8 AS avg_rating, COUNT(*) AS n
			FROM reviews WHERE product_id=$1
		) agg
		WHERE p.id=$1`, productID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rev, nil
}

func (r *Repo) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, product_id, rating, comment, created_at
		FROM reviews WHERE product_id=$1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.UserID, &rev.ProductID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}
