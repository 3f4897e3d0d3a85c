package favorites

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chocodelight/storefront/internal/catalog"
)

var ErrAlreadyFavorite = errors.New("product already in favorites")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Add(ctx context.Context, userID, productID string) error {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.ErrNotFound
	}

	ct, err := r.DB.Exec(ctx, `
		INSERT INTO favorites(user_id, product_id) VALUES ($1,$2)
		ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrAlreadyFavorite
	}
	return nil
}

func (r *Repo) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM favorites WHERE user_id=$1 AND product_id=$2`, userID, productID)
	return err
}

// List returns the favorited products themselves, newest first.
func (r *Repo) List(ctx context.Context, userID string) ([]catalog.Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.name, p.description, p.price, p.original_price, p.category,
			p.ingredients, p.calories, p.fat, p.sugar, p.protein, p.images,
			p.rating, p.review_count, p.in_stock, p.stock_quantity, p.featured,
			p.created_at, p.updated_at
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id=$1
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice, &p.Category,
			&p.Ingredients, &p.Nutrition.Calories, &p.Nutrition.Fat, &p.Nutrition.Sugar,
			&p.Nutrition.Protein, &p.Images,
			&p.Rating, &p.ReviewCount, &p.InStock, &p.StockQuantity, &p.Featured,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
