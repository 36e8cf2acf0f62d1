package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"order-service/shared/pkg/models"
)

type OrdersPG struct{ DB *pgxpool.Pool }

// Create persists the order and its product sequence in one transaction and
// returns the assigned id.
func (r *OrdersPG) Create(ctx context.Context, o models.Order) (int64, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, `
		insert into orders(user_id, email, total_price, created_at)
		values ($1, $2, $3, $4)
		returning id
	`, o.UserID, o.Email, o.TotalPrice, o.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}

	for pos, productID := range o.ProductIDs {
		_, err = tx.Exec(ctx, `
			insert into order_items(order_id, position, product_id)
			values ($1, $2, $3)
		`, id, pos, productID)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}
