package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"order-service/shared/pkg/models"
)

type ProductsPG struct{ DB *pgxpool.Pool }

func (r *ProductsPG) List(ctx context.Context, skip, limit int) ([]models.Product, error) {
	rows, err := r.DB.Query(ctx, `
		select id, name, price
		from products
		order by id
		offset $1 limit $2
	`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductsPG) Create(ctx context.Context, p models.Product) (models.Product, error) {
	err := r.DB.QueryRow(ctx, `
		insert into products(name, price)
		values ($1, $2)
		returning id
	`, p.Name, p.Price).Scan(&p.ID)
	return p, err
}

func (r *ProductsPG) Get(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := r.DB.QueryRow(ctx, `
		select id, name, price from products where id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

// GetByIDs returns the products for the given ids keyed by id. Ids absent
// from the result simply do not exist; the caller decides whether that is an
// error.
func (r *ProductsPG) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	rows, err := r.DB.Query(ctx, `
		select id, name, price from products where id = any($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]models.Product, len(ids))
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
