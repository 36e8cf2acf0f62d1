package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"order-service/shared/pkg/models"
)

type UsersPG struct{ DB *pgxpool.Pool }

func (r *UsersPG) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	rows, err := r.DB.Query(ctx, `
		select id, username, email, password_hash
		from users
		order by id
		offset $1 limit $2
	`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UsersPG) Create(ctx context.Context, u models.User) (models.User, error) {
	err := r.DB.QueryRow(ctx, `
		insert into users(username, email, password_hash)
		values ($1, $2, $3)
		returning id
	`, u.Username, u.Email, u.PasswordHash).Scan(&u.ID)
	return u, err
}

func (r *UsersPG) Get(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.DB.QueryRow(ctx, `
		select id, username, email, password_hash
		from users
		where id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *UsersPG) Update(ctx context.Context, id int64, u models.User) (models.User, error) {
	err := r.DB.QueryRow(ctx, `
		update users
		set username = $2, email = $3, password_hash = $4
		where id = $1
		returning id
	`, id, u.Username, u.Email, u.PasswordHash).Scan(&u.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *UsersPG) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
