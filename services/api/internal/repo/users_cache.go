package repo

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"order-service/shared/pkg/cache"
	"order-service/shared/pkg/models"
)

// UsersCached is a read-through redis cache over UsersPG. Writes go through
// to postgres and refresh or drop the cached entry; list queries always hit
// postgres.
type UsersCached struct {
	PG    *UsersPG
	Redis *cache.Redis
	TTL   time.Duration
}

func userKey(id int64) string { return "user:" + strconv.FormatInt(id, 10) }

func (r *UsersCached) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	return r.PG.List(ctx, skip, limit)
}

func (r *UsersCached) Create(ctx context.Context, u models.User) (models.User, error) {
	created, err := r.PG.Create(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	r.put(ctx, created)
	return created, nil
}

func (r *UsersCached) Get(ctx context.Context, id int64) (models.User, error) {
	if s, err := r.Redis.Get(ctx, userKey(id)); err == nil {
		var u models.User
		if err := json.Unmarshal([]byte(s), &u); err == nil {
			return u, nil
		}
	}
	// miss or redis unavailable: fall through to postgres

	u, err := r.PG.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	r.put(ctx, u)
	return u, nil
}

func (r *UsersCached) Update(ctx context.Context, id int64, u models.User) (models.User, error) {
	updated, err := r.PG.Update(ctx, id, u)
	if err != nil {
		return models.User{}, err
	}
	r.put(ctx, updated)
	return updated, nil
}

func (r *UsersCached) Delete(ctx context.Context, id int64) error {
	if err := r.PG.Delete(ctx, id); err != nil {
		return err
	}
	_ = r.Redis.Del(ctx, userKey(id))
	return nil
}

func (r *UsersCached) put(ctx context.Context, u models.User) {
	if b, err := json.Marshal(u); err == nil {
		_ = r.Redis.Set(ctx, userKey(u.ID), string(b), r.TTL)
	}
}
