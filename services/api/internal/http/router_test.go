package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-service/services/api/internal/http/handlers"
	"order-service/services/api/internal/repo"
	"order-service/services/api/internal/service"
	"order-service/shared/pkg/models"
)

type memUsers struct {
	m    map[int64]models.User
	next int64
}

func (s *memUsers) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	out := []models.User{}
	for id := int64(1); id <= s.next && len(out) < skip+limit; id++ {
		if u, ok := s.m[id]; ok {
			out = append(out, u)
		}
	}
	if skip >= len(out) {
		return []models.User{}, nil
	}
	return out[skip:], nil
}

func (s *memUsers) Create(ctx context.Context, u models.User) (models.User, error) {
	s.next++
	u.ID = s.next
	s.m[u.ID] = u
	return u, nil
}

func (s *memUsers) Get(ctx context.Context, id int64) (models.User, error) {
	u, ok := s.m[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (s *memUsers) Update(ctx context.Context, id int64, u models.User) (models.User, error) {
	if _, ok := s.m[id]; !ok {
		return models.User{}, repo.ErrNotFound
	}
	u.ID = id
	s.m[id] = u
	return u, nil
}

func (s *memUsers) Delete(ctx context.Context, id int64) error {
	if _, ok := s.m[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

type memProducts struct {
	m map[int64]models.Product
}

func (s *memProducts) List(ctx context.Context, skip, limit int) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range s.m {
		out = append(out, p)
	}
	return out, nil
}

func (s *memProducts) Create(ctx context.Context, p models.Product) (models.Product, error) {
	p.ID = int64(len(s.m) + 1)
	s.m[p.ID] = p
	return p, nil
}

func (s *memProducts) Get(ctx context.Context, id int64) (models.Product, error) {
	p, ok := s.m[id]
	if !ok {
		return models.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (s *memProducts) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	out := map[int64]models.Product{}
	for _, id := range ids {
		if p, ok := s.m[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type memOrders struct {
	created []models.Order
	next    int64
}

func (s *memOrders) Create(ctx context.Context, o models.Order) (int64, error) {
	s.next++
	o.ID = s.next
	s.created = append(s.created, o)
	return s.next, nil
}

type memDispatcher struct {
	emails   []int64
	payments []int64
}

func (d *memDispatcher) DispatchEmailConfirmation(ctx context.Context, orderID int64, email string) error {
	d.emails = append(d.emails, orderID)
	return nil
}

func (d *memDispatcher) DispatchPaymentProcessing(ctx context.Context, orderID int64) error {
	d.payments = append(d.payments, orderID)
	return nil
}

type memPublisher struct {
	published []int64
}

func (p *memPublisher) PublishOrderCreated(ctx context.Context, orderID int64) error {
	p.published = append(p.published, orderID)
	return nil
}

type fixture struct {
	router    http.Handler
	users     *memUsers
	products  *memProducts
	orders    *memOrders
	tasks     *memDispatcher
	published *memPublisher
}

func newFixture() *fixture {
	users := &memUsers{m: map[int64]models.User{}}
	products := &memProducts{m: map[int64]models.Product{
		10: {ID: 10, Name: "mug", Price: 5.00},
		11: {ID: 11, Name: "shirt", Price: 7.50},
	}}
	orders := &memOrders{}
	tasks := &memDispatcher{}
	published := &memPublisher{}

	svc := &service.Orders{
		Users:    users,
		Products: products,
		Store:    orders,
		Tasks:    tasks,
		Events:   published,
		Log:      zerolog.Nop(),
	}

	router := NewRouter(&Handlers{
		Orders:   &handlers.OrdersHandler{Svc: svc, Log: zerolog.Nop()},
		Users:    &handlers.UsersHandler{Store: users, Log: zerolog.Nop()},
		Products: &handlers.ProductsHandler{Store: products, Log: zerolog.Nop()},
	})

	return &fixture{router: router, users: users, products: products, orders: orders, tasks: tasks, published: published}
}

func (fx *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestUsers_CreateGetRoundTrip(t *testing.T) {
	fx := newFixture()

	w := fx.do(t, http.MethodPost, "/users/", map[string]string{
		"username":      "alice",
		"email":         "alice@example.com",
		"password_hash": "h4sh",
	})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[models.User](t, w)
	assert.NotZero(t, created.ID)

	w = fx.do(t, http.MethodGet, "/users/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.User](t, w)
	assert.Equal(t, created, got)
}

func TestUsers_UpdateReflectsEveryField(t *testing.T) {
	fx := newFixture()
	fx.do(t, http.MethodPost, "/users/", map[string]string{
		"username": "alice", "email": "alice@example.com", "password_hash": "h1",
	})

	w := fx.do(t, http.MethodPut, "/users/1", map[string]string{
		"username": "alice2", "email": "alice2@example.com", "password_hash": "h2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[models.User](t, fx.do(t, http.MethodGet, "/users/1", nil))
	assert.Equal(t, models.User{
		ID:           1,
		Username:     "alice2",
		Email:        "alice2@example.com",
		PasswordHash: "h2",
	}, got)
}

func TestUsers_DeleteThenGet(t *testing.T) {
	fx := newFixture()
	fx.do(t, http.MethodPost, "/users/", map[string]string{
		"username": "alice", "email": "alice@example.com", "password_hash": "h1",
	})

	w := fx.do(t, http.MethodDelete, "/users/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	msg := decode[map[string]string](t, w)
	assert.Equal(t, "User deleted successfully", msg["message"])

	w = fx.do(t, http.MethodGet, "/users/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsers_NotFound(t *testing.T) {
	fx := newFixture()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/users/42"},
		{http.MethodPut, "/users/42"},
		{http.MethodDelete, "/users/42"},
	} {
		var body any
		if tc.method == http.MethodPut {
			body = map[string]string{"username": "x", "email": "x@x.com", "password_hash": "h"}
		}
		w := fx.do(t, tc.method, tc.path, body)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestOrders_CreateScenario(t *testing.T) {
	fx := newFixture()
	fx.do(t, http.MethodPost, "/users/", map[string]string{
		"username": "alice", "email": "alice@example.com", "password_hash": "h1",
	})

	w := fx.do(t, http.MethodPost, "/orders/", map[string]any{
		"user_id":  1,
		"products": []int64{10, 11},
		"email":    "a@b.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	order := decode[models.Order](t, w)
	assert.NotZero(t, order.ID)
	assert.Equal(t, 12.50, order.TotalPrice)
	assert.Equal(t, "a@b.com", order.Email)

	assert.Equal(t, []int64{order.ID}, fx.published.published)
	assert.Equal(t, []int64{order.ID}, fx.tasks.emails)
	assert.Equal(t, []int64{order.ID}, fx.tasks.payments)
}

func TestOrders_CreateRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{
			name:       "unknown product",
			body:       map[string]any{"user_id": 1, "products": []int64{99}, "email": "a@b.com"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "empty products",
			body:       map[string]any{"user_id": 1, "products": []int64{}, "email": "a@b.com"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "malformed email",
			body:       map[string]any{"user_id": 1, "products": []int64{10}, "email": "nope"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown user",
			body:       map[string]any{"user_id": 7, "products": []int64{10}, "email": "a@b.com"},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture()
			fx.do(t, http.MethodPost, "/users/", map[string]string{
				"username": "alice", "email": "alice@example.com", "password_hash": "h1",
			})

			w := fx.do(t, http.MethodPost, "/orders/", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Empty(t, fx.orders.created, "no order may be persisted on rejection")
			assert.Empty(t, fx.published.published)
		})
	}
}

func TestOrders_BadJSON(t *testing.T) {
	fx := newFixture()
	req := httptest.NewRequest(http.MethodPost, "/orders/", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProducts_GetNotFound(t *testing.T) {
	fx := newFixture()
	w := fx.do(t, http.MethodGet, "/products/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
