package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"order-service/services/api/internal/http/handlers"
	"order-service/shared/pkg/metrics"
)

type Handlers struct {
	Orders   *handlers.OrdersHandler
	Users    *handlers.UsersHandler
	Products *handlers.ProductsHandler
}

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware("api"))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", handlers.Health)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.Orders.Create)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.Users.List)
		r.Post("/", h.Users.Create)
		r.Get("/{id}", h.Users.Get)
		r.Put("/{id}", h.Users.Update)
		r.Delete("/{id}", h.Users.Delete)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.Products.List)
		r.Post("/", h.Products.Create)
		r.Get("/{id}", h.Products.Get)
	})

	return r
}
