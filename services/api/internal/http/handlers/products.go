package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"order-service/services/api/internal/repo"
	"order-service/shared/pkg/models"
)

type ProductStore interface {
	List(ctx context.Context, skip, limit int) ([]models.Product, error)
	Create(ctx context.Context, p models.Product) (models.Product, error)
	Get(ctx context.Context, id int64) (models.Product, error)
}

type ProductsHandler struct {
	Store ProductStore
	Log   zerolog.Logger
}

type productReq struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.List(r.Context(), queryInt(r, "skip", 0), queryInt(r, "limit", 10))
	if err != nil {
		h.Log.Error().Err(err).Msg("list products failed")
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	product, err := h.Store.Create(r.Context(), models.Product{Name: req.Name, Price: req.Price})
	if err != nil {
		h.Log.Error().Err(err).Msg("create product failed")
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.Log.Error().Err(err).Msg("get product failed")
		writeError(w, http.StatusInternalServerError, "get product failed")
		return
	}
	writeJSON(w, http.StatusOK, product)
}
