package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"order-service/services/api/internal/service"
	"order-service/shared/pkg/models"
)

type OrderCreator interface {
	Create(ctx context.Context, in service.CreateOrderInput) (models.Order, error)
}

type OrdersHandler struct {
	Svc OrderCreator
	Log zerolog.Logger
}

type createOrderReq struct {
	UserID   int64   `json:"user_id"`
	Products []int64 `json:"products"`
	Email    string  `json:"email"`
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	order, err := h.Svc.Create(r.Context(), service.CreateOrderInput{
		UserID:   req.UserID,
		Products: req.Products,
		Email:    req.Email,
	})
	if err != nil {
		if service.IsValidation(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("create order failed")
		writeError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	writeJSON(w, http.StatusOK, order)
}
