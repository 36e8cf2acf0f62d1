package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/rs/zerolog"

	"order-service/services/api/internal/repo"
	"order-service/shared/pkg/models"
)

type UserStore interface {
	Get(ctx context.Context, id int64) (models.User, error)
}

type ProductStore interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Product, error)
}

type OrderStore interface {
	Create(ctx context.Context, o models.Order) (int64, error)
}

type TaskDispatcher interface {
	DispatchEmailConfirmation(ctx context.Context, orderID int64, email string) error
	DispatchPaymentProcessing(ctx context.Context, orderID int64) error
}

type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, orderID int64) error
}

// Orders runs the order creation workflow: validate, price, persist, then
// dispatch the two background tasks and publish the order_created event.
type Orders struct {
	Users    UserStore
	Products ProductStore
	Store    OrderStore
	Tasks    TaskDispatcher
	Events   EventPublisher
	Log      zerolog.Logger
}

type CreateOrderInput struct {
	UserID   int64
	Products []int64
	Email    string
}

func (s *Orders) Create(ctx context.Context, in CreateOrderInput) (models.Order, error) {
	if len(in.Products) == 0 {
		return models.Order{}, ErrEmptyProducts
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return models.Order{}, ErrInvalidEmail
	}

	if _, err := s.Users.Get(ctx, in.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Order{}, fmt.Errorf("%w: id %d", ErrUserNotFound, in.UserID)
		}
		return models.Order{}, fmt.Errorf("load user: %w", err)
	}

	// Prices are read once here; the stored total never changes afterwards.
	prices, err := s.Products.GetByIDs(ctx, in.Products)
	if err != nil {
		return models.Order{}, fmt.Errorf("load products: %w", err)
	}

	total := 0.0
	for _, id := range in.Products {
		p, ok := prices[id]
		if !ok {
			return models.Order{}, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
		}
		total += p.Price
	}

	order := models.Order{
		UserID:     in.UserID,
		ProductIDs: in.Products,
		Email:      in.Email,
		TotalPrice: total,
		CreatedAt:  time.Now(),
	}

	orderID, err := s.Store.Create(ctx, order)
	if err != nil {
		return models.Order{}, fmt.Errorf("persist order: %w", err)
	}
	order.ID = orderID

	// From here on the order exists; task and event handoff failures are
	// logged and swallowed, never surfaced to the caller.
	if err := s.Tasks.DispatchEmailConfirmation(ctx, orderID, in.Email); err != nil {
		s.Log.Error().Err(err).Int64("order_id", orderID).Msg("dispatch confirmation email failed")
	}
	if err := s.Tasks.DispatchPaymentProcessing(ctx, orderID); err != nil {
		s.Log.Error().Err(err).Int64("order_id", orderID).Msg("dispatch payment processing failed")
	}
	if err := s.Events.PublishOrderCreated(ctx, orderID); err != nil {
		s.Log.Error().Err(err).Int64("order_id", orderID).Msg("publish order_created failed")
	}

	return order, nil
}
