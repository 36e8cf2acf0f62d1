package models

import (
	"time"

	"github.com/google/uuid"
)

// Task types double as routing keys on the tasks exchange.
const (
	TaskEmailConfirmation = "task.email.confirmation"
	TaskPaymentProcess    = "task.payment.process"
)

type Task[T any] struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Time    time.Time `json:"time"`
	Payload T         `json:"payload"`
}

type EmailConfirmationPayload struct {
	OrderID int64  `json:"order_id"`
	Email   string `json:"email"`
}

type PaymentProcessPayload struct {
	OrderID int64 `json:"order_id"`
}

func NewEmailConfirmationTask(orderID int64, email string) Task[EmailConfirmationPayload] {
	return Task[EmailConfirmationPayload]{
		ID:      uuid.NewString(),
		Type:    TaskEmailConfirmation,
		Time:    time.Now(),
		Payload: EmailConfirmationPayload{OrderID: orderID, Email: email},
	}
}

func NewPaymentProcessTask(orderID int64) Task[PaymentProcessPayload] {
	return Task[PaymentProcessPayload]{
		ID:      uuid.NewString(),
		Type:    TaskPaymentProcess,
		Time:    time.Now(),
		Payload: PaymentProcessPayload{OrderID: orderID},
	}
}
