package dispatch

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"order-service/services/api/internal/metrics"
	"order-service/shared/pkg/models"
	"order-service/shared/pkg/rabbit"
)

// TaskQueue hands background tasks to the tasks exchange. Dispatch is
// fire-and-forget: the worker picks tasks up on its own schedule.
type TaskQueue struct {
	Pub *rabbit.Publisher
}

func (q *TaskQueue) DispatchEmailConfirmation(ctx context.Context, orderID int64, email string) error {
	t := models.NewEmailConfirmationTask(orderID, email)
	return q.publish(ctx, t.Type, t)
}

func (q *TaskQueue) DispatchPaymentProcessing(ctx context.Context, orderID int64) error {
	t := models.NewPaymentProcessTask(orderID)
	return q.publish(ctx, t.Type, t)
}

func (q *TaskQueue) publish(ctx context.Context, taskType string, t any) error {
	pubCtx, cancel := rabbit.WithTimeout(ctx)
	defer cancel()

	err := q.Pub.PublishJSON(pubCtx, taskType, t, amqp.Table{"x-attempts": int32(0)})
	if err != nil {
		metrics.TaskDispatchErrorsTotal.WithLabelValues(taskType).Inc()
		return err
	}
	metrics.TasksDispatchedTotal.WithLabelValues(taskType).Inc()
	return nil
}
