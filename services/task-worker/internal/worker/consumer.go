package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"order-service/services/task-worker/internal/metrics"
	"order-service/shared/pkg/models"
)

type Notifier interface {
	Send(email, subject, body string)
}

// Consumer drains the task queue. Each task blocks for its configured
// simulated delay before doing its (mocked) work. Failed tasks are handed to
// Requeue, which routes them through the retry exchange and to the DLQ once
// attempts run out.
type Consumer struct {
	Log      zerolog.Logger
	Notifier Notifier

	Requeue func(ctx context.Context, d amqp.Delivery, maxAttempts int32) error

	MaxAttempts int

	EmailDelay   time.Duration
	PaymentDelay time.Duration
	FailRate     int // 0..100
}

func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	c.Log.Info().Msg("task consumer started")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		select {
		case <-ctx.Done():
			c.Log.Info().Msg("task consumer stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				c.Log.Info().Msg("deliveries closed")
				return
			}
			c.handle(ctx, rng, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, rng *rand.Rand, d amqp.Delivery) {
	start := time.Now()
	defer func() {
		metrics.TaskDuration.WithLabelValues(d.RoutingKey).Observe(time.Since(start).Seconds())
	}()

	switch d.RoutingKey {
	case models.TaskEmailConfirmation:
		c.handleEmail(ctx, d)
	case models.TaskPaymentProcess:
		c.handlePayment(ctx, rng, d)
	default:
		c.Log.Warn().Str("rk", d.RoutingKey).Msg("unexpected routing key -> ack")
		_ = d.Ack(false)
	}
}

func (c *Consumer) handleEmail(ctx context.Context, d amqp.Delivery) {
	var t models.Task[models.EmailConfirmationPayload]
	if err := json.Unmarshal(d.Body, &t); err != nil {
		c.Log.Error().Err(err).Str("rk", d.RoutingKey).Msg("bad json -> dlq")
		c.fail(ctx, d, models.TaskEmailConfirmation, 0)
		return
	}
	if t.Payload.OrderID == 0 || t.Payload.Email == "" {
		c.Log.Error().Str("task_id", t.ID).Msg("missing order_id/email -> dlq")
		c.fail(ctx, d, models.TaskEmailConfirmation, 0)
		return
	}

	if !c.sleep(ctx, c.EmailDelay, d) {
		return
	}

	c.Notifier.Send(
		t.Payload.Email,
		"Order Confirmation",
		fmt.Sprintf("Your order with ID %d has been confirmed.", t.Payload.OrderID),
	)

	_ = d.Ack(false)
	metrics.TasksProcessedTotal.WithLabelValues(models.TaskEmailConfirmation, "ok").Inc()
	c.Log.Info().Int64("order_id", t.Payload.OrderID).Msg("confirmation email sent")
}

func (c *Consumer) handlePayment(ctx context.Context, rng *rand.Rand, d amqp.Delivery) {
	var t models.Task[models.PaymentProcessPayload]
	if err := json.Unmarshal(d.Body, &t); err != nil {
		c.Log.Error().Err(err).Str("rk", d.RoutingKey).Msg("bad json -> dlq")
		c.fail(ctx, d, models.TaskPaymentProcess, 0)
		return
	}
	if t.Payload.OrderID == 0 {
		c.Log.Error().Str("task_id", t.ID).Msg("missing order_id -> dlq")
		c.fail(ctx, d, models.TaskPaymentProcess, 0)
		return
	}

	if !c.sleep(ctx, c.PaymentDelay, d) {
		return
	}

	if rng.Intn(100) < c.FailRate {
		c.Log.Warn().Int64("order_id", t.Payload.OrderID).Int("fail_rate", c.FailRate).Msg("payment failed -> retry/dlq")
		c.fail(ctx, d, models.TaskPaymentProcess, int32(c.MaxAttempts))
		return
	}

	_ = d.Ack(false)
	metrics.TasksProcessedTotal.WithLabelValues(models.TaskPaymentProcess, "ok").Inc()
	c.Log.Info().Int64("order_id", t.Payload.OrderID).Msg("payment processed")
}

// sleep blocks for the simulated processing delay. On shutdown the delivery
// is requeued so it is not lost mid-delay.
func (c *Consumer) sleep(ctx context.Context, delay time.Duration, d amqp.Delivery) bool {
	if delay <= 0 {
		return true
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		_ = d.Nack(false, true)
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) fail(ctx context.Context, d amqp.Delivery, task string, maxAttempts int32) {
	metrics.TasksProcessedTotal.WithLabelValues(task, "failed").Inc()
	if err := c.Requeue(ctx, d, maxAttempts); err != nil {
		c.Log.Error().Err(err).Str("task", task).Msg("requeue failed")
	}
}
