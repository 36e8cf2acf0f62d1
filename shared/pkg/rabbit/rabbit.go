package rabbit

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeTasks = "orders.tasks"
	ExchangeRetry = "orders.tasks.retry"
	ExchangeDLX   = "orders.tasks.dlx"

	TaskQueue  = "tasks.q"
	TaskDLQKey = "tasks.dlq"
)

type Conn struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func Connect(url string) (*Conn, error) {
	c, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := c.Channel()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return &Conn{Conn: c, Ch: ch}, nil
}

func (c *Conn) Close() error {
	if c.Ch != nil {
		_ = c.Ch.Close()
	}
	if c.Conn != nil {
		return c.Conn.Close()
	}
	return nil
}

// DeclareExchanges declares the task, retry and dead-letter exchanges.
// Both the API (producer side) and the worker call this; declaration is
// idempotent.
func DeclareExchanges(ch *amqp.Channel) error {
	for _, ex := range []string{ExchangeTasks, ExchangeRetry, ExchangeDLX} {
		if err := ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			return err
		}
	}
	return nil
}

// DeclareTaskQueue declares the worker queue bound to the given task routing
// keys, with a dead-letter queue attached.
func DeclareTaskQueue(ch *amqp.Channel, bindKeys []string, prefetch int) error {
	if prefetch > 0 {
		_ = ch.Qos(prefetch, 0, false)
	}

	dlqName := TaskQueue + ".dlq"
	if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(dlqName, TaskDLQKey, ExchangeDLX, false, nil); err != nil {
		return err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    ExchangeDLX,
		"x-dead-letter-routing-key": TaskDLQKey,
	}
	if _, err := ch.QueueDeclare(TaskQueue, true, false, false, false, args); err != nil {
		return err
	}

	for _, key := range bindKeys {
		if err := ch.QueueBind(TaskQueue, key, ExchangeTasks, false, nil); err != nil {
			return err
		}
	}
	return nil
}

// DeclareRetryQueue creates a queue on the retry exchange. After ttlMs the
// message dead-letters back to the tasks exchange under its original routing
// key, which re-delivers it to the worker queue.
func DeclareRetryQueue(ch *amqp.Channel, name string, retryKey string, originalKey string, ttlMs int) error {
	args := amqp.Table{
		"x-message-ttl":             int32(ttlMs),
		"x-dead-letter-exchange":    ExchangeTasks,
		"x-dead-letter-routing-key": originalKey,
	}
	if _, err := ch.QueueDeclare(name, true, false, false, false, args); err != nil {
		return err
	}
	return ch.QueueBind(name, retryKey, ExchangeRetry, false, nil)
}

type Publisher struct {
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(ch *amqp.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte, headers amqp.Table) error {
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Headers:     headers,
		Timestamp:   time.Now(),
	})
}

func (p *Publisher) PublishJSON(ctx context.Context, routingKey string, v any, headers amqp.Table) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Publish(ctx, routingKey, b, headers)
}

type Consumer struct{ ch *amqp.Channel }

func NewConsumer(ch *amqp.Channel) *Consumer { return &Consumer{ch: ch} }

func (c *Consumer) Consume(queue string, prefetch int) (<-chan amqp.Delivery, error) {
	if prefetch > 0 {
		_ = c.ch.Qos(prefetch, 0, false)
	}
	return c.ch.Consume(queue, "", false, false, false, false, nil)
}

func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Second)
}

// RetryOrDLQ republishes a failed delivery to the retry exchange, or to the
// dead-letter exchange once attempts exceed maxAttempts. The original
// delivery is acked either way; the attempt counter travels in headers.
func RetryOrDLQ(ctx context.Context, d amqp.Delivery, service string, maxAttempts int32, retryPub, dlqPub *Publisher, dlqKey string) error {
	var attempts int32
	if v, ok := d.Headers["x-attempts"]; ok {
		switch t := v.(type) {
		case int32:
			attempts = t
		case int64:
			attempts = int32(t)
		case int:
			attempts = int32(t)
		}
	}
	attempts++

	h := amqp.Table{}
	for k, v := range d.Headers {
		h[k] = v
	}
	h["x-attempts"] = attempts

	pubCtx, cancel := WithTimeout(ctx)
	defer cancel()

	_ = d.Ack(false)
	if attempts <= maxAttempts {
		return retryPub.Publish(pubCtx, service+"."+d.RoutingKey, d.Body, h)
	}
	return dlqPub.Publish(pubCtx, dlqKey, d.Body, h)
}
