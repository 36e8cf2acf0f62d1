package worker

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-service/shared/pkg/models"
)

type fakeAck struct {
	acks  int
	nacks int
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error       { a.acks++; return nil }
func (a *fakeAck) Nack(tag uint64, multiple, req bool) error { a.nacks++; return nil }
func (a *fakeAck) Reject(tag uint64, requeue bool) error     { return nil }

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeNotifier struct {
	sent []sentMail
}

func (n *fakeNotifier) Send(email, subject, body string) {
	n.sent = append(n.sent, sentMail{To: email, Subject: subject, Body: body})
}

type requeueCall struct {
	maxAttempts int32
}

func newTestConsumer(failRate int) (*Consumer, *fakeNotifier, *[]requeueCall) {
	notifier := &fakeNotifier{}
	calls := &[]requeueCall{}
	c := &Consumer{
		Log:      zerolog.Nop(),
		Notifier: notifier,
		Requeue: func(ctx context.Context, d amqp.Delivery, maxAttempts int32) error {
			*calls = append(*calls, requeueCall{maxAttempts: maxAttempts})
			return nil
		},
		MaxAttempts: 3,
		FailRate:    failRate,
	}
	return c, notifier, calls
}

func delivery(t *testing.T, ack *fakeAck, routingKey string, task any) amqp.Delivery {
	t.Helper()
	b, err := json.Marshal(task)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, RoutingKey: routingKey, Body: b}
}

func TestConsumer_EmailConfirmation(t *testing.T) {
	c, notifier, calls := newTestConsumer(0)
	ack := &fakeAck{}
	rng := rand.New(rand.NewSource(1))

	task := models.NewEmailConfirmationTask(7, "a@b.com")
	c.handle(context.Background(), rng, delivery(t, ack, models.TaskEmailConfirmation, task))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "a@b.com", notifier.sent[0].To)
	assert.Equal(t, "Order Confirmation", notifier.sent[0].Subject)
	assert.Contains(t, notifier.sent[0].Body, "7")

	assert.Equal(t, 1, ack.acks)
	assert.Empty(t, *calls)
}

func TestConsumer_PaymentProcessed(t *testing.T) {
	c, _, calls := newTestConsumer(0)
	ack := &fakeAck{}
	rng := rand.New(rand.NewSource(1))

	task := models.NewPaymentProcessTask(7)
	c.handle(context.Background(), rng, delivery(t, ack, models.TaskPaymentProcess, task))

	assert.Equal(t, 1, ack.acks)
	assert.Empty(t, *calls)
}

func TestConsumer_PaymentFailureGoesToRetry(t *testing.T) {
	c, _, calls := newTestConsumer(100)
	ack := &fakeAck{}
	rng := rand.New(rand.NewSource(1))

	task := models.NewPaymentProcessTask(7)
	c.handle(context.Background(), rng, delivery(t, ack, models.TaskPaymentProcess, task))

	require.Len(t, *calls, 1)
	assert.Equal(t, int32(3), (*calls)[0].maxAttempts)
	assert.Zero(t, ack.acks, "requeue path owns the ack")
}

func TestConsumer_BadPayloadGoesStraightToDLQ(t *testing.T) {
	c, _, calls := newTestConsumer(0)
	ack := &fakeAck{}
	rng := rand.New(rand.NewSource(1))

	d := amqp.Delivery{Acknowledger: ack, RoutingKey: models.TaskPaymentProcess, Body: []byte("{")}
	c.handle(context.Background(), rng, d)

	require.Len(t, *calls, 1)
	assert.Equal(t, int32(0), (*calls)[0].maxAttempts, "malformed tasks are not retried")
}

func TestConsumer_MissingOrderID(t *testing.T) {
	c, notifier, calls := newTestConsumer(0)
	ack := &fakeAck{}
	rng := rand.New(rand.NewSource(1))

	task := models.Task[models.EmailConfirmationPayload]{ID: "x", Type: models.TaskEmailConfirmation}
	c.handle(context.Background(), rng, delivery(t, ack, models.TaskEmailConfirmation, task))

	assert.Empty(t, notifier.sent)
	require.Len(t, *calls, 1)
	assert.Equal(t, int32(0), (*calls)[0].maxAttempts)
}

func TestConsumer_UnknownRoutingKeyIsAcked(t *testing.T) {
	c, _, calls := newTestConsumer(0)
	ack := &fakeAck{}
	rng := rand.New(rand.NewSource(1))

	d := amqp.Delivery{Acknowledger: ack, RoutingKey: "task.unknown", Body: []byte("{}")}
	c.handle(context.Background(), rng, d)

	assert.Equal(t, 1, ack.acks)
	assert.Empty(t, *calls)
}

func TestConsumer_ShutdownDuringDelayRequeues(t *testing.T) {
	c, notifier, _ := newTestConsumer(0)
	c.EmailDelay = time.Minute
	ack := &fakeAck{}
	rng := rand.New(rand.NewSource(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := models.NewEmailConfirmationTask(7, "a@b.com")
	c.handle(ctx, rng, delivery(t, ack, models.TaskEmailConfirmation, task))

	assert.Empty(t, notifier.sent)
	assert.Equal(t, 1, ack.nacks, "delivery is requeued on shutdown")
}
