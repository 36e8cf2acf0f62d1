package kafka

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher writes JSON records to a single topic.
type Publisher struct {
	w *kafkago.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{w: &kafkago.Writer{
		Addr:     kafkago.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafkago.LeastBytes{},
	}}
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafkago.Message{Key: []byte(key), Value: b})
}

func (p *Publisher) Close() error { return p.w.Close() }

// Subscriber reads one topic from the earliest available offset within a
// consumer group, committing offsets as it goes.
type Subscriber struct {
	r   *kafkago.Reader
	log zerolog.Logger
}

func NewSubscriber(brokers []string, topic, group string, log zerolog.Logger) *Subscriber {
	return &Subscriber{
		r: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     group,
			StartOffset: kafkago.FirstOffset,
		}),
		log: log,
	}
}

// Run blocks reading messages until ctx is cancelled. Handler errors are
// logged and do not stop the loop; the message is still committed.
func (s *Subscriber) Run(ctx context.Context, handler func(ctx context.Context, payload []byte) error) {
	for {
		msg, err := s.r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.log.Info().Str("topic", s.r.Config().Topic).Msg("subscriber stopped")
				return
			}
			s.log.Error().Err(err).Str("topic", s.r.Config().Topic).Msg("read message failed")
			continue
		}
		if err := handler(ctx, msg.Value); err != nil {
			s.log.Error().Err(err).Str("topic", s.r.Config().Topic).Msg("handle message failed")
		}
	}
}

func (s *Subscriber) Close() error { return s.r.Close() }
