package dispatch

import (
	"context"
	"strconv"

	"order-service/services/api/internal/metrics"
	"order-service/shared/pkg/kafka"
	"order-service/shared/pkg/models"
)

// LogPublisher publishes order lifecycle events to the log topic.
type LogPublisher struct {
	Pub *kafka.Publisher
}

func (p *LogPublisher) PublishOrderCreated(ctx context.Context, orderID int64) error {
	evt := models.NewOrderCreatedEvent(orderID)
	err := p.Pub.PublishJSON(ctx, strconv.FormatInt(orderID, 10), evt)
	if err != nil {
		metrics.EventPublishErrorsTotal.Inc()
		return err
	}
	metrics.EventsPublishedTotal.Inc()
	return nil
}
