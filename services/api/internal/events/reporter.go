package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"order-service/services/api/internal/metrics"
	"order-service/shared/pkg/models"
)

// Reporter is the log-topic subscriber callback: it decodes each event and
// reports it to the service log.
type Reporter struct {
	Log zerolog.Logger
}

func (rp *Reporter) Handle(ctx context.Context, payload []byte) error {
	var evt models.LogEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("decode log event: %w", err)
	}
	metrics.EventsConsumedTotal.Inc()
	rp.Log.Info().Str("event", evt.Event).Int64("order_id", evt.OrderID).Msg("received log")
	return nil
}
