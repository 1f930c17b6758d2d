package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	paginateEvents "github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/events"
	sharedEvents "github.com/davicafu/hexapaginate/internal/shared/events"
)

// StatsConsumer lleva los eventos de página servida a un StatsRecorder, p. ej.
// de Kafka a ClickHouse.
type StatsConsumer struct {
	sink domain.StatsRecorder
	log  *zap.Logger
}

func NewStatsConsumer(sink domain.StatsRecorder, log *zap.Logger) *StatsConsumer {
	return &StatsConsumer{sink: sink, log: log}
}

func (c *StatsConsumer) HandleMessage(ctx context.Context, key string, payload []byte) error {
	var evt sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("invalid integration event: %w", err)
	}

	switch evt.Type {
	case paginateEvents.PageServedEvent:
		var stats domain.PageStats
		if err := json.Unmarshal(evt.Data, &stats); err != nil {
			return fmt.Errorf("invalid %s payload: %w", evt.Type, err)
		}
		c.log.Debug("Page stats received", zap.String("collection", key), zap.String("queryId", stats.QueryID.String()))
		return c.sink.Record(ctx, stats)
	default:
		c.log.Debug("Evento ignorado", zap.String("type", evt.Type))
		return nil
	}
}
