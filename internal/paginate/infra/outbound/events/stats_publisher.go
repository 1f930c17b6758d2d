package events

import (
	"context"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	sharedEvents "github.com/davicafu/hexapaginate/internal/shared/events"
	sharedBus "github.com/davicafu/hexapaginate/internal/shared/infra/platform/bus"
)

const PageServedEvent = "paginate.page_served"

// StatsPublisher publica cada página servida como evento de integración. La
// clave de partición es la colección.
type StatsPublisher struct {
	bus sharedBus.EventBus
}

func NewStatsPublisher(bus sharedBus.EventBus) *StatsPublisher {
	return &StatsPublisher{bus: bus}
}

func (p *StatsPublisher) Record(ctx context.Context, stats domain.PageStats) error {
	evt, err := sharedEvents.NewIntegrationEvent(PageServedEvent, stats.Collection, stats.At, stats)
	if err != nil {
		return err
	}
	return p.bus.Publish(ctx, evt)
}

var _ domain.StatsRecorder = (*StatsPublisher)(nil)
