package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Producer publishes lead events with the event type as routing key.
type Producer struct {
	Ch  channelPublisher
	Log *zap.Logger
}

func NewProducer(ch *amqp.Channel, log *zap.Logger) *Producer {
	return &Producer{Ch: ch, Log: log}
}

func (p *Producer) PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return eris.Wrap(err, "producer: encode lead event")
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		string(event.Type),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         string(event.Type),
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return eris.Wrapf(err, "producer: publish %s for lead %d", event.Type, event.LeadID)
	}

	p.Log.Debug("lead event published", zap.String("type", string(event.Type)), zap.Int64("lead_id", event.LeadID))
	return nil
}

// NopProducer stands in when no broker is configured.
type NopProducer struct {
	Log *zap.Logger
}

func (p NopProducer) PublishLeadEvent(_ context.Context, event entity.LeadEvent) error {
	p.Log.Debug("lead event dropped, rabbitmq not configured",
		zap.String("type", string(event.Type)),
		zap.Int64("lead_id", event.LeadID),
	)
	return nil
}
