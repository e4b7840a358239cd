package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

// LeadEventHandler reacts to one event. Returning an error rejects the message.
type LeadEventHandler interface {
	HandleLeadEvent(ctx context.Context, event entity.LeadEvent) error
}

type channelConsumer interface {
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  channelConsumer
	Handlers []LeadEventHandler
	Log      *zap.Logger
}

func NewWorker(ch *amqp.Channel, log *zap.Logger, handlers ...LeadEventHandler) *Worker {
	return &Worker{Channel: ch, Handlers: handlers, Log: log}
}

// Start consumes until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"outreach-dashboard",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return eris.Wrapf(err, "worker: consume %s", queueName)
	}

	w.Log.Info("worker consuming", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.Log.Warn("worker delivery channel closed", zap.String("queue", queueName))
				return nil
			}
			w.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery acks on success. A malformed body goes straight to the dead
// letter queue; a handler failure is retried once before it does.
func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event entity.LeadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.Log.Error("worker: malformed lead event", zap.String("message_id", d.MessageId), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	log := w.Log.With(zap.String("type", string(event.Type)), zap.Int64("lead_id", event.LeadID))
	for _, h := range w.Handlers {
		if err := h.HandleLeadEvent(ctx, event); err != nil {
			requeue := !d.Redelivered
			log.Error("worker: handler failed", zap.Bool("requeue", requeue), zap.Error(err))
			_ = d.Nack(false, requeue)
			return
		}
	}

	log.Debug("worker: lead event handled")
	_ = d.Ack(false)
}
