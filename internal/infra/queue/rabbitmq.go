package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	ExchangeName   = "ex.instagram-leads"
	QueueName      = "q.lead-events"
	BindingKey     = "lead.#"
	DLXName        = "ex.instagram-leads.dlx"
	DLQName        = "q.lead-events.dlq"
	DeadRoutingKey = "k.lead-events.dead"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
	Log  *zap.Logger
}

func NewRabbitMQ(url string, log *zap.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, eris.Wrap(err, "rabbitmq: dial")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, eris.Wrap(err, "rabbitmq: open channel")
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("rabbitmq connected", zap.String("exchange", ExchangeName), zap.String("queue", QueueName))
	return &RabbitMQ{Conn: conn, Ch: ch, Log: log}, nil
}

// topologyDeclarer is the part of *amqp.Channel the topology needs.
type topologyDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// setupTopology declares a topic exchange for lead events with a durable
// consumer queue. Rejected messages go to the dead letter queue.
func setupTopology(ch topologyDeclarer) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return eris.Wrap(err, "rabbitmq: declare dlx")
	}
	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return eris.Wrap(err, "rabbitmq: declare dlq")
	}
	if err := ch.QueueBind(DLQName, DeadRoutingKey, DLXName, false, nil); err != nil {
		return eris.Wrap(err, "rabbitmq: bind dlq")
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return eris.Wrap(err, "rabbitmq: declare exchange")
	}
	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": DeadRoutingKey,
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, args); err != nil {
		return eris.Wrap(err, "rabbitmq: declare queue")
	}
	if err := ch.QueueBind(QueueName, BindingKey, ExchangeName, false, nil); err != nil {
		return eris.Wrap(err, "rabbitmq: bind queue")
	}
	return nil
}

// Configured is false for a nil *RabbitMQ, which is how the service runs
// without a broker.
func (r *RabbitMQ) Configured() bool {
	return r != nil && r.Conn != nil
}

func (r *RabbitMQ) IsClosed() bool {
	return !r.Configured() || r.Conn.IsClosed()
}

func (r *RabbitMQ) Close() {
	if !r.Configured() {
		return
	}
	if r.Ch != nil {
		if err := r.Ch.Close(); err != nil {
			r.Log.Warn("rabbitmq channel close", zap.Error(err))
		}
	}
	if err := r.Conn.Close(); err != nil {
		r.Log.Warn("rabbitmq connection close", zap.Error(err))
	}
}
