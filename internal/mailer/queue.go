package mailer

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Queue hands messages to the mail worker through a durable RabbitMQ queue.
type Queue struct {
	conn  *amqp.Connection
	ch    publisher
	queue string
}

func NewQueue(url, queue string) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Queue{conn: conn, ch: ch, queue: queue}, nil
}

// DeclareQueue declares the durable email queue on ch.
func DeclareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	return err
}

func (q *Queue) Close() {
	if q == nil {
		return
	}
	if ch, ok := q.ch.(*amqp.Channel); ok && ch != nil {
		_ = ch.Close()
	}
	if q.conn != nil {
		_ = q.conn.Close()
	}
}

// Send publishes msg as a persistent JSON job on the default exchange.
func (q *Queue) Send(ctx context.Context, msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.ch.PublishWithContext(ctx,
		"",      // default exchange
		q.queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// Consume sends every delivered job through s until deliveries closes or ctx
// ends. Malformed jobs are dropped; failed sends are requeued.
func Consume(ctx context.Context, deliveries <-chan amqp.Delivery, s Sender) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			handle(ctx, d, s)
		}
	}
}

func handle(ctx context.Context, d amqp.Delivery, s Sender) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.To == "" {
		logrus.WithError(err).Warn("dropping malformed email job")
		_ = d.Nack(false, false)
		return
	}
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := s.Send(c, msg); err != nil {
		log := logrus.WithError(err).WithField("to", msg.To)
		if d.Redelivered {
			log.Error("email send failed again, dropping job") // One retry only
			_ = d.Nack(false, false)
			return
		}
		log.Warn("email send failed, requeueing")
		_ = d.Nack(false, true)
		return
	}
	logrus.WithField("to", msg.To).Info("Email sent")
	_ = d.Ack(false)
}
