package helpers

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher wraps an AMQP channel and queue for publishing messages.
type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// Declare durable queue
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, Queue: queue}, nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishJSON publishes a JSON-encoded message to the default queue.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue
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

// DelayScheduler delivers a message to workQueue after a per-message
// delay. Messages are published into a companion wait queue with a TTL
// and no consumer; when the TTL expires the broker dead-letters them
// into the work queue, where the worker picks them up.
type DelayScheduler struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	WorkQueue string
	WaitQueue string
}

func NewDelayScheduler(url, workQueue string) (*DelayScheduler, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(workQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	waitQueue := workQueue + ".wait"
	_, err = ch.QueueDeclare(waitQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": workQueue,
	})
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &DelayScheduler{conn: conn, ch: ch, WorkQueue: workQueue, WaitQueue: waitQueue}, nil
}

func (s *DelayScheduler) Close() {
	if s == nil {
		return
	}
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

// Schedule publishes payload to the wait queue with an expiration equal
// to delay. Delivery to the work queue happens no earlier than the delay.
func (s *DelayScheduler) Schedule(ctx context.Context, payload any, delay time.Duration) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.ch.PublishWithContext(ctx,
		"",
		s.WaitQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Expiration:   strconv.FormatInt(delay.Milliseconds(), 10),
			Body:         b,
		},
	)
}
