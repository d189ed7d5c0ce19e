package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue is the durable queue transaction events are routed to.
const DefaultQueue = "ledger.transactions"

// Publisher sends events to a RabbitMQ queue through the default exchange.
// It dials per message; publishing is rare compared to lookups and a broker
// outage must not leave a broken connection behind.
type Publisher struct {
	url   string
	queue string
}

func NewPublisher(url, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{url: url, queue: queue}
}

// PublishTransactionRecorded publishes ev as a persistent JSON message.
// Errors are logged and returned; callers are free to ignore them.
func (p *Publisher) PublishTransactionRecorded(ctx context.Context, ev TransactionRecordedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
