package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig points the audit consumer at a broker queue and a log file.
type ConsumerConfig struct {
	URL     string
	Queue   string
	LogPath string
}

// StartTransactionConsumer consumes transaction events and appends one line
// per event to the audit log. It reconnects with exponential backoff and
// returns only when ctx is cancelled.
func StartTransactionConsumer(ctx context.Context, cfg ConsumerConfig) error {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join("logs", "transactions.log")
	}

	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			log.Printf("ledger-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, cfg)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("ledger-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg ConsumerConfig) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("ledger-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := appendEvent(cfg.LogPath, d.Body); err != nil {
				log.Printf("ledger-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // no requeue, a poison message would loop
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func appendEvent(path string, body []byte) error {
	var ev TransactionRecordedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as one audit log line.
func FormatLine(ev TransactionRecordedEvent) string {
	detail := fmt.Sprintf("method=%q | actor_id=%d", ev.Method, ev.ActorID)
	if ev.Kind == "debit" {
		detail = fmt.Sprintf("item_id=%s | item=%q | qty=%d", ev.ItemID, ev.ItemName, ev.Quantity)
	}
	return fmt.Sprintf("[%s] %s recorded | event_id=%s | display_id=%s | amount=%d cents | balance=%d cents | %s\n",
		ev.RecordedAt, ev.Kind, ev.EventID, ev.DisplayID, ev.AmountCents, ev.BalanceCents, detail)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
