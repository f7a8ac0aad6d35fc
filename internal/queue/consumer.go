package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultLogPath is where the consumer appends booking events.
var DefaultLogPath = filepath.Join("logs", "booking.log")

// Consumer listens on the booking.events queue and appends one line per
// event to a log file.
type Consumer struct {
	url     string
	logPath string
}

const maxBackoff = 30 * time.Second

// nextBackoff doubles d up to maxBackoff.
func nextBackoff(d time.Duration) time.Duration {
	return min(d*2, maxBackoff)
}

func NewConsumer(url, logPath string) *Consumer {
	if logPath == "" {
		logPath = DefaultLogPath
	}
	return &Consumer{url: url, logPath: logPath}
}

// Run connects to RabbitMQ, declares the durable queue and consumes until
// ctx is cancelled. Broker failures are logged and retried with
// exponential backoff capped at 30s; Run only returns once ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			log.Printf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(BookingQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(BookingQueueName, "", false, false, false, false, nil)
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
			if err := c.handleMessage(d.Body); err != nil {
				log.Printf("booking-consumer: handle message failed: %v", err)
				// no requeue: a poison message would loop forever
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders an event as a single log line.
func FormatLine(ev BookingEvent) string {
	ids := "[" + strings.Join(ev.BookingIDs, ",") + "]"
	line := fmt.Sprintf("[%s] %s | event_id=%s | type=%s | bookings=%s | item=%s | user=%s | total=%.2f",
		ev.OccurredAt.UTC().Format(time.RFC3339), describe(ev.Type), ev.EventID, ev.BookingType,
		ids, ev.ItemID, ev.UserID, ev.TotalPrice)
	if ev.Status != "" || ev.PaymentStatus != "" {
		line += fmt.Sprintf(" | status=%s/%s", ev.Status, ev.PaymentStatus)
	}
	if ev.SubmissionID != "" {
		line += " | submission=" + ev.SubmissionID
	}
	if ev.Detail != "" {
		line += fmt.Sprintf(" | detail=%q", ev.Detail)
	}
	return line + "\n"
}

func describe(t EventType) string {
	switch t {
	case EventBookingCreated:
		return "Booking created"
	case EventBookingPaid:
		return "Payment confirmed"
	case EventBookingCancelled:
		return "Booking cancelled"
	case EventBookingCompensated:
		return "Booking compensated"
	}
	return string(t)
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
