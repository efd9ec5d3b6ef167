package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-ticket-booking/internal/email"
)

// ConfirmationWorker consumes booking.confirmed messages and sends
// the confirmation email.  Delivery is best-effort and fully isolated
// from the booking path: a terminal delivery failure is logged and
// the message rejected, never surfaced to the booking caller.
type ConfirmationWorker struct {
	URL         string        // AMQP broker URL
	Sender      email.Sender  // outbound mail transport
	AdminEmail  string        // optional BCC-style admin copy
	MaxAttempts int           // delivery attempts per message, minimum 1
	RetryDelay  time.Duration // delay before the first retry, doubled after each failure
}

// Run connects to the broker, declares the durable queue and consumes
// until the process exits.  It reconnects with capped backoff when
// the broker drops.
func (w *ConfirmationWorker) Run() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(w.URL)
		if err != nil {
			log.Printf("confirmation-worker: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := w.consumeLoop(conn); err != nil {
			log.Printf("confirmation-worker: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func (w *ConfirmationWorker) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("confirmation-worker: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(ConfirmationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ConfirmationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := w.handleMessage(d.Body); err != nil {
			log.Printf("confirmation-worker: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (w *ConfirmationWorker) handleMessage(body []byte) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	recipients := []string{ev.UserEmail}
	if w.AdminEmail != "" && w.AdminEmail != ev.UserEmail {
		recipients = append(recipients, w.AdminEmail)
	}
	subject, msgBody := ConfirmationMessage(ev)

	if err := deliverWithRetry(w.Sender, recipients, subject, msgBody, w.MaxAttempts, w.RetryDelay); err != nil {
		return fmt.Errorf("send confirmation for booking %d: %w", ev.BookingID, err)
	}
	log.Printf("confirmation-worker: sent booking %d confirmation to %s", ev.BookingID, strings.Join(recipients, ","))
	return nil
}

// deliverWithRetry attempts delivery up to maxAttempts times, doubling
// the delay after each failure.  The retry budget is bounded so a
// dead relay never wedges the worker on one message.
func deliverWithRetry(s email.Sender, to []string, subject, body string, maxAttempts int, delay time.Duration) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = s.Send(to, subject, body); err == nil {
			return nil
		}
		if attempt < maxAttempts {
			log.Printf("confirmation-worker: delivery attempt %d/%d failed: %v", attempt, maxAttempts, err)
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}

// ConfirmationMessage builds the subject and plain-text body for a
// booking confirmation from the denormalized payload.
func ConfirmationMessage(ev BookingConfirmedEvent) (subject, body string) {
	subject = fmt.Sprintf("Booking Confirmed - #%d", ev.BookingID)
	body = fmt.Sprintf(
		"Booking Confirmation\n%s\n\n"+
			"Booking ID  : #%d\n"+
			"Reference   : %s\n"+
			"Event       : %s\n"+
			"Category    : %s\n"+
			"Venue       : %s\n"+
			"Date & Time : %s\n"+
			"Seats       : %s\n"+
			"No. of Seats: %d\n"+
			"Total Paid  : %.2f\n"+
			"Status      : CONFIRMED\n\n"+
			"Thank you for booking with us. Enjoy the event!\n\n"+
			"Ticket Booking Team",
		strings.Repeat("=", 40),
		ev.BookingID,
		ev.Reference,
		ev.EventTitle,
		ev.Category,
		ev.Venue,
		ev.EventDate,
		strings.Join(ev.SeatLabels, ","),
		ev.NumSeats,
		float64(ev.TotalPriceCents)/100,
	)
	return subject, body
}
