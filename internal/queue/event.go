// Package queue defines the message payloads and the broker plumbing
// for post-commit confirmation delivery.
package queue

// BookingConfirmedEvent is published after a booking is durably
// committed.  It is fully denormalized so the worker can build and
// send the confirmation without touching the primary database.
type BookingConfirmedEvent struct {
	BookingID       uint64   `json:"booking_id"`
	Reference       string   `json:"reference"`
	UserID          uint64   `json:"user_id"`
	UserEmail       string   `json:"user_email"`
	EventID         uint64   `json:"event_id"`
	EventTitle      string   `json:"event_title"`
	Category        string   `json:"category"`
	Venue           string   `json:"venue"`
	EventDate       string   `json:"event_date"`
	SeatLabels      []string `json:"seats"`
	NumSeats        int      `json:"num_seats"`
	TotalPriceCents uint32   `json:"total_price_cents"`
	ConfirmedAt     string   `json:"confirmed_at"`
}
