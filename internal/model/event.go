package model

import "time"

// Event mirrors the 'events' table.  The seat grid is fixed at
// creation time: Rows lettered rows of SeatsPerRow seats each, so a
// seat label like "C7" addresses row C, seat 7.
//
// Fields:
//   - PriceCents: per-seat price in the smallest currency unit.
//   - AvailableSeats: denormalized counter decremented on commit; the
//     booked_seats uniqueness constraint is the real arbiter, this is
//     just the fast capacity check.
type Event struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Venue          string    `json:"venue"`
	PriceCents     uint32    `json:"price_cents"`
	Rows           int       `json:"rows"`
	SeatsPerRow    int       `json:"seats_per_row"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	EventDate      time.Time `json:"event_date"`
	CreatedAt      time.Time `json:"created_at"`
}
