package model

import "time"

// Booking mirrors the 'bookings' table.  Seats keeps the canonical
// seat labels as a comma-joined string for display; the authoritative
// per-seat rows live in booked_seats.
type Booking struct {
	ID              uint64    `json:"id"`
	Reference       string    `json:"reference"`
	UserID          uint64    `json:"user_id"`
	EventID         uint64    `json:"event_id"`
	Seats           string    `json:"seats"`
	NumSeats        int       `json:"num_seats"`
	TotalPriceCents uint32    `json:"total_price_cents"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// BookedSeat mirrors one row of 'booked_seats'.  The
// (event_id, seat_label) pair is UNIQUE: two bookings can never hold
// the same seat for the same event, whatever the lock layer saw.
type BookedSeat struct {
	ID        uint64 `json:"id"`
	BookingID uint64 `json:"booking_id"`
	EventID   uint64 `json:"event_id"`
	SeatLabel string `json:"seat_label"`
}

const StatusConfirmed = "confirmed"
