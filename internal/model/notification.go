package model

import "time"

// Notification is an in-app message persisted for a user, for example
// the "Booking Confirmed" entry written after a successful booking.
// Delivery of these rows is decoupled from email delivery; a failed
// email never removes or alters a notification.
type Notification struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
