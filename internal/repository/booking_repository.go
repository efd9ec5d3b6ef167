package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// BookingRepo is the durable reservation store.  The booked_seats
// table carries UNIQUE(event_id, seat_label); that constraint, not
// any advisory lock, is what finally prevents double booking.  All of
// a booking's rows plus the inventory decrement are committed as one
// transaction, so a booking never partially exists.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// mysqlDuplicateEntry is the server error number raised when a unique
// constraint is violated.
const mysqlDuplicateEntry = 1062

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// CommittedSeats returns which of the given canonical labels are
// already durably booked for the event.  Used as the orchestrator's
// pre-check; the empty result for an empty label set avoids a
// malformed IN clause.
func (r *BookingRepo) CommittedSeats(ctx context.Context, eventID uint64, labels []string) ([]string, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	query := `SELECT seat_label FROM booked_seats WHERE event_id = ? AND seat_label IN (?` +
		strings.Repeat(",?", len(labels)-1) + `)`
	args := make([]interface{}, 0, len(labels)+1)
	args = append(args, eventID)
	for _, l := range labels {
		args = append(args, l)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var taken []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		taken = append(taken, label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(taken)
	return taken, nil
}

// CreateBooking durably inserts the booking, one booked_seats row per
// label and the inventory decrement as a single atomic unit.  When a
// concurrent committer wins the race on any label, the whole unit is
// rolled back and a *model.SeatsUnavailableError is returned carrying
// the conflicting labels re-queried from the store (the violating set
// may be wider than the single row that tripped the constraint).
func (r *BookingRepo) CreateBooking(ctx context.Context, b *model.Booking, labels []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (reference, user_id, event_id, seats, num_seats, total_price_cents, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Reference, b.UserID, b.EventID, b.Seats, b.NumSeats, b.TotalPriceCents, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	query := `INSERT INTO booked_seats (booking_id, event_id, seat_label) VALUES `
	args := make([]interface{}, 0, len(labels)*3)
	for i, label := range labels {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, b.ID, b.EventID, label)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateEntry(err) {
			_ = tx.Rollback()
			return r.conflictError(ctx, b.EventID, labels)
		}
		return err
	}

	// Guard keeps available_seats from ever going negative even if the
	// optimistic pre-check raced.
	upd, err := tx.ExecContext(ctx,
		`UPDATE events SET available_seats = available_seats - ? WHERE id = ? AND available_seats >= ?`,
		b.NumSeats, b.EventID, b.NumSeats)
	if err != nil {
		return err
	}
	n, err := upd.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotEnoughCapacity
	}

	if err := tx.Commit(); err != nil {
		if isDuplicateEntry(err) {
			return r.conflictError(ctx, b.EventID, labels)
		}
		return err
	}
	committed = true
	b.CreatedAt = time.Now().UTC()
	return nil
}

// conflictError re-queries which of the requested labels are now
// committed and wraps them in the typed conflict error.  Runs outside
// the failed transaction, which has already been rolled back.
func (r *BookingRepo) conflictError(ctx context.Context, eventID uint64, labels []string) error {
	taken, err := r.CommittedSeats(ctx, eventID, labels)
	if err != nil || len(taken) == 0 {
		// The conflicting rows must exist; if we cannot see them,
		// report the whole request so the caller still gets labels.
		taken = append([]string(nil), labels...)
		sort.Strings(taken)
	}
	return &model.SeatsUnavailableError{Labels: taken}
}

// BookingDetail is a booking joined with denormalized event fields
// for listing endpoints.
type BookingDetail struct {
	model.Booking
	EventTitle string    `json:"event_title"`
	Venue      string    `json:"venue"`
	EventDate  time.Time `json:"event_date"`
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.user_id, b.event_id, b.seats, b.num_seats,
	                  b.total_price_cents, b.status, b.created_at,
	                  e.title, e.venue, e.event_date
	           FROM bookings b
	           JOIN events e ON e.id = b.event_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BookingDetail
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(&d.ID, &d.Reference, &d.UserID, &d.EventID, &d.Seats, &d.NumSeats,
			&d.TotalPriceCents, &d.Status, &d.CreatedAt,
			&d.EventTitle, &d.Venue, &d.EventDate); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Summary aggregates system-wide booking figures for reporting.
type Summary struct {
	TotalBookings  int    `json:"total_bookings"`
	TotalEvents    int    `json:"total_events"`
	TotalUsers     int    `json:"total_users"`
	TotalSeatsSold int    `json:"total_seats_booked"`
	TotalRevenue   uint64 `json:"total_revenue_cents"`
}

// GetSummary computes the overall booking summary.
func (r *BookingRepo) GetSummary(ctx context.Context) (Summary, error) {
	const q = `SELECT
	    (SELECT COUNT(*) FROM bookings),
	    (SELECT COUNT(*) FROM events),
	    (SELECT COUNT(*) FROM users),
	    (SELECT COALESCE(SUM(num_seats), 0) FROM bookings),
	    (SELECT COALESCE(SUM(total_price_cents), 0) FROM bookings)`
	var s Summary
	err := r.db.QueryRowContext(ctx, q).Scan(
		&s.TotalBookings, &s.TotalEvents, &s.TotalUsers, &s.TotalSeatsSold, &s.TotalRevenue)
	return s, err
}

// EventReport aggregates bookings per event.
type EventReport struct {
	EventID        uint64    `json:"event_id"`
	EventTitle     string    `json:"event_title"`
	EventDate      time.Time `json:"event_date"`
	Category       string    `json:"category"`
	Venue          string    `json:"venue"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	SeatsBooked    int       `json:"seats_booked"`
	BookingCount   int       `json:"booking_count"`
	RevenueCents   uint64    `json:"revenue_cents"`
}

// ListEventReports returns per-event booking aggregates ordered by
// event date.
func (r *BookingRepo) ListEventReports(ctx context.Context) ([]EventReport, error) {
	const q = `SELECT e.id, e.title, e.event_date, e.category, e.venue,
	                  e.total_seats, e.available_seats,
	                  e.total_seats - e.available_seats,
	                  COUNT(b.id), COALESCE(SUM(b.total_price_cents), 0)
	           FROM events e
	           LEFT JOIN bookings b ON b.event_id = e.id
	           GROUP BY e.id, e.title, e.event_date, e.category, e.venue, e.total_seats, e.available_seats
	           ORDER BY e.event_date`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EventReport
	for rows.Next() {
		var rep EventReport
		if err := rows.Scan(&rep.EventID, &rep.EventTitle, &rep.EventDate, &rep.Category, &rep.Venue,
			&rep.TotalSeats, &rep.AvailableSeats, &rep.SeatsBooked, &rep.BookingCount, &rep.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
