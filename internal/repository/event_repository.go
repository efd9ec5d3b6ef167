package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// EventRepo provides data access to the events table.  The booking
// orchestrator only reads from it; the available_seats counter is
// mutated exclusively inside BookingRepo.CreateBooking so the
// inventory invariant has a single writer path.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the provided database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, title, description, category, venue, price_cents,
	` + "`rows`" + `, seats_per_row, total_seats, available_seats, event_date, created_at`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.Venue, &e.PriceCents,
		&e.Rows, &e.SeatsPerRow, &e.TotalSeats, &e.AvailableSeats, &e.EventDate, &e.CreatedAt)
	return e, err
}

// GetByID fetches a single event.  Returns model.ErrEventNotFound for
// a missing row so callers do not depend on sql.ErrNoRows.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, model.ErrEventNotFound
	}
	return e, err
}

// List returns all events ordered by date, soonest first.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY event_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create inserts a new event.  TotalSeats and AvailableSeats must
// already be set to rows*seats_per_row by the caller.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (title, description, category, venue, price_cents, `+"`rows`"+`, seats_per_row, total_seats, available_seats, event_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Title, e.Description, e.Category, e.Venue, e.PriceCents,
		e.Rows, e.SeatsPerRow, e.TotalSeats, e.AvailableSeats, e.EventDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// Update modifies catalog metadata only.  Grid dimensions and the
// availability counter are deliberately not updatable here: resizing
// a grid under committed seats would break label addressing.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET title = ?, description = ?, category = ?, venue = ?, price_cents = ?, event_date = ? WHERE id = ?`,
		e.Title, e.Description, e.Category, e.Venue, e.PriceCents, e.EventDate, e.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrEventNotFound
	}
	return nil
}

// Delete removes an event.  Bookings and booked seats cascade via
// foreign keys.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrEventNotFound
	}
	return nil
}
