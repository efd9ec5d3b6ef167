package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-booking/internal/lock"
	"github.com/iliyamo/event-ticket-booking/internal/model"
	"github.com/iliyamo/event-ticket-booking/internal/repository"
)

// EventHandler exposes public, read-only catalog endpoints.  The seat
// map merges durable state (booked labels) with the volatile lock
// tier (labels currently locked by in-flight attempts).
type EventHandler struct {
	Events   *repository.EventRepo
	Bookings *repository.BookingRepo
	Locks    lock.Manager
}

func NewEventHandler(events *repository.EventRepo, bookings *repository.BookingRepo, locks lock.Manager) *EventHandler {
	if events == nil || bookings == nil || locks == nil {
		panic("nil dependency passed to NewEventHandler")
	}
	return &EventHandler{Events: events, Bookings: bookings, Locks: locks}
}

// List handles GET /v1/events.
func (h *EventHandler) List(c echo.Context) error {
	items, err := h.Events.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load events"})
	}
	if items == nil {
		items = []model.Event{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	e, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": e})
}

// SeatMap handles GET /v1/events/:id/seats.  Booked labels come from
// the store; locked labels are discovered by probing the lock tier
// across the grid, skipping seats that are already booked.  Lock
// probe failures degrade to an empty locked list rather than failing
// the whole map.
func (h *EventHandler) SeatMap(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	all := make([]string, 0, e.Rows*e.SeatsPerRow)
	for r := 0; r < e.Rows; r++ {
		for n := 1; n <= e.SeatsPerRow; n++ {
			all = append(all, fmt.Sprintf("%c%d", 'A'+r, n))
		}
	}
	booked, err := h.Bookings.CommittedSeats(ctx, e.ID, all)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat map"})
	}
	if booked == nil {
		booked = []string{}
	}
	bookedSet := make(map[string]struct{}, len(booked))
	for _, l := range booked {
		bookedSet[l] = struct{}{}
	}

	locked := []string{}
	for _, label := range all {
		if _, ok := bookedSet[label]; ok {
			continue
		}
		holder, err := h.Locks.Holder(ctx, e.ID, label)
		if err != nil {
			locked = locked[:0]
			break
		}
		if holder != "" {
			locked = append(locked, label)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"event_id":        e.ID,
		"rows":            e.Rows,
		"seats_per_row":   e.SeatsPerRow,
		"price_cents":     e.PriceCents,
		"available_seats": e.AvailableSeats,
		"booked_seats":    booked,
		"locked_seats":    locked,
	})
}
