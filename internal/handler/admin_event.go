package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-booking/internal/model"
	"github.com/iliyamo/event-ticket-booking/internal/repository"
)

// AdminEventHandler implements catalog CRUD for admins.  These
// endpoints never touch available_seats directly; inventory moves
// only through committed bookings.
type AdminEventHandler struct {
	Events *repository.EventRepo
}

func NewAdminEventHandler(events *repository.EventRepo) *AdminEventHandler {
	if events == nil {
		panic("nil repository passed to NewAdminEventHandler")
	}
	return &AdminEventHandler{Events: events}
}

type eventReq struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Venue       string    `json:"venue"`
	PriceCents  uint32    `json:"price_cents"`
	Rows        int       `json:"rows"`
	SeatsPerRow int       `json:"seats_per_row"`
	EventDate   time.Time `json:"event_date"`
}

// Create handles POST /v1/admin/events.  Total and available seat
// counts are derived from the grid, never taken from the client.
func (h *AdminEventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.Rows < 1 || req.Rows > 26 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows must be between 1 and 26"})
	}
	if req.SeatsPerRow < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats_per_row must be positive"})
	}
	if req.EventDate.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_date is required"})
	}
	if req.Category == "" {
		req.Category = "movie"
	}
	if req.Venue == "" {
		req.Venue = "Main Hall"
	}

	total := req.Rows * req.SeatsPerRow
	e := model.Event{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Venue:          req.Venue,
		PriceCents:     req.PriceCents,
		Rows:           req.Rows,
		SeatsPerRow:    req.SeatsPerRow,
		TotalSeats:     total,
		AvailableSeats: total,
		EventDate:      req.EventDate,
	}
	if err := h.Events.Create(c.Request().Context(), &e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create event"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": e})
}

// Update handles PUT /v1/admin/events/:id.  Only catalog metadata is
// updatable; the grid is immutable once seats can be booked against it.
func (h *AdminEventHandler) Update(c echo.Context) error {
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

	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if t := strings.TrimSpace(req.Title); t != "" {
		e.Title = t
	}
	if req.Description != "" {
		e.Description = req.Description
	}
	if req.Category != "" {
		e.Category = req.Category
	}
	if req.Venue != "" {
		e.Venue = req.Venue
	}
	if req.PriceCents != 0 {
		e.PriceCents = req.PriceCents
	}
	if !req.EventDate.IsZero() {
		e.EventDate = req.EventDate
	}

	if err := h.Events.Update(ctx, &e); err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update event"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": e})
}

// Delete handles DELETE /v1/admin/events/:id.  Bookings and booked
// seats cascade at the database level.
func (h *AdminEventHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Events.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete event"})
	}
	return c.NoContent(http.StatusNoContent)
}
