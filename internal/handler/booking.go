package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-booking/internal/booking"
	"github.com/iliyamo/event-ticket-booking/internal/model"
	"github.com/iliyamo/event-ticket-booking/internal/repository"
)

// Reserver is the slice of the booking service this handler needs;
// tests substitute a fake.
type Reserver interface {
	Reserve(ctx context.Context, req booking.Request) (*booking.Result, error)
}

// userLookup resolves the authenticated user's record.
type userLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// BookingHandler exposes reservation submission and listing.
type BookingHandler struct {
	Service  Reserver
	Bookings *repository.BookingRepo
	Users    userLookup
}

func NewBookingHandler(svc Reserver, bookings *repository.BookingRepo, users *repository.UserRepo) *BookingHandler {
	if svc == nil || bookings == nil || users == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Service: svc, Bookings: bookings, Users: users}
}

type createBookingReq struct {
	EventID uint64   `json:"event_id"`
	Seats   []string `json:"seats"`
}

// Create handles POST /v1/bookings.  It resolves the caller, runs the
// reservation attempt and maps the typed failure taxonomy onto HTTP
// statuses.  Infrastructure faults surface as 503 so clients retry.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.EventID == 0 || len(req.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id and seats are required"})
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	res, err := h.Service.Reserve(ctx, booking.Request{
		UserID:    userID,
		UserEmail: user.Email,
		EventID:   req.EventID,
		Seats:     req.Seats,
	})
	if err != nil {
		return bookingError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"booking":     res.Booking,
		"event_title": res.Event.Title,
		"venue":       res.Event.Venue,
		"event_date":  res.Event.EventDate,
	})
}

// bookingError translates the reservation error taxonomy.
func bookingError(c echo.Context, err error) error {
	var invalid *model.InvalidSeatError
	var unavailable *model.SeatsUnavailableError
	var locked *model.SeatLockedError
	switch {
	case errors.As(err, &invalid):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": invalid.Error()})
	case errors.Is(err, model.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, model.ErrNotEnoughCapacity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "not enough seats available"})
	case errors.As(err, &unavailable):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       unavailable.Error(),
			"unavailable": unavailable.Labels,
		})
	case errors.As(err, &locked):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":  locked.Error(),
			"locked": locked.Label,
		})
	case errors.Is(err, model.ErrStoreUnavailable), errors.Is(err, model.ErrLockManagerUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable, please retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
}

// ListMine handles GET /v1/bookings/my.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	if items == nil {
		items = []repository.BookingDetail{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
