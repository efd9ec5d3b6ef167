package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-booking/internal/repository"
)

// ReportHandler serves booking aggregates for admins.
type ReportHandler struct {
	Bookings *repository.BookingRepo
}

func NewReportHandler(bookings *repository.BookingRepo) *ReportHandler {
	if bookings == nil {
		panic("nil repository passed to NewReportHandler")
	}
	return &ReportHandler{Bookings: bookings}
}

// Summary handles GET /v1/admin/reports/summary.
func (h *ReportHandler) Summary(c echo.Context) error {
	s, err := h.Bookings.GetSummary(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute summary"})
	}
	return c.JSON(http.StatusOK, s)
}

// EventWise handles GET /v1/admin/reports/event-wise.
func (h *ReportHandler) EventWise(c echo.Context) error {
	items, err := h.Bookings.ListEventReports(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute report"})
	}
	if items == nil {
		items = []repository.EventReport{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
