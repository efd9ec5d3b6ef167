// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticket-booking/internal/handler"
	"github.com/iliyamo/event-ticket-booking/internal/middleware"
	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Events        *handler.EventHandler
	AdminEvents   *handler.AdminEventHandler
	Bookings      *handler.BookingHandler
	Notifications *handler.NotificationHandler
	Reports       *handler.ReportHandler
}

// Register mounts all routes.  Public browse endpoints take no auth;
// everything under the authenticated group requires a bearer token,
// and admin endpoints additionally require the ADMIN role.  The rate
// limiter guards only the booking submission path, where lock churn
// from abusive clients would hurt.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client, bookingPerMinute int) {
	e.GET("/healthz", handler.Health)

	// Public: auth and catalog browsing.
	e.POST("/v1/auth/register", h.Auth.Register)
	e.POST("/v1/auth/login", h.Auth.Login)
	e.GET("/v1/events", h.Events.List)
	e.GET("/v1/events/:id", h.Events.Get)
	e.GET("/v1/events/:id/seats", h.Events.SeatMap)

	// Authenticated endpoints.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleUser))
	auth.GET("/me", h.Auth.Me)
	auth.POST("/bookings", h.Bookings.Create, middleware.BookingRateLimit(rdb, bookingPerMinute))
	auth.GET("/bookings/my", h.Bookings.ListMine)
	auth.GET("/notifications", h.Notifications.List)
	auth.GET("/notifications/unread-count", h.Notifications.UnreadCount)
	auth.PUT("/notifications/:id/read", h.Notifications.MarkRead)

	// Admin-only catalog management and reporting.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/events", h.AdminEvents.Create)
	admin.PUT("/events/:id", h.AdminEvents.Update)
	admin.DELETE("/events/:id", h.AdminEvents.Delete)
	admin.GET("/reports/summary", h.Reports.Summary)
	admin.GET("/reports/event-wise", h.Reports.EventWise)
}
