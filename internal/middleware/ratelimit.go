package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// BookingRateLimit returns a fixed-window per-user limiter for the
// booking endpoint, backed by Redis INCR+EXPIRE.  When rdb is nil or
// maxPerMinute is zero it degrades to a pass-through so the service
// keeps working without Redis.
func BookingRateLimit(rdb *redis.Client, maxPerMinute int) echo.MiddlewareFunc {
	if rdb == nil || maxPerMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.RealIP()
			if uid := c.Get("user_id"); uid != nil {
				id = fmt.Sprintf("%v", uid)
			}
			key := fmt.Sprintf("ratelimit:booking:%s:%d", id, time.Now().Unix()/60)

			ctx := c.Request().Context()
			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Limiter faults never block bookings.
				return next(c)
			}
			if count == 1 {
				rdb.Expire(ctx, key, time.Minute)
			}
			if count > int64(maxPerMinute) {
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error": "rate limit exceeded, please try again later",
				})
			}
			return next(c)
		}
	}
}
