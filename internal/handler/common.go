// Package handler implements the HTTP endpoints.  Handlers translate
// typed domain errors into status codes; business rules live in the
// booking service and the repositories.
package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the user_id claim set by the JWT middleware and
// converts it to uint64.  The claim arrives as float64 from JSON
// claims but other shapes are tolerated.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case float64:
		if t < 0 {
			return 0, errors.New("negative user id")
		}
		return uint64(t), nil
	case int64:
		if t < 0 {
			return 0, errors.New("negative user id")
		}
		return uint64(t), nil
	case string:
		id, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64)
		if err != nil || id == 0 {
			return 0, errors.New("invalid user id")
		}
		return id, nil
	default:
		return 0, errors.New("missing user id")
	}
}

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
