// Domain error taxonomy shared by the seat codec, the booking
// orchestrator and the repositories.  Handlers translate these values
// into HTTP responses; nothing below this package imports net/http.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEventNotFound is returned when the referenced event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrNotEnoughCapacity is returned when a booking requests more seats
// than the event currently has available.  It is raised by the cheap
// optimistic pre-check before any lock or store write happens.
var ErrNotEnoughCapacity = errors.New("not enough seats available")

// ErrStoreUnavailable wraps infrastructure failures of the durable
// store.  Callers should treat it as retryable.
var ErrStoreUnavailable = errors.New("reservation store unavailable")

// ErrLockManagerUnavailable wraps infrastructure failures of the seat
// lock tier.  Callers should treat it as retryable.
var ErrLockManagerUnavailable = errors.New("lock manager unavailable")

// InvalidSeatError reports a seat label that is malformed or outside
// the event's grid.  No side effects have occurred when it is returned.
type InvalidSeatError struct {
	Label  string
	Reason string
}

func (e *InvalidSeatError) Error() string {
	return fmt.Sprintf("invalid seat label %q: %s", e.Label, e.Reason)
}

// SeatsUnavailableError reports seats that are already durably booked.
// Labels holds the specific conflicting labels, sorted.
type SeatsUnavailableError struct {
	Labels []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seat(s) already booked: %s", strings.Join(e.Labels, ", "))
}

// SeatLockedError reports a seat temporarily locked by another
// in-flight booking attempt.  The caller may retry once the lock
// expires or is released.
type SeatLockedError struct {
	Label string
}

func (e *SeatLockedError) Error() string {
	return fmt.Sprintf("seat %s is temporarily locked by another user", e.Label)
}
