// Package lock implements short-lived advisory seat locks.  A lock
// serializes concurrent checkout attempts on one (event, seat) pair
// during the window between the availability check and the durable
// commit.  It is never authoritative: the store's uniqueness
// constraint remains the final arbiter, so losing the entire lock
// tier can cause wasted work but never a double booking.
package lock

import (
	"context"
	"time"
)

// Acquisition is the outcome of an Acquire call.  When OK is false,
// Holder carries the owner currently holding the lock so callers can
// tell "held by me" apart from "held by someone else".  Holder may be
// empty if the lock expired between the claim and the lookup; that is
// still reported as not acquired.
type Acquisition struct {
	OK     bool
	Holder string
}

// Manager is the advisory lock contract.  Acquire is atomic
// set-if-absent with expiry; re-claiming an unexpired lock you
// already hold succeeds.  Release is unconditional and idempotent –
// releasing a missing or expired lock is not an error.  A lock that
// is never released becomes claimable again once its TTL elapses.
type Manager interface {
	Acquire(ctx context.Context, eventID uint64, label, owner string, ttl time.Duration) (Acquisition, error)
	Release(ctx context.Context, eventID uint64, label string) error
	Holder(ctx context.Context, eventID uint64, label string) (string, error)
}
