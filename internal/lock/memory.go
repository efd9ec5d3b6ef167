package lock

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	owner     string
	expiresAt time.Time
}

// MemoryManager is an in-process Manager used in tests and single-node
// deployments without Redis.  It honors the same semantics as the
// Redis implementation: atomic claim, TTL expiry, idempotent release.
// The clock is injectable so expiry can be simulated without sleeping.
type MemoryManager struct {
	mu    sync.Mutex
	locks map[string]memEntry
	now   func() time.Time
}

// NewMemoryManager returns an empty in-memory Manager using the wall
// clock.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{locks: make(map[string]memEntry), now: time.Now}
}

// SetClock replaces the time source.  Tests use this to advance time
// past lock TTLs deterministically.
func (m *MemoryManager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Acquire claims the seat if it is free or expired.  A live lock held
// by the same owner is re-claimed successfully.
func (m *MemoryManager) Acquire(_ context.Context, eventID uint64, label, owner string, ttl time.Duration) (Acquisition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := seatLockKey(eventID, label)
	if e, ok := m.locks[key]; ok && m.now().Before(e.expiresAt) {
		if e.owner == owner {
			return Acquisition{OK: true, Holder: owner}, nil
		}
		return Acquisition{OK: false, Holder: e.owner}, nil
	}
	m.locks[key] = memEntry{owner: owner, expiresAt: m.now().Add(ttl)}
	return Acquisition{OK: true, Holder: owner}, nil
}

// Release drops the seat key if present.
func (m *MemoryManager) Release(_ context.Context, eventID uint64, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, seatLockKey(eventID, label))
	return nil
}

// Holder reports the live owner of the seat lock, or "".
func (m *MemoryManager) Holder(_ context.Context, eventID uint64, label string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.locks[seatLockKey(eventID, label)]; ok && m.now().Before(e.expiresAt) {
		return e.owner, nil
	}
	return "", nil
}
