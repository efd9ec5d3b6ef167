package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAcquireAndConflict(t *testing.T) {
	m := NewMemoryManager()
	ctx := context.Background()

	got, err := m.Acquire(ctx, 1, "A1", "alice", time.Minute)
	require.NoError(t, err)
	assert.True(t, got.OK)

	// Different owner is rejected and told who holds the lock.
	got, err = m.Acquire(ctx, 1, "A1", "bob", time.Minute)
	require.NoError(t, err)
	assert.False(t, got.OK)
	assert.Equal(t, "alice", got.Holder)

	// Same label on a different event is independent.
	got, err = m.Acquire(ctx, 2, "A1", "bob", time.Minute)
	require.NoError(t, err)
	assert.True(t, got.OK)
}

func TestMemoryIdempotentReclaim(t *testing.T) {
	m := NewMemoryManager()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := m.Acquire(ctx, 1, "B2", "alice", time.Minute)
		require.NoError(t, err)
		assert.True(t, got.OK, "attempt %d", i+1)
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	m := NewMemoryManager()
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })

	got, err := m.Acquire(ctx, 1, "A1", "alice", 5*time.Minute)
	require.NoError(t, err)
	require.True(t, got.OK)

	// Still held just before expiry.
	now = now.Add(5*time.Minute - time.Second)
	got, err = m.Acquire(ctx, 1, "A1", "bob", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, got.OK)

	// Claimable by another owner once the TTL elapses.
	now = now.Add(2 * time.Second)
	got, err = m.Acquire(ctx, 1, "A1", "bob", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, got.OK)

	holder, err := m.Holder(ctx, 1, "A1")
	require.NoError(t, err)
	assert.Equal(t, "bob", holder)
}

func TestMemoryReleaseIdempotent(t *testing.T) {
	m := NewMemoryManager()
	ctx := context.Background()

	_, err := m.Acquire(ctx, 1, "A1", "alice", time.Minute)
	require.NoError(t, err)

	require.NoError(t, m.Release(ctx, 1, "A1"))
	// Releasing an already-released or never-held lock is not an error.
	require.NoError(t, m.Release(ctx, 1, "A1"))
	require.NoError(t, m.Release(ctx, 9, "Z9"))

	got, err := m.Acquire(ctx, 1, "A1", "bob", time.Minute)
	require.NoError(t, err)
	assert.True(t, got.OK)
}
