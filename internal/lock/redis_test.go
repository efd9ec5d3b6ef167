package lock

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisAcquireFree(t *testing.T) {
	db, mock := redismock.NewClientMock()
	m := NewRedisManager(db)
	ctx := context.Background()

	mock.ExpectSetNX("seat_lock:7:A1", "42", 5*time.Minute).SetVal(true)

	got, err := m.Acquire(ctx, 7, "A1", "42", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, got.OK)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisAcquireHeldBySameOwner(t *testing.T) {
	db, mock := redismock.NewClientMock()
	m := NewRedisManager(db)
	ctx := context.Background()

	mock.ExpectSetNX("seat_lock:7:A1", "42", 5*time.Minute).SetVal(false)
	mock.ExpectGet("seat_lock:7:A1").SetVal("42")

	got, err := m.Acquire(ctx, 7, "A1", "42", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, got.OK, "re-claim by the same owner succeeds")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisAcquireHeldByOther(t *testing.T) {
	db, mock := redismock.NewClientMock()
	m := NewRedisManager(db)
	ctx := context.Background()

	mock.ExpectSetNX("seat_lock:7:A1", "42", 5*time.Minute).SetVal(false)
	mock.ExpectGet("seat_lock:7:A1").SetVal("99")

	got, err := m.Acquire(ctx, 7, "A1", "42", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, got.OK)
	assert.Equal(t, "99", got.Holder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisAcquireExpiredBetweenCalls(t *testing.T) {
	db, mock := redismock.NewClientMock()
	m := NewRedisManager(db)
	ctx := context.Background()

	mock.ExpectSetNX("seat_lock:7:A1", "42", 5*time.Minute).SetVal(false)
	mock.ExpectGet("seat_lock:7:A1").RedisNil()

	got, err := m.Acquire(ctx, 7, "A1", "42", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, got.OK)
	assert.Empty(t, got.Holder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	m := NewRedisManager(db)
	ctx := context.Background()

	mock.ExpectDel("seat_lock:7:A1").SetVal(1)
	require.NoError(t, m.Release(ctx, 7, "A1"))

	// Deleting a missing key still succeeds.
	mock.ExpectDel("seat_lock:7:A1").SetVal(0)
	require.NoError(t, m.Release(ctx, 7, "A1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisHolder(t *testing.T) {
	db, mock := redismock.NewClientMock()
	m := NewRedisManager(db)
	ctx := context.Background()

	mock.ExpectGet("seat_lock:7:B2").SetVal("42")
	holder, err := m.Holder(ctx, 7, "B2")
	require.NoError(t, err)
	assert.Equal(t, "42", holder)

	mock.ExpectGet("seat_lock:7:B3").RedisNil()
	holder, err = m.Holder(ctx, 7, "B3")
	require.NoError(t, err)
	assert.Empty(t, holder)
	assert.NoError(t, mock.ExpectationsWereMet())
}
