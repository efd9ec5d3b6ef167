package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// seat_lock:<event>:<label>  ->  owner id, with TTL
func seatLockKey(eventID uint64, label string) string {
	return fmt.Sprintf("seat_lock:%d:%s", eventID, label)
}

// RedisManager stores seat locks in Redis using SET NX EX.  Keys live
// in a volatile tier; loss on restart is tolerated by design.
type RedisManager struct {
	rdb *redis.Client
}

// NewRedisManager returns a Manager backed by the provided client.
func NewRedisManager(rdb *redis.Client) *RedisManager {
	return &RedisManager{rdb: rdb}
}

// Acquire attempts SET NX EX on the seat key.  When the key is
// already set it reads the current holder instead of failing blind;
// the same owner re-claiming its own unexpired lock is a success.
func (m *RedisManager) Acquire(ctx context.Context, eventID uint64, label, owner string, ttl time.Duration) (Acquisition, error) {
	key := seatLockKey(eventID, label)
	ok, err := m.rdb.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return Acquisition{}, err
	}
	if ok {
		return Acquisition{OK: true, Holder: owner}, nil
	}
	holder, err := m.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		// Expired between SETNX and GET; report contended, the caller
		// will simply retry the whole attempt.
		return Acquisition{OK: false}, nil
	}
	if err != nil {
		return Acquisition{}, err
	}
	if holder == owner {
		return Acquisition{OK: true, Holder: owner}, nil
	}
	return Acquisition{OK: false, Holder: holder}, nil
}

// Release deletes the seat key unconditionally.
func (m *RedisManager) Release(ctx context.Context, eventID uint64, label string) error {
	return m.rdb.Del(ctx, seatLockKey(eventID, label)).Err()
}

// Holder returns the current lock owner, or "" when the seat is not
// locked.
func (m *RedisManager) Holder(ctx context.Context, eventID uint64, label string) (string, error) {
	holder, err := m.rdb.Get(ctx, seatLockKey(eventID, label)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return holder, nil
}
