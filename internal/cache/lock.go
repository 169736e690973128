package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const runLockKey = "locator:run-lock"

// release only deletes the key if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RunLock is a cross-process "one run at a time" guard. The key expires
// after ttl so a crashed holder cannot block runs forever.
type RunLock struct {
	rdb   redis.Cmdable
	ttl   time.Duration
	token string
}

func NewRunLock(rdb redis.Cmdable, ttl time.Duration) *RunLock {
	return &RunLock{rdb: rdb, ttl: ttl}
}

// TryAcquire returns false when another process holds the lock.
func (l *RunLock) TryAcquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, runLockKey, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: acquire run lock: %w", err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

func (l *RunLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""
	if err := releaseScript.Run(ctx, l.rdb, []string{runLockKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis: release run lock: %w", err)
	}
	return nil
}
