package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// errLockHeld signals another holder; it is retried until ctx ends
var errLockHeld = errors.New("session lock held")

// releaseScript deletes the lock only while it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionLockRedis serializes turns of one session across every process sharing the Redis store.
// A lock expires after ttl even if its holder dies.
type SessionLockRedis struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	retryDelay time.Duration
}

func NewSessionLockRedis(client *redis.Client, prefix string, ttl, retryDelay time.Duration) *SessionLockRedis {
	return &SessionLockRedis{
		client:     client,
		prefix:     prefix,
		ttl:        ttl,
		retryDelay: retryDelay,
	}
}

func (l *SessionLockRedis) key(id string) string {
	return l.prefix + id + ":lock"
}

// Lock waits until the session is free or ctx ends, and returns the release function
func (l *SessionLockRedis) Lock(ctx context.Context, sessionID string) (func(), error) {
	key := l.key(sessionID)
	token := uuid.New().String()

	err := retry.Do(
		func() error {
			ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("acquire session lock: %w", err))
			}
			if !ok {
				return errLockHeld
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(l.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("lock session %s: %w", sessionID, err)
	}

	return func() {
		// release even when the request context is already done
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}, nil
}
