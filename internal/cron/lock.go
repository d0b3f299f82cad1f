package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 10 * time.Minute

// Lock guards a cron cycle so only one worker runs it at a time.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock is a SETNX lease shared by every worker pointed at the same
// redis. The lease expires after ttl if the holder dies.
type RedisLock struct {
	client redisStore
	key    string
	ttl    time.Duration

	mu    sync.Mutex
	owner string
}

func NewRedisLock(client redisStore, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", l.key, err)
	}
	if ok {
		l.mu.Lock()
		l.owner = owner
		l.mu.Unlock()
	}
	return ok, nil
}

// Release drops the lease only while this instance still owns it.
func (l *RedisLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owner == "" {
		return nil
	}
	value, err := l.client.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			l.owner = ""
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		l.owner = ""
		return nil
	}
	if err := l.client.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.owner = ""
	return nil
}

// LocalLock serialises cycles inside one process. It is used when redis is
// not configured.
type LocalLock struct {
	held atomic.Bool
}

func NewLocalLock() *LocalLock { return &LocalLock{} }

func (l *LocalLock) Acquire(context.Context) (bool, error) {
	return l.held.CompareAndSwap(false, true), nil
}

func (l *LocalLock) Release(context.Context) error {
	l.held.Store(false)
	return nil
}
