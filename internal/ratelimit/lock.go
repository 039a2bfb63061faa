package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type Locker struct {
	client *redis.Client
	script *redis.Script
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
	}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}

// ErrLockBusy is returned when a keyed lock could not be acquired in time.
var ErrLockBusy = errors.New("lock_busy")

// Guard serializes work per key. Acquire blocks until the key is free,
// the wait budget elapses or ctx is done.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type GuardParams struct {
	fx.In

	Redis *redis.Client `optional:"true"`
	Log   *zap.Logger
}

// NewGuard returns a Redis-backed guard when Redis is configured and an
// in-process keyed mutex otherwise.
func NewGuard(p GuardParams) Guard {
	if p.Redis == nil {
		return NewLocalGuard(5 * time.Second)
	}
	return &redisGuard{
		locker: NewLocker(p.Redis),
		log:    p.Log.Named("ratelimit.guard"),
		ttl:    30 * time.Second,
		wait:   5 * time.Second,
		poll:   50 * time.Millisecond,
	}
}

type redisGuard struct {
	locker *Locker
	log    *zap.Logger
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
}

func (g *redisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	deadline := time.Now().Add(g.wait)
	for {
		token, ok, err := g.locker.TryLock(ctx, key, g.ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// release must outlive a cancelled request context
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := g.locker.Release(releaseCtx, key, token); err != nil {
					g.log.Warn("lock release failed", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.poll):
		}
	}
}

// LocalGuard is a keyed mutex for single-replica deployments and tests.
type LocalGuard struct {
	wait time.Duration

	mu    sync.Mutex
	slots map[string]*localSlot
}

type localSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalGuard(wait time.Duration) *LocalGuard {
	return &LocalGuard{wait: wait, slots: make(map[string]*localSlot)}
}

func (g *LocalGuard) Acquire(ctx context.Context, key string) (func(), error) {
	g.mu.Lock()
	slot, ok := g.slots[key]
	if !ok {
		slot = &localSlot{ch: make(chan struct{}, 1)}
		g.slots[key] = slot
	}
	slot.refs++
	g.mu.Unlock()

	timer := time.NewTimer(g.wait)
	defer timer.Stop()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		g.unref(key, slot)
		return nil, ctx.Err()
	case <-timer.C:
		g.unref(key, slot)
		return nil, ErrLockBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			g.unref(key, slot)
		})
	}, nil
}

func (g *LocalGuard) unref(key string, slot *localSlot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(g.slots, key)
	}
}
