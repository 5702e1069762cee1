package keylock

import (
	"context"
	"time"
)

const (
	distLockPrefix = "quotad:lock:"
	// distLockTTL bounds how long a crashed holder wedges a key. There is
	// no extension while held: every guarded section is one row read plus
	// one row write, and a database stalled past this TTL would let
	// another replica take the key mid-operation. Raise the TTL before
	// putting anything slower under the guard.
	distLockTTL     = 5 * time.Second
	distLockRetryIn = 20 * time.Millisecond
)

// Guard combines the in-process lock table with an optional distributed
// lock. The local mutex is always taken first so goroutines in the same
// replica never contend on redis for the same key.
type Guard struct {
	local *KeyMutex
	dist  *Locker
}

func NewGuard(local *KeyMutex, dist *Locker) *Guard {
	return &Guard{local: local, dist: dist}
}

// Acquire blocks until the key is held and returns the release func.
func (g *Guard) Acquire(ctx context.Context, key string) (func(), error) {
	unlock := g.local.Lock(key)
	if g.dist == nil {
		return unlock, nil
	}

	distKey := distLockPrefix + key
	for {
		token, ok, err := g.dist.TryLock(ctx, distKey, distLockTTL)
		if err != nil {
			unlock()
			return nil, err
		}
		if ok {
			return func() {
				_ = g.dist.Release(context.WithoutCancel(ctx), distKey, token)
				unlock()
			}, nil
		}

		select {
		case <-ctx.Done():
			unlock()
			return nil, ctx.Err()
		case <-time.After(distLockRetryIn):
		}
	}
}
