package backend

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// The browser profile directory holds cookie and session state on disk and
// is written in place by every invocation. Two concurrent invocations
// against the same profile corrupt each other, so each profile gets a
// single-slot semaphore held for the full duration of one invocation and
// released on every exit path, timeouts included.
var (
	profileMu    sync.Mutex
	profileLocks = make(map[string]*semaphore.Weighted)
)

func profileLock(profile string) *semaphore.Weighted {
	profileMu.Lock()
	defer profileMu.Unlock()

	lock, ok := profileLocks[profile]
	if !ok {
		lock = semaphore.NewWeighted(1)
		profileLocks[profile] = lock
	}
	return lock
}

// acquireProfile blocks until the profile is free or the context ends.
// The returned release function is safe to defer.
func acquireProfile(ctx context.Context, profile string) (func(), error) {
	lock := profileLock(profile)
	if err := lock.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { lock.Release(1) }, nil
}
