// Package lock serialises read-modify-write of a single user's state.
package lock

import (
	"context"
	"sync"
	"time"
)

// userSlot is a one-slot channel with reference counting for cleanup.
// refs counts the holder plus every waiter.
type userSlot struct {
	ch   chan struct{}
	refs int
}

// UserLock holds one lock per user id. Each lock is a one-slot channel so
// acquisition can honour context cancellation.
type UserLock struct {
	mu    sync.Mutex
	slots map[int64]*userSlot
}

// NewUserLock creates a new UserLock instance.
func NewUserLock() *UserLock {
	return &UserLock{slots: make(map[int64]*userSlot)}
}

// ref returns the user's slot, creating it if needed, and counts the caller.
func (ul *UserLock) ref(userID int64) *userSlot {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	s, ok := ul.slots[userID]
	if !ok {
		s = &userSlot{ch: make(chan struct{}, 1)}
		ul.slots[userID] = s
	}
	s.refs++
	return s
}

// unref drops the caller's reference and frees an idle slot.
func (ul *UserLock) unref(userID int64, s *userSlot) {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	s.refs--
	if s.refs <= 0 {
		delete(ul.slots, userID)
	}
}

// Acquire waits for the lock until ctx is done or timeout elapses.
// A zero timeout waits on ctx alone. The caller must Unlock after success.
func (ul *UserLock) Acquire(ctx context.Context, userID int64, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s := ul.ref(userID)
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		ul.unref(userID, s)
		if ctx.Err() == context.DeadlineExceeded {
			return ErrLockTimeout
		}
		return ctx.Err()
	}
}

// Unlock releases a lock taken by Acquire. Unlocking an unheld lock is a no-op.
func (ul *UserLock) Unlock(userID int64) {
	ul.mu.Lock()
	s, ok := ul.slots[userID]
	ul.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-s.ch:
		ul.unref(userID, s)
	default:
	}
}

// WithLockContext runs fn while holding the user's lock, giving up when
// the lock is not acquired within timeout.
func (ul *UserLock) WithLockContext(ctx context.Context, userID int64, timeout time.Duration, fn func() error) error {
	if err := ul.Acquire(ctx, userID, timeout); err != nil {
		return err
	}
	defer ul.Unlock(userID)
	return fn()
}
