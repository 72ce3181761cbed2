package keylock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned when the lock could not be acquired within the
// caller's wait bound.
var ErrTimeout = errors.New("keylock: acquire timed out")

// KeyLock serializes critical sections per string key. Callers contending on
// the same key queue up; callers on different keys never block each other.
type KeyLock struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	sem  chan struct{}
	refs int
}

// New returns an empty KeyLock.
func New() *KeyLock {
	return &KeyLock{slots: make(map[string]*slot)}
}

// Acquire takes the lock for key, waiting at most wait. It returns a release
// function that must be called exactly once; calling it again is a no-op.
func (l *KeyLock) Acquire(ctx context.Context, key string, wait time.Duration) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case s.sem <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-s.sem
				l.put(key, s)
			})
		}
		return release, nil
	case <-timer.C:
		l.put(key, s)
		return nil, ErrTimeout
	case <-ctx.Done():
		l.put(key, s)
		return nil, ctx.Err()
	}
}

func (l *KeyLock) put(key string, s *slot) {
	l.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
	l.mu.Unlock()
}
