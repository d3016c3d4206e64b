package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotHeld is returned when releasing a lock that expired or was taken over.
var ErrNotHeld = errors.New("lock not held")

// Release frees a previously acquired lock.
type Release func(ctx context.Context) error

// Locker guards periodic jobs so only one instance runs a tick at a time.
type Locker interface {
	// TryLock attempts to take key for ttl. It reports false without error
	// when somebody else holds the lock.
	TryLock(ctx context.Context, key string, ttl time.Duration) (Release, bool, error)
}

// LocalLocker is an in-process Locker used when no Redis is configured.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]localEntry
	now  func() time.Time
	seq  uint64
}

type localEntry struct {
	token   uint64
	expires time.Time
}

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localEntry), now: time.Now}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (Release, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, ok := l.held[key]; ok && now.Before(entry.expires) {
		return nil, false, nil
	}
	l.seq++
	token := l.seq
	l.held[key] = localEntry{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		entry, ok := l.held[key]
		if !ok || entry.token != token {
			return ErrNotHeld
		}
		delete(l.held, key)
		return nil
	}, true, nil
}

// Run executes fn while holding key. It returns false when the lock was busy.
func Run(ctx context.Context, locker Locker, key string, ttl time.Duration, fn func(context.Context) error) (bool, error) {
	release, ok, err := locker.TryLock(ctx, key, ttl)
	if err != nil || !ok {
		return false, err
	}
	runErr := fn(ctx)
	relErr := release(context.WithoutCancel(ctx))
	if errors.Is(relErr, ErrNotHeld) {
		relErr = nil
	}
	return true, errors.Join(runErr, relErr)
}
