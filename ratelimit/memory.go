package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowCounter struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a single-process fixed-window limiter. It also serves
// as the degraded fallback for the Redis limiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	max      int
	window   time.Duration

	stop chan struct{}
	once sync.Once
}

// NewMemoryLimiter creates the limiter and starts a janitor that evicts
// elapsed windows. sweepInterval <= 0 disables the janitor.
func NewMemoryLimiter(max int, window, sweepInterval time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		counters: make(map[string]*windowCounter),
		max:      max,
		window:   window,
		stop:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		go l.janitor(sweepInterval)
	}
	return l
}

func (l *MemoryLimiter) Check(_ context.Context, key string) (Result, error) {
	now := NowTimeFunc()

	l.mu.Lock()
	defer l.mu.Unlock()

	counter, ok := l.counters[key]
	if !ok || now.After(counter.resetAt) {
		counter = &windowCounter{resetAt: now.Add(l.window)}
		l.counters[key] = counter
	}
	counter.count++

	remaining := l.max - counter.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   counter.count <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   counter.resetAt,
	}, nil
}

// Close stops the janitor. Safe to call more than once.
func (l *MemoryLimiter) Close() error {
	l.once.Do(func() { close(l.stop) })
	return nil
}

func (l *MemoryLimiter) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *MemoryLimiter) sweep() {
	now := NowTimeFunc()

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, counter := range l.counters {
		if now.After(counter.resetAt) {
			delete(l.counters, key)
		}
	}
}

var _ Limiter = (*MemoryLimiter)(nil)
