package sessions

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepo is a thread-safe single-process session store. Expiry is
// lazy on Get, with a janitor sweep so abandoned sessions still get evicted.
type InMemoryRepo struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration

	stop chan struct{}
	once sync.Once
}

// NewInMemoryRepo creates the store and starts its janitor. sweepInterval
// <= 0 disables the janitor (used by tests that drive Cleanup directly).
func NewInMemoryRepo(ttl, sweepInterval time.Duration) *InMemoryRepo {
	r := &InMemoryRepo{
		sessions: make(map[string]Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		go r.janitor(sweepInterval)
	}
	return r
}

func (r *InMemoryRepo) Set(_ context.Context, session Session) error {
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = time.Now().Add(r.ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.UserID] = session
	return nil
}

func (r *InMemoryRepo) Get(_ context.Context, userID string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[userID]
	if !ok {
		return Session{}, ErrNotFound
	}
	if session.Expired() {
		delete(r.sessions, userID)
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (r *InMemoryRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}

func (r *InMemoryRepo) Cleanup(_ context.Context) error {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, session := range r.sessions {
		if now.After(session.ExpiresAt) {
			delete(r.sessions, userID)
		}
	}
	return nil
}

// Close stops the janitor. Safe to call more than once.
func (r *InMemoryRepo) Close() error {
	r.once.Do(func() { close(r.stop) })
	return nil
}

func (r *InMemoryRepo) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = r.Cleanup(context.Background())
		case <-r.stop:
			return
		}
	}
}

var _ Repo = (*InMemoryRepo)(nil)
